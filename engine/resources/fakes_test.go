package resources

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var errFake = errors.New("fake failure")

type fakeTextureLoader struct {
	fail  map[string]bool
	freed int
}

func (l *fakeTextureLoader) LoadTexture(path string) (TextureData, error) {
	if l.fail[filepath.Base(path)] {
		return TextureData{}, errFake
	}
	return TextureData{Pixels: make([]byte, 2*2*4), Width: 2, Height: 2, Channels: 4}, nil
}

func (l *fakeTextureLoader) FreeTexture(TextureData) {
	l.freed++
}

type fakeMeshLoader struct{}

func (fakeMeshLoader) LoadMesh(path string, target *Mesh) error {
	target.Vertices = make([]Vertex3D, 3)
	target.Indices = []uint32{0, 1, 2}
	return nil
}

type fakeTilemapLoader struct{}

func (fakeTilemapLoader) LoadTilemap(path string, target *Tilemap) error {
	target.Width, target.Height = 2, 1
	target.Tiles = []int32{0, 1}
	return nil
}

type fakeGPUObject struct {
	factory *fakeFactory
	name    string
}

func (o *fakeGPUObject) Create() error {
	if o.factory.failCreate[o.name] {
		return errFake
	}
	o.factory.live++
	return nil
}

func (o *fakeGPUObject) Destroy() error {
	o.factory.live--
	return nil
}

type fakeFactory struct {
	failCreate map[string]bool
	live       int
}

func (f *fakeFactory) NewTexture(texture *Texture) GPUTexture {
	return &fakeGPUObject{factory: f, name: texture.Name}
}

func (f *fakeFactory) NewShaderProg(prog *ShaderProg) GPUShaderProg {
	return &fakeGPUObject{factory: f, name: prog.Name}
}

type fixture struct {
	dir     string
	rm      *Manager
	loader  *fakeTextureLoader
	factory *fakeFactory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ResourcesDir), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f := &fixture{
		dir:     dir,
		loader:  &fakeTextureLoader{fail: map[string]bool{}},
		factory: &fakeFactory{failCreate: map[string]bool{}},
	}
	rm, err := NewManager(dir, Capabilities{
		TextureLoader: f.loader,
		MeshLoader:    fakeMeshLoader{},
		TilemapLoader: fakeTilemapLoader{},
		Factory:       f.factory,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	f.rm = rm
	return f
}

// writeResource creates Resources/rel with the given content.
func (f *fixture) writeResource(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, ResourcesDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}
