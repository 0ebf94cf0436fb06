package renderer

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/ose/engine/assets/loaders"
	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/resources"
)

func setup(t *testing.T) (*Renderer, *HeadlessBackend, *resources.Manager, *core.RenderThread) {
	t.Helper()
	dir := t.TempDir()
	resDir := filepath.Join(dir, resources.ResourcesDir)
	if err := os.MkdirAll(resDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	f, err := os.Create(filepath.Join(resDir, "a.png"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()
	if err := os.WriteFile(filepath.Join(resDir, "broken.png"), []byte("nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(resDir, "m.mat"), []byte("tex a.png\nshader OSE-Default2dShaderProg\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	backend := NewHeadlessBackend()
	r := NewWithBackend(Headless, backend)
	rm, err := resources.NewManager(dir, resources.Capabilities{
		TextureLoader: loaders.NewImageLoader(false),
		MeshLoader:    &loaders.ModelLoader{},
		TilemapLoader: &loaders.TilemapLoader{},
		Factory:       r,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	rt := core.AcquireRenderThread("test")
	if err := r.Initialize(rt, "test"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return r, backend, rm, rt
}

func TestRenderer_RealizesThroughManager(t *testing.T) {
	r, backend, rm, rt := setup(t)
	defer rt.Release()

	if err := rm.AddMaterial("m.mat", ""); err != nil {
		t.Fatalf("add material: %v", err)
	}
	if err := rm.AddTexture("broken.png", ""); err != nil {
		t.Fatalf("add broken: %v", err)
	}
	if err := rm.CreateTextures(rt); err != nil {
		t.Fatalf("create textures: %v", err)
	}
	if err := rm.CreateShaderProgs(rt); err != nil {
		t.Fatalf("create shader programs: %v", err)
	}

	stats := backend.Stats()
	if stats.LiveTextures != 2 || stats.LiveShaderProgs != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	// 4x4 RGBA plus the 1x1 placeholder for the broken image.
	if stats.TextureBytes != 4*4*4+4 {
		t.Fatalf("texture bytes = %d", stats.TextureBytes)
	}

	r.Submit(rm.GetMaterial("m.mat"), 3)
	r.Submit(rm.GetMaterial(resources.DefaultMaterial3d), 1)
	if err := r.DrawFrame(rt, 0.016); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := backend.Stats(); got.Frames != 1 || got.LastFrameDraws != 4 {
		t.Fatalf("stats after frame = %+v", got)
	}

	if err := rm.DestroyAll(rt); err != nil {
		t.Fatalf("destroy all: %v", err)
	}
	if got := backend.Stats(); got.LiveTextures != 0 || got.LiveShaderProgs != 0 || got.TextureBytes != 0 {
		t.Fatalf("stats after destroy = %+v", got)
	}
}

func TestRenderer_UploadFailureLeavesUnrealized(t *testing.T) {
	_, backend, rm, rt := setup(t)
	defer rt.Release()

	backend.FailTextures["a.png"] = true
	if err := rm.AddTexture("a.png", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := rm.CreateTexture(rt, "a.png"); err == nil {
		t.Fatalf("expected upload failure")
	}
	if r, _ := rm.TextureResidency("a.png"); r != resources.Unrealized {
		t.Fatalf("residency = %v", r)
	}
}

func TestRenderer_SkipsUnrealizedMaterials(t *testing.T) {
	r, backend, rm, rt := setup(t)
	defer rt.Release()

	r.Submit(rm.GetMaterial(resources.DefaultMaterial2d), 5)
	r.Submit(nil, 1)
	if err := r.DrawFrame(rt, 0.016); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := backend.Stats().LastFrameDraws; got != 0 {
		t.Fatalf("draws = %d, want 0", got)
	}
}

func TestRenderer_RequiresRenderThread(t *testing.T) {
	r, _, _, rt := setup(t)
	defer rt.Release()

	if err := r.DrawFrame(nil, 0); !errors.Is(err, core.ErrNotRenderThread) {
		t.Fatalf("err = %v", err)
	}
	if _, err := New(Vulkan); !errors.Is(err, ErrUnsupportedRenderer) {
		t.Fatalf("vulkan err = %v", err)
	}
}
