package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/ose/engine/resources"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestImageLoader_RGBA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 2, color.NRGBA{B: 255, A: 128})
	writePNG(t, path, img)

	data, err := NewImageLoader(false).LoadTexture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.Width != 2 || data.Height != 3 || data.Channels != 4 {
		t.Fatalf("dims = %dx%dx%d", data.Width, data.Height, data.Channels)
	}
	if len(data.Pixels) != 2*3*4 {
		t.Fatalf("pixel bytes = %d", len(data.Pixels))
	}
	if data.Pixels[0] != 255 || data.Pixels[3] != 255 {
		t.Fatalf("first pixel = %v", data.Pixels[:4])
	}

	flipped, err := NewImageLoader(true).LoadTexture(path)
	if err != nil {
		t.Fatalf("load flipped: %v", err)
	}
	// Row 2 is now row 0: pixel (1, 2) sits at offset 4.
	if flipped.Pixels[4+2] != 255 || flipped.Pixels[4+3] != 128 {
		t.Fatalf("flipped pixel = %v", flipped.Pixels[4:8])
	}
}

func TestImageLoader_Gray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.png")
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.SetGray(3, 0, color.Gray{Y: 200})
	writePNG(t, path, img)

	data, err := NewImageLoader(false).LoadTexture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.Channels != 1 || len(data.Pixels) != 4 || data.Pixels[3] != 200 {
		t.Fatalf("gray data = %+v", data)
	}
}

func TestImageLoader_NotAnImage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.png", "definitely not a png")
	if _, err := NewImageLoader(false).LoadTexture(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestModelLoader(t *testing.T) {
	obj := `# quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
f -4/-4/-1 -2/-2/-1 -1/-1/-1
`
	path := writeFile(t, t.TempDir(), "quad.obj", obj)

	var mesh resources.Mesh
	if err := (&ModelLoader{}).LoadMesh(path, &mesh); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mesh.Vertices) != 4 {
		t.Fatalf("vertices = %d, want 4 shared", len(mesh.Vertices))
	}
	if mesh.TriangleCount() != 3 {
		t.Fatalf("triangles = %d, want 3", mesh.TriangleCount())
	}
	if mesh.Vertices[2].Texcoord.X != 1 || mesh.Vertices[2].Normal.Z != 1 {
		t.Fatalf("vertex 2 = %+v", mesh.Vertices[2])
	}
}

func TestModelLoader_Errors(t *testing.T) {
	cases := map[string]string{
		"no faces":     "v 0 0 0\n",
		"out of range": "v 0 0 0\nv 1 0 0\nf 1 2 3\n",
		"bad vertex":   "v 0 x 0\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
	}
	dir := t.TempDir()
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, "m.obj", content)
			var mesh resources.Mesh
			if err := (&ModelLoader{}).LoadMesh(path, &mesh); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestTilemapLoader(t *testing.T) {
	content := `tile_width: 16
tile_height: 16
tileset: tiles/terrain.png
rows:
  - "0 1 2"
  - "-1 3 3"
`
	path := writeFile(t, t.TempDir(), "level.tilemap", content)

	var tm resources.Tilemap
	if err := (&TilemapLoader{}).LoadTilemap(path, &tm); err != nil {
		t.Fatalf("load: %v", err)
	}
	if tm.Width != 3 || tm.Height != 2 || tm.Tileset != "tiles/terrain.png" {
		t.Fatalf("tilemap = %+v", tm)
	}
	if tm.Tile(0, 1) != -1 || tm.Tile(2, 0) != 2 || tm.Tile(5, 5) != -1 {
		t.Fatalf("tiles = %v", tm.Tiles)
	}
}

func TestTilemapLoader_RaggedRows(t *testing.T) {
	content := "tile_width: 8\ntile_height: 8\nrows:\n  - \"0 1\"\n  - \"0\"\n"
	path := writeFile(t, t.TempDir(), "bad.tilemap", content)

	var tm resources.Tilemap
	if err := (&TilemapLoader{}).LoadTilemap(path, &tm); err == nil {
		t.Fatalf("expected error for ragged rows")
	}
}
