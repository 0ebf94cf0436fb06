package engine

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spaghettifunk/ose/engine/assets/loaders"
	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/math"
	"github.com/spaghettifunk/ose/engine/renderer"
	"github.com/spaghettifunk/ose/engine/resources"
	"github.com/spaghettifunk/ose/engine/scene"
)

const meadowScene = `
agent: player
entities:
  - name: player
    components:
      - type: sprite_renderer
        texture: hero.png
  - name: ground
    components:
      - type: tilemap_renderer
        tilemap: level.tilemap
chunks:
  - name: pond
    position: [30, 0, 0]
    entities:
      - name: duck
        components:
          - type: sprite_renderer
            texture: duck.png
`

const caveScene = `
entities:
  - name: bat
    components:
      - type: mesh_renderer
        mesh: bat.obj
`

type testGame struct {
	game    *Game
	backend *renderer.HeadlessBackend
	store   *scene.MemoryChunkStore
	rt      *core.RenderThread
	events  []string
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func newTestGame(t *testing.T, mode string) *testGame {
	t.Helper()
	dir := t.TempDir()
	res := filepath.Join(dir, resources.ResourcesDir)
	if err := os.MkdirAll(res, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writePNG(t, filepath.Join(res, "hero.png"))
	writePNG(t, filepath.Join(res, "duck.png"))
	writePNG(t, filepath.Join(res, "tiles.png"))
	files := map[string]string{
		filepath.Join(res, "level.tilemap"): "tile_width: 8\ntile_height: 8\ntileset: tiles.png\nrows:\n  - \"0 1\"\n",
		filepath.Join(res, "bat.obj"):       "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
		filepath.Join(dir, "meadow.yaml"):   meadowScene,
		filepath.Join(dir, "cave.yaml"):     caveScene,
		filepath.Join(dir, "empty.yaml"):    "entities: []\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cfg := core.DefaultConfig()
	cfg.Engine.ProjectPath = dir
	cfg.Game.SceneSwitchMode = mode
	cfg.Scenes = map[string]string{
		"meadow": "meadow.yaml",
		"cave":   "cave.yaml",
		"empty":  "empty.yaml",
	}

	tg := &testGame{
		backend: renderer.NewHeadlessBackend(),
		store:   scene.NewMemoryChunkStore(),
	}
	r := renderer.NewWithBackend(renderer.Headless, tg.backend)
	g, err := NewGame(cfg, resources.Capabilities{
		TextureLoader: loaders.NewImageLoader(false),
		MeshLoader:    &loaders.ModelLoader{},
		TilemapLoader: &loaders.TilemapLoader{},
		Factory:       r,
	}, WithChunkStore(tg.store))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	tg.game = g

	record := func(code core.SystemEventCode, _, _ interface{}, ctx core.EventContext) bool {
		switch code {
		case core.EVENT_CODE_SCENE_ACTIVATED:
			tg.events = append(tg.events, "scene:"+ctx.Name)
		case core.EVENT_CODE_CHUNK_ACTIVATED:
			tg.events = append(tg.events, "activate:"+ctx.Name)
		case core.EVENT_CODE_CHUNK_DEACTIVATED:
			tg.events = append(tg.events, "deactivate:"+ctx.Name)
		case core.EVENT_CODE_RESOURCE_RELOADED:
			tg.events = append(tg.events, "reload:"+ctx.Name)
		}
		return false
	}
	for _, code := range []core.SystemEventCode{
		core.EVENT_CODE_SCENE_ACTIVATED,
		core.EVENT_CODE_CHUNK_ACTIVATED,
		core.EVENT_CODE_CHUNK_DEACTIVATED,
		core.EVENT_CODE_RESOURCE_RELOADED,
	} {
		g.Events().Register(code, tg, record)
	}

	tg.rt = core.AcquireRenderThread("test")
	t.Cleanup(tg.rt.Release)
	if err := g.Initialize(tg.rt); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return tg
}

func TestGame_SetActiveSceneRealizesResources(t *testing.T) {
	tg := newTestGame(t, "remove_all")
	g := tg.game

	if err := g.SetActiveScene(tg.rt, "meadow"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	for _, name := range []string{"hero.png", "tiles.png"} {
		if r, ok := g.Resources().TextureResidency(name); !ok || r != resources.Realized {
			t.Fatalf("texture %s residency = %v, %v", name, r, ok)
		}
	}
	if g.Resources().GetTexture("duck.png") != nil {
		t.Fatalf("texture of an unloaded chunk was registered")
	}
	player := g.ActiveScene().FindEntitiesWithName("player")[0]
	if !player.Components()[0].Initialized() {
		t.Fatalf("persistent entity not initialized")
	}
	if !reflect.DeepEqual(tg.events, []string{"scene:meadow"}) {
		t.Fatalf("events = %v", tg.events)
	}

	if err := g.Render(tg.rt, 0.016); err != nil {
		t.Fatalf("render: %v", err)
	}
	if stats := tg.backend.Stats(); stats.Frames != 1 || stats.LastFrameDraws != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	// Activating the active scene again changes nothing.
	if err := g.SetActiveScene(tg.rt, "meadow"); err != nil || len(tg.events) != 1 {
		t.Fatalf("reactivate = %v, events %v", err, tg.events)
	}
}

func TestGame_ChunkStreaming(t *testing.T) {
	tg := newTestGame(t, "remove_all")
	g := tg.game
	if err := g.SetActiveScene(tg.rt, "meadow"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	player := g.ActiveScene().FindEntitiesWithName("player")[0]

	player.Transform.SetPosition(math.NewVec3(25, 0, 0))
	g.Update(0.016)
	duck := g.ActiveScene().FindEntitiesWithName("duck")
	if len(duck) != 1 {
		t.Fatalf("chunk not streamed in")
	}
	if r, _ := g.Resources().TextureResidency("duck.png"); r != resources.Unrealized {
		t.Fatalf("chunk texture realized before render: %v", r)
	}
	if err := g.Render(tg.rt, 0.016); err != nil {
		t.Fatalf("render: %v", err)
	}
	if r, _ := g.Resources().TextureResidency("duck.png"); r != resources.Realized {
		t.Fatalf("chunk texture residency after render = %v", r)
	}
	if !duck[0].Components()[0].Initialized() {
		t.Fatalf("chunk entity not initialized")
	}
	if got := tg.backend.Stats().LastFrameDraws; got != 3 {
		t.Fatalf("draws = %d, want 3", got)
	}

	player.Transform.SetPosition(math.NewVec3(-10, 0, 0))
	g.Update(0.016)
	if len(g.ActiveScene().FindEntitiesWithName("duck")) != 0 {
		t.Fatalf("chunk not streamed out")
	}
	want := []string{"scene:meadow", "activate:pond", "deactivate:pond"}
	if !reflect.DeepEqual(tg.events, want) {
		t.Fatalf("events = %v, want %v", tg.events, want)
	}
	chunk := g.ActiveScene().Chunks.UnloadedChunks()[0]
	if _, ok, _ := tg.store.LoadChunk(chunk.ID()); !ok {
		t.Fatalf("unloaded chunk was not saved")
	}
}

func TestGame_ChunkDeactivatedBeforeRenderIsNotInitialized(t *testing.T) {
	tg := newTestGame(t, "remove_all")
	g := tg.game
	if err := g.SetActiveScene(tg.rt, "meadow"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	player := g.ActiveScene().FindEntitiesWithName("player")[0]

	player.Transform.SetPosition(math.NewVec3(25, 0, 0))
	g.Update(0.016)
	duck := g.ActiveScene().FindEntitiesWithName("duck")[0]
	player.Transform.SetPosition(math.NewVec3(-10, 0, 0))
	g.Update(0.016)

	if len(g.pendingInit) != 0 {
		t.Fatalf("entities of the unloaded chunk still queued")
	}
	if err := g.Render(tg.rt, 0.016); err != nil {
		t.Fatalf("render: %v", err)
	}
	if duck.Components()[0].Initialized() {
		t.Fatalf("entity of an unloaded chunk was initialized")
	}
}

func TestGame_SceneSwitchModes(t *testing.T) {
	cases := []struct {
		mode   string
		loaded []string
	}{
		{"remove_all", []string{}},
		{"remove_loaded", []string{"meadow"}},
		{"remove_none", []string{"empty", "meadow"}},
		{"remove_active", []string{"empty"}},
	}
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			tg := newTestGame(t, tc.mode)
			g := tg.game
			if err := g.SetActiveScene(tg.rt, "meadow"); err != nil {
				t.Fatalf("activate meadow: %v", err)
			}
			if err := g.LoadScene("empty"); err != nil {
				t.Fatalf("load empty: %v", err)
			}
			if err := g.SetActiveScene(tg.rt, "cave"); err != nil {
				t.Fatalf("activate cave: %v", err)
			}
			if g.ActiveScene().Name != "cave" {
				t.Fatalf("active = %s", g.ActiveScene().Name)
			}
			if got := g.LoadedSceneNames(); !reflect.DeepEqual(got, tc.loaded) {
				t.Fatalf("loaded = %v, want %v", got, tc.loaded)
			}
		})
	}
}

func TestGame_LoadAndUnloadScene(t *testing.T) {
	tg := newTestGame(t, "remove_none")
	g := tg.game

	if err := g.LoadScene("nowhere"); !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("load unknown err = %v", err)
	}
	if err := g.LoadScene("cave"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := g.LoadScene("cave"); !errors.Is(err, ErrSceneLoaded) {
		t.Fatalf("load twice err = %v", err)
	}
	if g.ActiveScene() != nil {
		t.Fatalf("loading activated the scene")
	}
	if err := g.SetActiveScene(tg.rt, "cave"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := g.UnloadScene("cave"); !errors.Is(err, ErrSceneActive) {
		t.Fatalf("unload active err = %v", err)
	}
	if err := g.LoadScene("empty"); err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if err := g.UnloadScene("empty"); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if err := g.UnloadScene("empty"); !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("unload twice err = %v", err)
	}

	for _, name := range []string{"empty", "meadow"} {
		if err := g.LoadScene(name); err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
	}
	if err := g.UnloadAllLoadedScenes(); err != nil {
		t.Fatalf("unload all: %v", err)
	}
	if names := g.LoadedSceneNames(); len(names) != 0 {
		t.Fatalf("loaded after unload all = %v", names)
	}
	if g.ActiveScene() == nil || g.ActiveScene().Name != "cave" {
		t.Fatalf("unload all touched the active scene")
	}
}

func TestGame_RequiresRenderThread(t *testing.T) {
	tg := newTestGame(t, "remove_all")
	if err := tg.game.SetActiveScene(nil, "meadow"); !errors.Is(err, core.ErrNotRenderThread) {
		t.Fatalf("activate err = %v", err)
	}
	if err := tg.game.Render(nil, 0); !errors.Is(err, core.ErrNotRenderThread) {
		t.Fatalf("render err = %v", err)
	}
}

func TestGame_HotReloadTexture(t *testing.T) {
	tg := newTestGame(t, "remove_all")
	g := tg.game
	if err := g.SetActiveScene(tg.rt, "meadow"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	player := g.ActiveScene().FindEntitiesWithName("player")[0]
	sprite := scene.ComponentsOf[*scene.SpriteRenderer](player)[0]
	before := sprite.Texture()

	g.pendingReloads = []string{"hero.png", "notes.txt"}
	if err := g.Render(tg.rt, 0.016); err != nil {
		t.Fatalf("render: %v", err)
	}
	if sprite.Texture() == before || sprite.Texture() != g.Resources().GetTexture("hero.png") {
		t.Fatalf("sprite still holds the old texture")
	}
	if r, _ := g.Resources().TextureResidency("hero.png"); r != resources.Realized {
		t.Fatalf("residency after reload = %v", r)
	}
	if tg.events[len(tg.events)-1] != "reload:hero.png" {
		t.Fatalf("events = %v", tg.events)
	}
}

func TestGame_Shutdown(t *testing.T) {
	tg := newTestGame(t, "remove_all")
	g := tg.game
	if err := g.SetActiveScene(tg.rt, "meadow"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	player := g.ActiveScene().FindEntitiesWithName("player")[0]
	player.Transform.SetPosition(math.NewVec3(25, 0, 0))
	g.Update(0.016)
	chunk := g.ActiveScene().Chunks.LoadedChunks()[0]

	if err := g.Shutdown(tg.rt); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if stats := tg.backend.Stats(); stats.LiveTextures != 0 || stats.LiveShaderProgs != 0 {
		t.Fatalf("live GPU objects after shutdown: %+v", stats)
	}
	if _, ok, _ := tg.store.LoadChunk(chunk.ID()); !ok {
		t.Fatalf("loaded chunk was not saved on shutdown")
	}
	if g.ActiveScene() != nil {
		t.Fatalf("active scene kept after shutdown")
	}
}

func TestNewGame_UnknownSwitchMode(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Engine.ProjectPath = t.TempDir()
	cfg.Game.SceneSwitchMode = "remove_everything"
	if _, err := NewGame(cfg, resources.Capabilities{}); !errors.Is(err, ErrUnknownSwitchMode) {
		t.Fatalf("err = %v", err)
	}
}
