package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"

	"github.com/spaghettifunk/ose/engine/assets"
	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/resources"
	"github.com/spaghettifunk/ose/engine/scene"
)

var (
	ErrSceneNotFound     = errors.New("scene not found")
	ErrSceneLoaded       = errors.New("scene already loaded")
	ErrSceneActive       = errors.New("scene is active")
	ErrUnknownSwitchMode = errors.New("unknown scene switch mode")
)

// Pending hot reload paths kept between two frames.
const watcherCapacity = 256

// SceneSwitchMode decides what happens to the loaded scenes and the previously
// active scene when another scene becomes active.
type SceneSwitchMode uint8

const (
	// Drop every loaded scene and the previously active one.
	SceneSwitchRemoveAll SceneSwitchMode = iota
	// Drop every loaded scene, keep the previously active one loaded.
	SceneSwitchRemoveLoaded
	// Keep everything; the previously active scene joins the loaded ones.
	SceneSwitchRemoveNone
	// Keep the loaded scenes, drop the previously active one.
	SceneSwitchRemoveActive
)

func ParseSceneSwitchMode(s string) (SceneSwitchMode, error) {
	switch s {
	case "", "remove_all":
		return SceneSwitchRemoveAll, nil
	case "remove_loaded":
		return SceneSwitchRemoveLoaded, nil
	case "remove_none":
		return SceneSwitchRemoveNone, nil
	case "remove_active":
		return SceneSwitchRemoveActive, nil
	default:
		return SceneSwitchRemoveAll, fmt.Errorf("'%s': %w", s, ErrUnknownSwitchMode)
	}
}

func (m SceneSwitchMode) String() string {
	switch m {
	case SceneSwitchRemoveAll:
		return "remove_all"
	case SceneSwitchRemoveLoaded:
		return "remove_loaded"
	case SceneSwitchRemoveNone:
		return "remove_none"
	case SceneSwitchRemoveActive:
		return "remove_active"
	default:
		return "unknown"
	}
}

// FrameRenderer draws what the game submits each frame.
type FrameRenderer interface {
	Initialize(rt *core.RenderThread, appName string) error
	Shutdown(rt *core.RenderThread) error
	Submit(material *resources.Material, instances int)
	DrawFrame(rt *core.RenderThread, deltaTime float64) error
}

type Option func(*Game)

// WithRenderer sets the renderer. By default the rendering factory is used when
// it can also draw frames.
func WithRenderer(r FrameRenderer) Option {
	return func(g *Game) { g.renderer = r }
}

// WithChunkStore persists chunks in store instead of the configured sqlite file.
// The caller keeps ownership of store.
func WithChunkStore(store scene.ChunkStore) Option {
	return func(g *Game) { g.store = store }
}

func WithEventBus(bus *core.EventBus) Option {
	return func(g *Game) { g.bus = bus }
}

/**
 * @brief Game owns the resource manager and the scenes. Scenes are loaded
 * from the files listed in the configuration; only the active scene streams
 * chunks and is drawn.
 */
type Game struct {
	cfg        *core.Config
	switchMode SceneSwitchMode

	rm        *resources.Manager
	renderer  FrameRenderer
	bus       *core.EventBus
	metrics   *core.Metrics
	loader    *scene.SceneLoader
	store     scene.ChunkStore
	ownsStore bool
	watcher   *assets.Watcher

	loadedScenes map[string]*scene.Scene
	activeScene  *scene.Scene

	// Entities waiting for their components to be initialized on the render thread.
	pendingInit    []*scene.Entity
	pendingReloads []string
}

func NewGame(cfg *core.Config, caps resources.Capabilities, opts ...Option) (*Game, error) {
	mode, err := ParseSceneSwitchMode(cfg.Game.SceneSwitchMode)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	rm, err := resources.NewManager(cfg.Engine.ProjectPath, caps)
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:          cfg,
		switchMode:   mode,
		rm:           rm,
		metrics:      core.NewMetrics(),
		loadedScenes: make(map[string]*scene.Scene),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.bus == nil {
		g.bus = core.NewEventBus()
	}
	if g.renderer == nil {
		if r, ok := caps.Factory.(FrameRenderer); ok {
			g.renderer = r
		}
	}

	if g.store == nil {
		if path := cfg.ChunkStorePath(); path != "" {
			store, err := scene.OpenSQLiteChunkStore(path)
			if err != nil {
				core.LogError("could not open chunk store %s: %s", path, err.Error())
				return nil, err
			}
			g.store = store
			g.ownsStore = true
		}
	}

	if cfg.Game.HotReload {
		g.watcher = g.startWatcher()
	}

	g.loader = &scene.SceneLoader{
		Settings: scene.ChunkManagerSettings{
			LoadDistance:   cfg.Chunks.LoadDistance,
			UnloadDistance: cfg.Chunks.UnloadDistance,
		},
		Store: g.store,
	}
	return g, nil
}

// startWatcher returns nil when the resources directory cannot be watched; the
// game then runs without hot reload.
func (g *Game) startWatcher() *assets.Watcher {
	w, err := assets.NewWatcher(g.rm.ResourcesPath(), watcherCapacity)
	if err != nil {
		core.LogWarn("hot reload disabled: %s", err.Error())
		return nil
	}
	if err := w.Start(); err != nil {
		core.LogWarn("hot reload disabled: %s", err.Error())
		w.Close()
		return nil
	}
	return w
}

func (g *Game) Resources() *resources.Manager {
	return g.rm
}

func (g *Game) Events() *core.EventBus {
	return g.bus
}

func (g *Game) Metrics() *core.Metrics {
	return g.metrics
}

func (g *Game) SwitchMode() SceneSwitchMode {
	return g.switchMode
}

func (g *Game) SetSwitchMode(mode SceneSwitchMode) {
	g.switchMode = mode
}

// ActiveScene returns nil until a scene has been activated.
func (g *Game) ActiveScene() *scene.Scene {
	return g.activeScene
}

// LoadedSceneNames returns the names of the loaded, inactive scenes, sorted.
func (g *Game) LoadedSceneNames() []string {
	names := make([]string, 0, len(g.loadedScenes))
	for name := range g.loadedScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Initialize brings up the renderer. It must run before any scene is activated.
func (g *Game) Initialize(rt *core.RenderThread) error {
	if g.renderer == nil {
		core.LogWarn("no renderer configured, frames will not be drawn")
		return nil
	}
	return g.renderer.Initialize(rt, g.cfg.Engine.Name)
}

// LoadScene reads the scene file registered under name. The scene stays inactive.
func (g *Game) LoadScene(name string) error {
	if _, ok := g.loadedScenes[name]; ok {
		return fmt.Errorf("'%s': %w", name, ErrSceneLoaded)
	}
	if g.activeScene != nil && g.activeScene.Name == name {
		return fmt.Errorf("'%s': %w", name, ErrSceneActive)
	}
	path, ok := g.cfg.Scenes[name]
	if !ok {
		err := fmt.Errorf("'%s': %w", name, ErrSceneNotFound)
		core.LogError(err.Error())
		return err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.rm.ProjectPath(), path)
	}

	s, err := g.loader.Load(name, path)
	if err != nil {
		core.LogError("could not load scene '%s': %s", name, err.Error())
		return err
	}
	g.loadedScenes[name] = s
	return nil
}

// UnloadScene drops a loaded, inactive scene.
func (g *Game) UnloadScene(name string) error {
	if g.activeScene != nil && g.activeScene.Name == name {
		return fmt.Errorf("'%s': %w", name, ErrSceneActive)
	}
	s, ok := g.loadedScenes[name]
	if !ok {
		return fmt.Errorf("'%s': %w", name, ErrSceneNotFound)
	}
	s.Chunks.UnloadAll()
	delete(g.loadedScenes, name)
	core.LogDebug("scene '%s' unloaded", name)
	return nil
}

// UnloadAllLoadedScenes drops every loaded scene except the active one.
func (g *Game) UnloadAllLoadedScenes() error {
	var errs []error
	for _, name := range g.LoadedSceneNames() {
		if err := g.UnloadScene(name); err != nil {
			core.LogError("could not unload scene '%s': %s", name, err.Error())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetActiveScene makes name the active scene, loading it first when needed.
// The switch mode decides what is kept of the other scenes. The resources of
// the persistent entities are realized and their components initialized
// before SCENE_ACTIVATED fires.
func (g *Game) SetActiveScene(rt *core.RenderThread, name string) error {
	if err := rt.Check("SetActiveScene"); err != nil {
		return err
	}
	if g.activeScene != nil && g.activeScene.Name == name {
		return nil
	}

	target, ok := g.loadedScenes[name]
	if !ok {
		if err := g.LoadScene(name); err != nil {
			return err
		}
		target = g.loadedScenes[name]
	}
	delete(g.loadedScenes, name)

	old := g.activeScene
	if old != nil {
		g.deactivateScene(old)
	}
	switch g.switchMode {
	case SceneSwitchRemoveAll, SceneSwitchRemoveLoaded:
		if err := g.UnloadAllLoadedScenes(); err != nil {
			core.LogWarn("scene switch to '%s' kept some loaded scenes: %s", name, err.Error())
		}
		if g.switchMode == SceneSwitchRemoveLoaded && old != nil {
			g.loadedScenes[old.Name] = old
		}
	case SceneSwitchRemoveNone:
		if old != nil {
			g.loadedScenes[old.Name] = old
		}
	case SceneSwitchRemoveActive:
	}

	g.activeScene = target
	target.Chunks.SetListener(g)
	for _, e := range target.Entities() {
		g.registerResources(e)
		g.pendingInit = append(g.pendingInit, e)
	}
	g.flush(rt)

	core.LogInfo("scene '%s' active (%s)", name, g.switchMode)
	g.bus.Fire(core.EVENT_CODE_SCENE_ACTIVATED, g, core.EventContext{Name: name})
	return nil
}

// deactivateScene saves and unloads the chunks of s and stops listening to them.
func (g *Game) deactivateScene(s *scene.Scene) {
	s.Chunks.UnloadAll()
	s.Chunks.SetListener(nil)
	g.pendingInit = g.pendingInit[:0]
}

func (g *Game) registerResources(root *scene.Entity) {
	root.Walk(func(e *scene.Entity) bool {
		for _, c := range e.Components() {
			if err := c.RegisterResources(g.rm); err != nil {
				core.LogWarn("entity '%s': %s", e.Name, err.Error())
			}
		}
		return true
	})
}

// flush realizes everything added since the last flush, then initializes the
// queued entities.
func (g *Game) flush(rt *core.RenderThread) {
	if err := g.rm.CreateTextures(rt); err != nil {
		core.LogWarn(err.Error())
	}
	if err := g.rm.CreateShaderProgs(rt); err != nil {
		core.LogWarn(err.Error())
	}

	pending := g.pendingInit
	g.pendingInit = nil
	for _, root := range pending {
		g.initEntity(rt, root, false)
	}
}

// initEntity initializes the components of root and its descendants. With
// force set, components already initialized run Init again.
func (g *Game) initEntity(rt *core.RenderThread, root *scene.Entity, force bool) {
	root.Walk(func(e *scene.Entity) bool {
		for _, c := range e.Components() {
			if c.Initialized() && !force {
				continue
			}
			if err := c.Init(rt, g.rm); err != nil {
				core.LogWarn("entity '%s': %s", e.Name, err.Error())
			}
		}
		return true
	})
}

// OnChunkActivated registers the resources of the chunk's entities. They are
// initialized on the next Render.
func (g *Game) OnChunkActivated(chunk *scene.Chunk) {
	for _, e := range chunk.Entities() {
		g.registerResources(e)
		g.pendingInit = append(g.pendingInit, e)
	}
	g.bus.Fire(core.EVENT_CODE_CHUNK_ACTIVATED, g, core.EventContext{Name: chunk.Name, ID: chunk.ID(), Data: chunk})
}

func (g *Game) OnChunkDeactivated(chunk *scene.Chunk) {
	entities := chunk.Entities()
	g.pendingInit = slices.DeleteFunc(g.pendingInit, func(e *scene.Entity) bool {
		return slices.Contains(entities, e)
	})
	g.bus.Fire(core.EVENT_CODE_CHUNK_DEACTIVATED, g, core.EventContext{Name: chunk.Name, ID: chunk.ID(), Data: chunk})
}

// Update streams the chunks of the active scene and collects changed resource
// files. It does not touch the GPU.
func (g *Game) Update(deltaTime float64) {
	if g.activeScene != nil {
		g.activeScene.Chunks.UpdateChunks()
	}
	if g.watcher != nil {
		for _, path := range g.watcher.Drain() {
			if !slices.Contains(g.pendingReloads, path) {
				g.pendingReloads = append(g.pendingReloads, path)
			}
		}
	}
	g.metrics.Update(deltaTime)
}

// Render flushes pending resources, entity initialization and hot reloads, then
// draws the active scene.
func (g *Game) Render(rt *core.RenderThread, deltaTime float64) error {
	if err := rt.Check("Render"); err != nil {
		return err
	}
	g.flush(rt)
	g.applyReloads(rt)

	if g.renderer == nil {
		return nil
	}
	if g.activeScene != nil {
		g.submit()
	}
	return g.renderer.DrawFrame(rt, deltaTime)
}

func (g *Game) applyReloads(rt *core.RenderThread) {
	if len(g.pendingReloads) == 0 {
		return
	}
	reloads := g.pendingReloads
	g.pendingReloads = nil

	reloaded := false
	for _, path := range reloads {
		if g.rm.GetTexture(path) == nil {
			core.LogDebug("changed file '%s' is not a loaded texture", path)
			continue
		}
		if err := g.rm.ReloadTexture(rt, path); err != nil {
			core.LogWarn("hot reload of '%s' failed: %s", path, err.Error())
			continue
		}
		reloaded = true
		g.bus.Fire(core.EVENT_CODE_RESOURCE_RELOADED, g, core.EventContext{Name: path, Data: path})
	}
	// Components hold resource pointers resolved at Init.
	if reloaded && g.activeScene != nil {
		for _, e := range g.activeScene.Entities() {
			g.initEntity(rt, e, true)
		}
		for _, c := range g.activeScene.Chunks.LoadedChunks() {
			for _, e := range c.Entities() {
				g.initEntity(rt, e, true)
			}
		}
	}
}

// submit batches drawable components by material, in first seen order.
func (g *Game) submit() {
	var order []*resources.Material
	counts := make(map[*resources.Material]int)
	g.activeScene.Walk(func(e *scene.Entity) bool {
		for _, c := range e.Components() {
			d, ok := c.(scene.Drawable)
			if !ok || !c.Initialized() {
				continue
			}
			m := d.DrawMaterial()
			if m == nil {
				continue
			}
			if counts[m] == 0 {
				order = append(order, m)
			}
			counts[m]++
		}
		return true
	})
	for _, m := range order {
		g.renderer.Submit(m, counts[m])
	}
}

// Shutdown saves the chunks of every scene, releases all GPU resources and
// closes the chunk store and the watcher.
func (g *Game) Shutdown(rt *core.RenderThread) error {
	if err := rt.Check("Game Shutdown"); err != nil {
		return err
	}
	if g.activeScene != nil {
		g.deactivateScene(g.activeScene)
		g.activeScene = nil
	}
	var errs []error
	if err := g.UnloadAllLoadedScenes(); err != nil {
		errs = append(errs, err)
	}
	if err := g.rm.DestroyAll(rt); err != nil {
		errs = append(errs, err)
	}
	if g.renderer != nil {
		if err := g.renderer.Shutdown(rt); err != nil {
			errs = append(errs, err)
		}
	}
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		g.watcher = nil
	}
	if g.ownsStore && g.store != nil {
		if err := g.store.Close(); err != nil {
			errs = append(errs, err)
		}
		g.store = nil
	}
	return errors.Join(errs...)
}
