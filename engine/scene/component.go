package scene

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/resources"
)

var ErrUnknownComponent = errors.New("unknown component type")

const (
	ComponentSpriteRenderer  = "sprite_renderer"
	ComponentMeshRenderer    = "mesh_renderer"
	ComponentTilemapRenderer = "tilemap_renderer"
)

// Component is attached to an entity. RegisterResources runs when the owning
// entity becomes active and adds what the component needs; Init runs on the
// render thread once those resources have been realized.
type Component interface {
	RegisterResources(rm *resources.Manager) error
	Init(rt *core.RenderThread, rm *resources.Manager) error
	Initialized() bool
	Spec() ComponentSpec
}

// Drawable components are submitted to the renderer every frame.
type Drawable interface {
	DrawMaterial() *resources.Material
}

func NewComponent(spec ComponentSpec) (Component, error) {
	switch spec.Type {
	case ComponentSpriteRenderer:
		return &SpriteRenderer{TexturePath: spec.Texture, MaterialPath: spec.Material}, nil
	case ComponentMeshRenderer:
		return &MeshRenderer{MeshPath: spec.Mesh, MaterialPath: spec.Material}, nil
	case ComponentTilemapRenderer:
		return &TilemapRenderer{TilemapPath: spec.Tilemap, MaterialPath: spec.Material}, nil
	default:
		return nil, fmt.Errorf("'%s': %w", spec.Type, ErrUnknownComponent)
	}
}

// addShared adds a dependency that other components may already have added.
func addShared(err error) error {
	if errors.Is(err, resources.ErrNameTaken) {
		return nil
	}
	return err
}

func registerMaterial(rm *resources.Manager, path string) error {
	if path == "" || rm.GetMaterial(path) != nil {
		return nil
	}
	return addShared(rm.AddMaterial(path, ""))
}

func resolveMaterial(rm *resources.Manager, path, fallback string) *resources.Material {
	if path == "" {
		return rm.GetMaterial(fallback)
	}
	if m := rm.GetMaterial(path); m != nil {
		return m
	}
	core.LogWarn("material '%s' not loaded, using '%s'", path, fallback)
	return rm.GetMaterial(fallback)
}

/**
 * @brief Draws a single texture on a quad.
 */
type SpriteRenderer struct {
	TexturePath string
	// MaterialPath is optional; the alpha blended 2D material is used otherwise.
	MaterialPath string

	texture     *resources.Texture
	material    *resources.Material
	initialized bool
}

func (s *SpriteRenderer) RegisterResources(rm *resources.Manager) error {
	if err := addShared(rm.AddTexture(s.TexturePath, "")); err != nil {
		return err
	}
	return registerMaterial(rm, s.MaterialPath)
}

func (s *SpriteRenderer) Init(rt *core.RenderThread, rm *resources.Manager) error {
	if err := rt.Check("SpriteRenderer.Init"); err != nil {
		return err
	}
	s.texture = rm.GetTexture(s.TexturePath)
	if s.texture == nil {
		return fmt.Errorf("sprite texture '%s': %w", s.TexturePath, resources.ErrNotFound)
	}
	if r, _ := rm.TextureResidency(s.TexturePath); r != resources.Realized {
		core.LogWarn("sprite texture '%s' is not resident", s.TexturePath)
	}
	s.material = resolveMaterial(rm, s.MaterialPath, resources.DefaultMaterial2dAlpha)
	s.initialized = true
	return nil
}

func (s *SpriteRenderer) Initialized() bool {
	return s.initialized
}

func (s *SpriteRenderer) Texture() *resources.Texture {
	return s.texture
}

func (s *SpriteRenderer) DrawMaterial() *resources.Material {
	return s.material
}

func (s *SpriteRenderer) Spec() ComponentSpec {
	return ComponentSpec{Type: ComponentSpriteRenderer, Texture: s.TexturePath, Material: s.MaterialPath}
}

type MeshRenderer struct {
	MeshPath     string
	MaterialPath string

	mesh        *resources.Mesh
	material    *resources.Material
	initialized bool
}

func (m *MeshRenderer) RegisterResources(rm *resources.Manager) error {
	if err := addShared(rm.AddMesh(m.MeshPath, "")); err != nil {
		return err
	}
	return registerMaterial(rm, m.MaterialPath)
}

func (m *MeshRenderer) Init(rt *core.RenderThread, rm *resources.Manager) error {
	if err := rt.Check("MeshRenderer.Init"); err != nil {
		return err
	}
	m.mesh = rm.GetMesh(m.MeshPath)
	if m.mesh == nil {
		return fmt.Errorf("mesh '%s': %w", m.MeshPath, resources.ErrNotFound)
	}
	m.material = resolveMaterial(rm, m.MaterialPath, resources.DefaultMaterial3d)
	m.initialized = true
	return nil
}

func (m *MeshRenderer) Initialized() bool {
	return m.initialized
}

func (m *MeshRenderer) Mesh() *resources.Mesh {
	return m.mesh
}

func (m *MeshRenderer) DrawMaterial() *resources.Material {
	return m.material
}

func (m *MeshRenderer) Spec() ComponentSpec {
	return ComponentSpec{Type: ComponentMeshRenderer, Mesh: m.MeshPath, Material: m.MaterialPath}
}

// TilemapRenderer draws a tilemap with its tileset texture.
type TilemapRenderer struct {
	TilemapPath  string
	MaterialPath string

	tilemap     *resources.Tilemap
	tileset     *resources.Texture
	material    *resources.Material
	initialized bool
}

func (t *TilemapRenderer) RegisterResources(rm *resources.Manager) error {
	if err := addShared(rm.AddTilemap(t.TilemapPath, "")); err != nil {
		return err
	}
	tm := rm.GetTilemap(t.TilemapPath)
	if tm != nil && tm.Tileset != "" {
		if err := addShared(rm.AddTexture(tm.Tileset, "")); err != nil {
			return err
		}
	}
	return registerMaterial(rm, t.MaterialPath)
}

func (t *TilemapRenderer) Init(rt *core.RenderThread, rm *resources.Manager) error {
	if err := rt.Check("TilemapRenderer.Init"); err != nil {
		return err
	}
	t.tilemap = rm.GetTilemap(t.TilemapPath)
	if t.tilemap == nil {
		return fmt.Errorf("tilemap '%s': %w", t.TilemapPath, resources.ErrNotFound)
	}
	if t.tilemap.Tileset != "" {
		t.tileset = rm.GetTexture(t.tilemap.Tileset)
	}
	t.material = resolveMaterial(rm, t.MaterialPath, resources.DefaultMaterial2d)
	t.initialized = true
	return nil
}

func (t *TilemapRenderer) Initialized() bool {
	return t.initialized
}

func (t *TilemapRenderer) Tilemap() *resources.Tilemap {
	return t.tilemap
}

func (t *TilemapRenderer) Tileset() *resources.Texture {
	return t.tileset
}

func (t *TilemapRenderer) DrawMaterial() *resources.Material {
	return t.material
}

func (t *TilemapRenderer) Spec() ComponentSpec {
	return ComponentSpec{Type: ComponentTilemapRenderer, Tilemap: t.TilemapPath, Material: t.MaterialPath}
}
