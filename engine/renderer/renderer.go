package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/resources"
)

var ErrUnsupportedRenderer = errors.New("unsupported renderer type")

// Magenta 1x1 texture uploaded in place of textures that failed to decode.
var placeholderPixels = []uint8{255, 0, 255, 255}

// DrawBatch is one material drawn for a number of instances.
type DrawBatch struct {
	Material  string
	Shader    uint32
	Textures  []uint32
	Instances int
}

/**
 * @brief The renderer front end. It builds the GPU objects handed to the
 * resource manager and collects draw batches for the current frame.
 */
type Renderer struct {
	kind    RendererType
	backend RendererBackend
	batches []DrawBatch
}

// New creates a renderer for kind. Only the headless backend ships with the engine.
func New(kind RendererType) (*Renderer, error) {
	switch kind {
	case Headless:
		return NewWithBackend(kind, NewHeadlessBackend()), nil
	default:
		err := fmt.Errorf("%s: %w", kind, ErrUnsupportedRenderer)
		core.LogError(err.Error())
		return nil, err
	}
}

func NewWithBackend(kind RendererType, backend RendererBackend) *Renderer {
	return &Renderer{kind: kind, backend: backend}
}

func (r *Renderer) Type() RendererType {
	return r.kind
}

func (r *Renderer) Initialize(rt *core.RenderThread, appName string) error {
	if err := rt.Check("renderer Initialize"); err != nil {
		return err
	}
	if err := r.backend.Initialize(appName); err != nil {
		core.LogError("renderer backend failed to initialize: %s", err.Error())
		return err
	}
	core.LogInfo("%s renderer initialized", r.kind)
	return nil
}

func (r *Renderer) Shutdown(rt *core.RenderThread) error {
	if err := rt.Check("renderer Shutdown"); err != nil {
		return err
	}
	return r.backend.Shutdown()
}

// Submit queues material for drawing this frame. Materials with unrealized
// resources are skipped.
func (r *Renderer) Submit(material *resources.Material, instances int) {
	if material == nil || material.ShaderProg == nil || instances <= 0 {
		return
	}
	prog, ok := material.ShaderProg.GPU().(*gpuShaderProg)
	if !ok || !prog.created {
		return
	}
	batch := DrawBatch{Material: material.Name, Shader: prog.handle, Instances: instances}
	for _, t := range material.Textures {
		if t == nil {
			continue
		}
		if tex, ok := t.GPU().(*gpuTexture); ok && tex.created {
			batch.Textures = append(batch.Textures, tex.handle)
		}
	}
	r.batches = append(r.batches, batch)
}

func (r *Renderer) DrawFrame(rt *core.RenderThread, deltaTime float64) error {
	if err := rt.Check("DrawFrame"); err != nil {
		return err
	}
	defer func() { r.batches = r.batches[:0] }()

	if err := r.backend.BeginFrame(deltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}
	for _, b := range r.batches {
		if err := r.backend.DrawBatch(b); err != nil {
			core.LogWarn("draw of material '%s' failed: %s", b.Material, err.Error())
		}
	}
	if err := r.backend.EndFrame(deltaTime); err != nil {
		core.LogError("renderer EndFrame failed: %s", err.Error())
		return err
	}
	return nil
}

func (r *Renderer) NewTexture(texture *resources.Texture) resources.GPUTexture {
	return &gpuTexture{backend: r.backend, texture: texture}
}

func (r *Renderer) NewShaderProg(prog *resources.ShaderProg) resources.GPUShaderProg {
	return &gpuShaderProg{backend: r.backend, prog: prog}
}

type gpuTexture struct {
	backend RendererBackend
	texture *resources.Texture
	handle  uint32
	created bool
}

func (t *gpuTexture) Create() error {
	pixels, w, h, c := t.texture.Pixels(), t.texture.Width(), t.texture.Height(), t.texture.Channels()
	if t.texture.Empty() {
		pixels, w, h, c = placeholderPixels, 1, 1, 4
	}
	handle, err := t.backend.TextureCreate(t.texture.Name, pixels, w, h, c)
	if err != nil {
		return err
	}
	t.handle, t.created = handle, true
	return nil
}

func (t *gpuTexture) Destroy() error {
	if !t.created {
		return nil
	}
	if err := t.backend.TextureDestroy(t.handle); err != nil {
		return err
	}
	t.handle, t.created = 0, false
	return nil
}

type gpuShaderProg struct {
	backend RendererBackend
	prog    *resources.ShaderProg
	handle  uint32
	created bool
}

func (s *gpuShaderProg) Create() error {
	handle, err := s.backend.ShaderCreate(s.prog.Name, s.prog.Source.Vertex, s.prog.Source.Fragment)
	if err != nil {
		return err
	}
	s.handle, s.created = handle, true
	return nil
}

func (s *gpuShaderProg) Destroy() error {
	if !s.created {
		return nil
	}
	if err := s.backend.ShaderDestroy(s.handle); err != nil {
		return err
	}
	s.handle, s.created = 0, false
	return nil
}
