package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/ose/engine/core"
)

var ErrNotInitialized = errors.New("renderer backend not initialized")

// HeadlessStats is a snapshot of the headless backend's bookkeeping.
type HeadlessStats struct {
	Frames          uint64
	LiveTextures    int
	LiveShaderProgs int
	TextureBytes    int
	LastFrameDraws  int
}

// HeadlessBackend keeps GPU objects as plain bookkeeping. It validates uploads
// the way a real driver would and is used by tools, tests and servers.
type HeadlessBackend struct {
	initialized bool
	nextHandle  uint32
	textures    map[uint32]int
	shaders     map[uint32]string
	inFrame     bool
	frameDraws  int
	stats       HeadlessStats

	// FailTextures makes TextureCreate fail for the named textures.
	FailTextures map[string]bool
}

func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{
		textures:     make(map[uint32]int),
		shaders:      make(map[uint32]string),
		FailTextures: make(map[string]bool),
	}
}

func (b *HeadlessBackend) Initialize(appName string) error {
	b.initialized = true
	core.LogDebug("headless backend initialized for '%s'", appName)
	return nil
}

func (b *HeadlessBackend) Shutdown() error {
	if n := len(b.textures) + len(b.shaders); n > 0 {
		core.LogWarn("headless backend shut down with %d live GPU objects", n)
	}
	b.initialized = false
	return nil
}

func (b *HeadlessBackend) BeginFrame(deltaTime float64) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	if b.inFrame {
		return errors.New("BeginFrame called twice without EndFrame")
	}
	b.inFrame = true
	b.frameDraws = 0
	return nil
}

func (b *HeadlessBackend) EndFrame(deltaTime float64) error {
	if !b.inFrame {
		return errors.New("EndFrame called without BeginFrame")
	}
	b.inFrame = false
	b.stats.Frames++
	b.stats.LastFrameDraws = b.frameDraws
	return nil
}

func (b *HeadlessBackend) TextureCreate(name string, pixels []uint8, width, height, channels int) (uint32, error) {
	if !b.initialized {
		return 0, ErrNotInitialized
	}
	if b.FailTextures[name] {
		return 0, fmt.Errorf("texture '%s': upload rejected", name)
	}
	if width <= 0 || height <= 0 || channels <= 0 || channels > 4 {
		return 0, fmt.Errorf("texture '%s': invalid dimensions %dx%dx%d", name, width, height, channels)
	}
	if size := width * height * channels; len(pixels) != size {
		return 0, fmt.Errorf("texture '%s': got %d bytes, want %d", name, len(pixels), size)
	}
	b.nextHandle++
	b.textures[b.nextHandle] = len(pixels)
	b.stats.TextureBytes += len(pixels)
	return b.nextHandle, nil
}

func (b *HeadlessBackend) TextureDestroy(handle uint32) error {
	size, ok := b.textures[handle]
	if !ok {
		return fmt.Errorf("unknown texture handle %d", handle)
	}
	delete(b.textures, handle)
	b.stats.TextureBytes -= size
	return nil
}

func (b *HeadlessBackend) ShaderCreate(name, vertexSource, fragmentSource string) (uint32, error) {
	if !b.initialized {
		return 0, ErrNotInitialized
	}
	if vertexSource == "" || fragmentSource == "" {
		return 0, fmt.Errorf("shader program '%s': missing stage source", name)
	}
	b.nextHandle++
	b.shaders[b.nextHandle] = name
	return b.nextHandle, nil
}

func (b *HeadlessBackend) ShaderDestroy(handle uint32) error {
	if _, ok := b.shaders[handle]; !ok {
		return fmt.Errorf("unknown shader handle %d", handle)
	}
	delete(b.shaders, handle)
	return nil
}

func (b *HeadlessBackend) DrawBatch(batch DrawBatch) error {
	if !b.inFrame {
		return errors.New("draw outside of a frame")
	}
	if _, ok := b.shaders[batch.Shader]; !ok {
		return fmt.Errorf("unknown shader handle %d", batch.Shader)
	}
	for _, t := range batch.Textures {
		if _, ok := b.textures[t]; !ok {
			return fmt.Errorf("unknown texture handle %d", t)
		}
	}
	b.frameDraws += batch.Instances
	return nil
}

func (b *HeadlessBackend) Stats() HeadlessStats {
	s := b.stats
	s.LiveTextures = len(b.textures)
	s.LiveShaderProgs = len(b.shaders)
	return s
}
