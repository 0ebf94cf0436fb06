package renderer

// RendererBackend is the graphics API specific half of the renderer. Every call
// is made from the render thread.
type RendererBackend interface {
	Initialize(appName string) error
	Shutdown() error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	TextureCreate(name string, pixels []uint8, width, height, channels int) (uint32, error)
	TextureDestroy(handle uint32) error
	ShaderCreate(name, vertexSource, fragmentSource string) (uint32, error)
	ShaderDestroy(handle uint32) error
	DrawBatch(batch DrawBatch) error
}

type RendererType uint8

const (
	Headless RendererType = iota
	Vulkan
	OpenGL
)

func (t RendererType) String() string {
	switch t {
	case Headless:
		return "headless"
	case Vulkan:
		return "vulkan"
	case OpenGL:
		return "opengl"
	default:
		return "unknown"
	}
}
