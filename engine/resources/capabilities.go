package resources

// TextureData is the decoded CPU payload of a texture.
type TextureData struct {
	Pixels   []byte
	Width    int
	Height   int
	Channels int
}

// Empty reports the sentinel stored when decoding failed.
func (d TextureData) Empty() bool {
	return d.Width == 0 && d.Height == 0 && d.Channels == 0
}

// TextureLoader decodes image files. Paths are absolute and exist when called.
type TextureLoader interface {
	LoadTexture(path string) (TextureData, error)
	FreeTexture(data TextureData)
}

// MeshLoader fills target from the mesh file at path.
type MeshLoader interface {
	LoadMesh(path string, target *Mesh) error
}

// TilemapLoader fills target from the tilemap file at path.
type TilemapLoader interface {
	LoadTilemap(path string, target *Tilemap) error
}

// GPUTexture is the backend representation of a texture. Create uploads the
// owner's payload; both calls run on the render thread only.
type GPUTexture interface {
	Create() error
	Destroy() error
}

// GPUShaderProg is the backend representation of a shader program.
type GPUShaderProg interface {
	Create() error
	Destroy() error
}

// RenderingFactory builds backend objects for a specific graphics API.
type RenderingFactory interface {
	NewTexture(texture *Texture) GPUTexture
	NewShaderProg(prog *ShaderProg) GPUShaderProg
}

// Capabilities are the pluggable backends handed to NewManager.
type Capabilities struct {
	TextureLoader TextureLoader
	MeshLoader    MeshLoader
	TilemapLoader TilemapLoader
	Factory       RenderingFactory
}
