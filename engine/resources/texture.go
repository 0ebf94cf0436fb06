package resources

/** @brief Represents supported texture filtering modes. */
type TextureFilterMode uint32

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilterMode = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilterMode = 0x1
)

// TextureMetaData holds sampling settings read from a texture's .meta sidecar.
type TextureMetaData struct {
	MagFilterMode     TextureFilterMode
	MinFilterMode     TextureFilterMode
	MipMappingEnabled bool
	MinLOD            uint32
	MaxLOD            uint32
	LODBias           uint32
}

func DefaultTextureMetaData() TextureMetaData {
	return TextureMetaData{
		MagFilterMode:     TextureFilterModeNearest,
		MinFilterMode:     TextureFilterModeNearest,
		MipMappingEnabled: true,
	}
}

// Written verbatim next to a texture that has no .meta file.
const defaultTextureMetaFile = "mag_filter_mode 0\n" +
	"min_filter_mode 0\n" +
	"mip_mapping_enabled 1\n" +
	"min_LOD 0\n" +
	"max_LOD 0\n" +
	"LOD_bias 0\n"

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The texture name, unique among textures. */
	Name string
	/** @brief The absolute file path the texture was decoded from. */
	Path string
	/** @brief The relative path under Resources, used to reload the texture. */
	RelativePath string
	/** @brief Sampling settings from the .meta sidecar. */
	Meta TextureMetaData

	data TextureData
	gpu  GPUTexture
}

func (t *Texture) Pixels() []byte {
	return t.data.Pixels
}

func (t *Texture) Width() int {
	return t.data.Width
}

func (t *Texture) Height() int {
	return t.data.Height
}

func (t *Texture) Channels() int {
	return t.data.Channels
}

// Empty reports whether decoding failed and the texture holds no pixels.
func (t *Texture) Empty() bool {
	return t.data.Empty()
}

// Data returns the CPU payload.
func (t *Texture) Data() TextureData {
	return t.data
}

// GPU returns the backend object built for this texture.
func (t *Texture) GPU() GPUTexture {
	return t.gpu
}
