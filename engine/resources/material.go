package resources

const (
	DefaultMaterial2d      = "OSE-Default2dMaterial"
	DefaultMaterial2dAlpha = "OSE-Default2dAlphaMaterial"
	DefaultMaterial3d      = "OSE-Default3dMaterial"
)

// Keys recognized in a material property file.
const (
	materialKeyTexture = "tex"
	materialKeyShader  = "shader"
)

// Material binds an ordered set of textures to a shader program. Texture slots
// may be nil when a referenced texture failed to load; slot indices stay stable.
type Material struct {
	Name string
	// Path is empty for built-in materials.
	Path          string
	Textures      []*Texture
	ShaderProg    *ShaderProg
	AlphaBlending bool
}

func (m *Material) AddTexture(t *Texture) {
	m.Textures = append(m.Textures, t)
}

// Texture returns the texture in slot i, nil when out of range or empty.
func (m *Material) Texture(i int) *Texture {
	if i < 0 || i >= len(m.Textures) {
		return nil
	}
	return m.Textures[i]
}
