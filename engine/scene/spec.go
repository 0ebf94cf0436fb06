package scene

import "github.com/spaghettifunk/ose/engine/math"

// EntitySpec is the serialized form of an entity subtree. It is read from
// scene files and written to the chunk store.
type EntitySpec struct {
	// ID is optional in scene files; a fresh one is generated when empty.
	ID         string          `yaml:"id,omitempty"`
	Name       string          `yaml:"name"`
	Position   [3]float32      `yaml:"position,flow"`
	Rotation   [4]float32      `yaml:"rotation,flow,omitempty"`
	Scale      [3]float32      `yaml:"scale,flow,omitempty"`
	Components []ComponentSpec `yaml:"components,omitempty"`
	Children   []EntitySpec    `yaml:"children,omitempty"`
}

// ComponentSpec describes one component. Type selects the component; the
// other fields are the resource paths it uses.
type ComponentSpec struct {
	Type     string `yaml:"type"`
	Texture  string `yaml:"texture,omitempty"`
	Material string `yaml:"material,omitempty"`
	Mesh     string `yaml:"mesh,omitempty"`
	Tilemap  string `yaml:"tilemap,omitempty"`
}

// transform builds the local transform. A zero rotation means identity and a
// zero scale means one, so scene files can omit both.
func (s EntitySpec) transform() *math.Transform {
	t := math.TransformFromPosition(math.NewVec3(s.Position[0], s.Position[1], s.Position[2]))
	if s.Rotation != [4]float32{} {
		t.SetRotation(math.Quaternion{X: s.Rotation[0], Y: s.Rotation[1], Z: s.Rotation[2], W: s.Rotation[3]})
	}
	if s.Scale != [3]float32{} {
		t.SetScale(math.NewVec3(s.Scale[0], s.Scale[1], s.Scale[2]))
	}
	return t
}

func specFromTransform(t *math.Transform) (pos [3]float32, rot [4]float32, scale [3]float32) {
	pos = [3]float32{t.Position.X, t.Position.Y, t.Position.Z}
	rot = [4]float32{t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W}
	scale = [3]float32{t.Scale.X, t.Scale.Y, t.Scale.Z}
	return pos, rot, scale
}
