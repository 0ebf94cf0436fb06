package scene

import (
	"fmt"

	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/math"
)

/**
 * @brief A named node of the scene graph. An entity owns its children and
 * components; its transform is parented to the parent entity's transform.
 */
type Entity struct {
	id         string
	Name       string
	Transform  *math.Transform
	parent     *Entity
	children   []*Entity
	components []Component
}

func NewEntity(name string) *Entity {
	return &Entity{
		id:        core.NewUniqueID(),
		Name:      name,
		Transform: math.TransformCreate(),
	}
}

func (e *Entity) ID() string {
	return e.id
}

func (e *Entity) Parent() *Entity {
	return e.parent
}

// AddChild moves child under e, detaching it from any previous parent.
func (e *Entity) AddChild(child *Entity) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	child.Transform.SetParent(e.Transform)
	e.children = append(e.children, child)
}

// RemoveChild detaches child. It reports whether child was a direct child of e.
func (e *Entity) RemoveChild(child *Entity) bool {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			child.Transform.SetParent(nil)
			return true
		}
	}
	return false
}

func (e *Entity) Children() []*Entity {
	return e.children
}

func (e *Entity) AddComponent(c Component) {
	e.components = append(e.components, c)
}

func (e *Entity) Components() []Component {
	return e.components
}

// ComponentsOf returns the components of e with concrete type T.
func ComponentsOf[T Component](e *Entity) []T {
	var out []T
	for _, c := range e.components {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Walk visits e and its descendants depth first, parents before children.
// Returning false from fn skips the children of that entity.
func (e *Entity) Walk(fn func(*Entity) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// FindDescendentEntitiesWithName returns every entity below e, e excluded,
// whose name is exactly name.
func (e *Entity) FindDescendentEntitiesWithName(name string) []*Entity {
	var out []*Entity
	for _, c := range e.children {
		c.Walk(func(d *Entity) bool {
			if d.Name == name {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// ToSpec captures the current state of the subtree rooted at e.
func (e *Entity) ToSpec() EntitySpec {
	pos, rot, scale := specFromTransform(e.Transform)
	spec := EntitySpec{
		ID:       e.id,
		Name:     e.Name,
		Position: pos,
		Rotation: rot,
		Scale:    scale,
	}
	for _, c := range e.components {
		spec.Components = append(spec.Components, c.Spec())
	}
	for _, c := range e.children {
		spec.Children = append(spec.Children, c.ToSpec())
	}
	return spec
}

// NewEntityFromSpec builds the subtree described by spec.
func NewEntityFromSpec(spec EntitySpec) (*Entity, error) {
	id := spec.ID
	if id == "" {
		id = core.NewUniqueID()
	}
	e := &Entity{
		id:        id,
		Name:      spec.Name,
		Transform: spec.transform(),
	}
	for _, cs := range spec.Components {
		c, err := NewComponent(cs)
		if err != nil {
			return nil, fmt.Errorf("entity '%s': %w", spec.Name, err)
		}
		e.AddComponent(c)
	}
	for _, cs := range spec.Children {
		child, err := NewEntityFromSpec(cs)
		if err != nil {
			return nil, err
		}
		e.AddChild(child)
	}
	return e, nil
}

func findInEntities(entities []*Entity, name string) []*Entity {
	var out []*Entity
	for _, e := range entities {
		e.Walk(func(d *Entity) bool {
			if d.Name == name {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}
