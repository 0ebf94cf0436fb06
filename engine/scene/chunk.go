package scene

import (
	"fmt"

	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/math"
)

type ChunkState uint8

const (
	ChunkUnloaded ChunkState = iota
	ChunkLoaded
)

func (s ChunkState) String() string {
	if s == ChunkLoaded {
		return "loaded"
	}
	return "unloaded"
}

/**
 * @brief A streamable subtree of entities. While unloaded a chunk only keeps
 * its transform and the specs to rebuild its entities from.
 */
type Chunk struct {
	id        string
	Name      string
	Transform *math.Transform

	templates []EntitySpec
	store     ChunkStore
	entities  []*Entity
	state     ChunkState
}

// NewChunk creates an unloaded chunk. An empty id generates one; give a stable
// id when the chunk's state is persisted across runs.
func NewChunk(id, name string, position math.Vec3, templates []EntitySpec) *Chunk {
	if id == "" {
		id = core.NewUniqueID()
	}
	return &Chunk{
		id:        id,
		Name:      name,
		Transform: math.TransformFromPosition(position),
		templates: templates,
	}
}

func (c *Chunk) ID() string {
	return c.id
}

func (c *Chunk) State() ChunkState {
	return c.state
}

// SetStore sets where the chunk saves its entities on unload. Nil disables saving.
func (c *Chunk) SetStore(store ChunkStore) {
	c.store = store
}

// Entities returns the root entities of a loaded chunk.
func (c *Chunk) Entities() []*Entity {
	return c.entities
}

// Load builds the chunk's entities from its saved state, or from its templates
// when nothing was saved. Loading a loaded chunk does nothing.
func (c *Chunk) Load() error {
	if c.state == ChunkLoaded {
		return nil
	}

	specs := c.templates
	if c.store != nil {
		saved, ok, err := c.store.LoadChunk(c.id)
		if err != nil {
			return fmt.Errorf("chunk '%s': %w", c.Name, err)
		}
		if ok {
			specs = saved
		}
	}

	entities := make([]*Entity, 0, len(specs))
	for _, spec := range specs {
		e, err := NewEntityFromSpec(spec)
		if err != nil {
			return fmt.Errorf("chunk '%s': %w", c.Name, err)
		}
		e.Transform.SetParent(c.Transform)
		entities = append(entities, e)
	}

	c.entities = entities
	c.state = ChunkLoaded
	core.LogDebug("chunk '%s' loaded with %d entities", c.Name, len(entities))
	return nil
}

// Unload saves the entities to the store and drops them. The chunk ends up
// unloaded even when saving fails; the error is returned.
func (c *Chunk) Unload() error {
	if c.state == ChunkUnloaded {
		return nil
	}

	var err error
	if c.store != nil {
		specs := make([]EntitySpec, 0, len(c.entities))
		for _, e := range c.entities {
			specs = append(specs, e.ToSpec())
		}
		if saveErr := c.store.SaveChunk(c.id, specs); saveErr != nil {
			err = fmt.Errorf("chunk '%s': %w", c.Name, saveErr)
		}
	}

	c.entities = nil
	c.state = ChunkUnloaded
	core.LogDebug("chunk '%s' unloaded", c.Name)
	return err
}

// FindDescendentEntitiesWithName searches every entity of the chunk, roots included.
func (c *Chunk) FindDescendentEntitiesWithName(name string) []*Entity {
	return findInEntities(c.entities, name)
}
