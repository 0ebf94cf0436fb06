package scene

// Scene holds the persistent entities of a level and the chunks streamed
// around its agent.
type Scene struct {
	Name     string
	entities []*Entity
	Chunks   *ChunkManager
}

func NewScene(name string, settings ChunkManagerSettings) *Scene {
	return &Scene{
		Name:   name,
		Chunks: NewChunkManager(settings, nil),
	}
}

func (s *Scene) AddEntity(e *Entity) {
	s.entities = append(s.entities, e)
}

// Entities returns the persistent root entities.
func (s *Scene) Entities() []*Entity {
	return s.entities
}

// FindEntitiesWithName searches the persistent entities, then the loaded chunks.
func (s *Scene) FindEntitiesWithName(name string) []*Entity {
	out := findInEntities(s.entities, name)
	return append(out, s.Chunks.FindLoadedChunkEntitiesWithName(name)...)
}

// Walk visits every persistent entity and every entity of a loaded chunk.
func (s *Scene) Walk(fn func(*Entity) bool) {
	for _, e := range s.entities {
		e.Walk(fn)
	}
	for _, c := range s.Chunks.LoadedChunks() {
		for _, e := range c.Entities() {
			e.Walk(fn)
		}
	}
}
