package scene

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/math"
)

type sceneFile struct {
	Name string `yaml:"name"`
	// Agent names the persistent entity chunks stream around.
	Agent    string       `yaml:"agent,omitempty"`
	Entities []EntitySpec `yaml:"entities,omitempty"`
	Chunks   []chunkFile  `yaml:"chunks,omitempty"`
}

type chunkFile struct {
	ID       string       `yaml:"id,omitempty"`
	Name     string       `yaml:"name"`
	Position [3]float32   `yaml:"position,flow"`
	Entities []EntitySpec `yaml:"entities,omitempty"`
}

// SceneLoader reads YAML scene files.
type SceneLoader struct {
	Settings ChunkManagerSettings
	// Store, when set, is given to every chunk of the loaded scenes.
	Store ChunkStore
}

func (sl *SceneLoader) Load(name, path string) (*Scene, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return sl.Parse(name, b)
}

// Parse builds a scene from YAML. name wins over the name in the file.
func (sl *SceneLoader) Parse(name string, data []byte) (*Scene, error) {
	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	if name == "" {
		name = f.Name
	}

	s := NewScene(name, sl.Settings)
	for _, spec := range f.Entities {
		e, err := NewEntityFromSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", name, err)
		}
		s.AddEntity(e)
	}

	if f.Agent != "" {
		agents := findInEntities(s.entities, f.Agent)
		if len(agents) == 0 {
			core.LogWarn("scene %s: agent entity '%s' not found, chunks will not stream", name, f.Agent)
		} else {
			s.Chunks.SetAgent(agents[0].Transform)
		}
	}

	seen := make(map[string]bool, len(f.Chunks))
	for _, cf := range f.Chunks {
		id := cf.ID
		if id == "" {
			id = chunkID(name, cf.Name)
		}
		if seen[id] {
			return nil, fmt.Errorf("scene %s: duplicate chunk '%s'", name, cf.Name)
		}
		seen[id] = true

		chunk := NewChunk(id, cf.Name, math.NewVec3(cf.Position[0], cf.Position[1], cf.Position[2]), cf.Entities)
		chunk.SetStore(sl.Store)
		s.Chunks.AddChunk(chunk)
	}

	core.LogInfo("scene %s loaded: %d entities, %d chunks", name, len(s.entities), len(f.Chunks))
	return s, nil
}

// chunkID is stable across runs so saved chunk state is found again.
func chunkID(sceneName, chunkName string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("ose://"+sceneName+"/"+chunkName)).String()
}
