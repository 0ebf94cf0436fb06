package scene

import (
	"reflect"
	"testing"

	"github.com/spaghettifunk/ose/engine/math"
)

type recordingListener struct {
	events []string
}

func (l *recordingListener) OnChunkActivated(c *Chunk) {
	if c.State() != ChunkLoaded {
		panic("activated before load")
	}
	l.events = append(l.events, "activate:"+c.Name)
}

func (l *recordingListener) OnChunkDeactivated(c *Chunk) {
	if c.State() != ChunkLoaded {
		panic("deactivated after unload")
	}
	l.events = append(l.events, "deactivate:"+c.Name)
}

func chunkNames(chunks []*Chunk) []string {
	var out []string
	for _, c := range chunks {
		out = append(out, c.Name)
	}
	return out
}

func TestChunkManager_Hysteresis(t *testing.T) {
	agent := math.TransformCreate()
	l := &recordingListener{}
	cm := NewChunkManager(ChunkManagerSettings{LoadDistance: 10, UnloadDistance: 20, Agent: agent}, l)
	cm.AddChunk(NewChunk("", "c", math.NewVec3Zero(), []EntitySpec{{Name: "tree"}}))

	steps := []struct {
		x      float32
		loaded bool
	}{
		{15, false},
		{5, true},
		{15, true},
		{25, false},
		{15, false},
		{10, true},
		{20, false},
	}
	for i, step := range steps {
		agent.SetPosition(math.NewVec3(step.x, 0, 0))
		cm.UpdateChunks()
		if got := len(cm.LoadedChunks()) == 1; got != step.loaded {
			t.Fatalf("step %d (x=%v): loaded = %v, want %v", i, step.x, got, step.loaded)
		}
		if len(cm.LoadedChunks())+len(cm.UnloadedChunks()) != 1 {
			t.Fatalf("step %d: chunk tracked %d times", i, len(cm.LoadedChunks())+len(cm.UnloadedChunks()))
		}
	}

	want := []string{"activate:c", "deactivate:c", "activate:c", "deactivate:c"}
	if !reflect.DeepEqual(l.events, want) {
		t.Fatalf("events = %v, want %v", l.events, want)
	}
}

func TestChunkManager_NoAgentIsNoop(t *testing.T) {
	l := &recordingListener{}
	cm := NewChunkManager(ChunkManagerSettings{LoadDistance: 10, UnloadDistance: 20}, l)
	cm.AddChunk(NewChunk("", "c", math.NewVec3Zero(), nil))

	cm.UpdateChunks()
	if len(cm.LoadedChunks()) != 0 || len(l.events) != 0 {
		t.Fatalf("update without agent changed state: %v", l.events)
	}
}

func TestChunkManager_ActivationsBeforeDeactivations(t *testing.T) {
	agent := math.TransformFromPosition(math.NewVec3Zero())
	l := &recordingListener{}
	cm := NewChunkManager(ChunkManagerSettings{LoadDistance: 10, UnloadDistance: 20, Agent: agent}, l)
	cm.AddChunk(NewChunk("", "west", math.NewVec3(-5, 0, 0), nil))
	cm.UpdateChunks()

	cm.AddChunk(NewChunk("", "east", math.NewVec3(25, 0, 0), nil))
	agent.SetPosition(math.NewVec3(20, 0, 0))
	cm.UpdateChunks()

	want := []string{"activate:west", "activate:east", "deactivate:west"}
	if !reflect.DeepEqual(l.events, want) {
		t.Fatalf("events = %v, want %v", l.events, want)
	}
	if got := chunkNames(cm.LoadedChunks()); !reflect.DeepEqual(got, []string{"east"}) {
		t.Fatalf("loaded = %v", got)
	}
}

func TestChunkManager_JustActivatedNotUnloaded(t *testing.T) {
	// Misconfigured on purpose: unload < load.
	agent := math.TransformFromPosition(math.NewVec3(8, 0, 0))
	l := &recordingListener{}
	cm := NewChunkManager(ChunkManagerSettings{LoadDistance: 10, UnloadDistance: 5, Agent: agent}, l)
	cm.AddChunk(NewChunk("", "c", math.NewVec3Zero(), nil))

	cm.UpdateChunks()
	if !reflect.DeepEqual(l.events, []string{"activate:c"}) {
		t.Fatalf("first update events = %v", l.events)
	}
	cm.UpdateChunks()
	if !reflect.DeepEqual(l.events, []string{"activate:c", "deactivate:c"}) {
		t.Fatalf("second update events = %v", l.events)
	}
	cm.UpdateChunks()
	if !reflect.DeepEqual(l.events, []string{"activate:c", "deactivate:c", "activate:c"}) {
		t.Fatalf("third update events = %v", l.events)
	}
}

func TestChunkManager_LoadFailureStaysUnloaded(t *testing.T) {
	agent := math.TransformCreate()
	l := &recordingListener{}
	cm := NewChunkManager(ChunkManagerSettings{LoadDistance: 10, UnloadDistance: 20, Agent: agent}, l)
	bad := []EntitySpec{{Name: "x", Components: []ComponentSpec{{Type: "laser"}}}}
	cm.AddChunk(NewChunk("", "bad", math.NewVec3Zero(), bad))

	cm.UpdateChunks()
	if len(cm.LoadedChunks()) != 0 || len(l.events) != 0 {
		t.Fatalf("failed load was activated: %v", l.events)
	}
	if cm.UnloadedChunks()[0].State() != ChunkUnloaded {
		t.Fatalf("chunk state = %v", cm.UnloadedChunks()[0].State())
	}
}

func TestChunkManager_FindLoadedChunkEntitiesWithName(t *testing.T) {
	agent := math.TransformCreate()
	cm := NewChunkManager(ChunkManagerSettings{LoadDistance: 10, UnloadDistance: 20, Agent: agent}, nil)
	tree := []EntitySpec{{Name: "tree", Children: []EntitySpec{{Name: "tree"}, {Name: "rock"}}}}
	cm.AddChunk(NewChunk("", "near", math.NewVec3(1, 0, 0), tree))
	cm.AddChunk(NewChunk("", "far", math.NewVec3(100, 0, 0), tree))

	if got := cm.FindLoadedChunkEntitiesWithName("tree"); len(got) != 0 {
		t.Fatalf("found %d entities before any chunk loaded", len(got))
	}
	cm.UpdateChunks()
	if got := cm.FindLoadedChunkEntitiesWithName("tree"); len(got) != 2 {
		t.Fatalf("found %d trees, want 2", len(got))
	}
	if got := cm.FindLoadedChunkEntitiesWithName("Tree"); len(got) != 0 {
		t.Fatalf("match is not exact")
	}
}

func TestChunkManager_UnloadAll(t *testing.T) {
	agent := math.TransformCreate()
	l := &recordingListener{}
	cm := NewChunkManager(ChunkManagerSettings{LoadDistance: 10, UnloadDistance: 20, Agent: agent}, l)
	cm.AddChunk(NewChunk("", "a", math.NewVec3Zero(), nil))
	cm.AddChunk(NewChunk("", "b", math.NewVec3(1, 0, 0), nil))
	cm.UpdateChunks()

	cm.UnloadAll()
	if len(cm.LoadedChunks()) != 0 || len(cm.UnloadedChunks()) != 2 {
		t.Fatalf("loaded=%v unloaded=%v", chunkNames(cm.LoadedChunks()), chunkNames(cm.UnloadedChunks()))
	}
	want := []string{"activate:a", "activate:b", "deactivate:a", "deactivate:b"}
	if !reflect.DeepEqual(l.events, want) {
		t.Fatalf("events = %v", l.events)
	}
}
