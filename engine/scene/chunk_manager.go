package scene

import (
	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/math"
)

// ChunkListener is told when chunks enter and leave the loaded set.
type ChunkListener interface {
	// OnChunkActivated runs right after the chunk has loaded.
	OnChunkActivated(chunk *Chunk)
	// OnChunkDeactivated runs right before the chunk unloads.
	OnChunkDeactivated(chunk *Chunk)
}

// ChunkManagerSettings configures streaming. UnloadDistance should not be smaller
// than LoadDistance, otherwise chunks on the boundary load and unload every update.
type ChunkManagerSettings struct {
	LoadDistance   float32
	UnloadDistance float32
	// Agent is not owned by the manager. Nil disables streaming.
	Agent *math.Transform
}

/**
 * @brief Streams chunks in and out around an agent. A chunk loads when the
 * agent comes within LoadDistance and unloads once it is at least
 * UnloadDistance away; in between it keeps its current state.
 */
type ChunkManager struct {
	settings ChunkManagerSettings
	listener ChunkListener
	loaded   []*Chunk
	unloaded []*Chunk
}

// NewChunkManager creates a manager. listener may be nil.
func NewChunkManager(settings ChunkManagerSettings, listener ChunkListener) *ChunkManager {
	if settings.UnloadDistance < settings.LoadDistance {
		core.LogWarn("chunk unload distance %.2f is smaller than load distance %.2f", settings.UnloadDistance, settings.LoadDistance)
	}
	return &ChunkManager{settings: settings, listener: listener}
}

func (cm *ChunkManager) Settings() ChunkManagerSettings {
	return cm.settings
}

func (cm *ChunkManager) SetAgent(agent *math.Transform) {
	cm.settings.Agent = agent
}

func (cm *ChunkManager) SetListener(listener ChunkListener) {
	cm.listener = listener
}

// AddChunk hands chunk to the manager. It starts in the unloaded set.
func (cm *ChunkManager) AddChunk(chunk *Chunk) {
	if chunk.State() == ChunkLoaded {
		if err := chunk.Unload(); err != nil {
			core.LogWarn(err.Error())
		}
	}
	cm.unloaded = append(cm.unloaded, chunk)
}

// UpdateChunks loads chunks that came within range, then unloads chunks that
// moved out of range. A chunk loaded by this call is not unloaded by it.
func (cm *ChunkManager) UpdateChunks() {
	agent := cm.settings.Agent
	if agent == nil {
		return
	}
	agentPos := agent.GlobalPosition()
	loadSq := cm.settings.LoadDistance * cm.settings.LoadDistance
	unloadSq := cm.settings.UnloadDistance * cm.settings.UnloadDistance

	var activated []*Chunk
	stillUnloaded := cm.unloaded[:0]
	for _, chunk := range cm.unloaded {
		if chunk.Transform.GlobalPosition().DistanceSquared(agentPos) > loadSq {
			stillUnloaded = append(stillUnloaded, chunk)
			continue
		}
		if err := chunk.Load(); err != nil {
			core.LogError("failed to load chunk: %s", err.Error())
			stillUnloaded = append(stillUnloaded, chunk)
			continue
		}
		if cm.listener != nil {
			cm.listener.OnChunkActivated(chunk)
		}
		activated = append(activated, chunk)
	}
	cm.unloaded = stillUnloaded

	stillLoaded := cm.loaded[:0]
	for _, chunk := range cm.loaded {
		if chunk.Transform.GlobalPosition().DistanceSquared(agentPos) < unloadSq {
			stillLoaded = append(stillLoaded, chunk)
			continue
		}
		cm.deactivate(chunk)
		cm.unloaded = append(cm.unloaded, chunk)
	}
	cm.loaded = append(stillLoaded, activated...)
}

func (cm *ChunkManager) deactivate(chunk *Chunk) {
	if cm.listener != nil {
		cm.listener.OnChunkDeactivated(chunk)
	}
	if err := chunk.Unload(); err != nil {
		core.LogError("failed to save chunk on unload: %s", err.Error())
	}
}

// UnloadAll deactivates every loaded chunk.
func (cm *ChunkManager) UnloadAll() {
	for _, chunk := range cm.loaded {
		cm.deactivate(chunk)
		cm.unloaded = append(cm.unloaded, chunk)
	}
	cm.loaded = nil
}

// FindLoadedChunkEntitiesWithName searches the loaded chunks only, in order.
func (cm *ChunkManager) FindLoadedChunkEntitiesWithName(name string) []*Entity {
	var out []*Entity
	for _, chunk := range cm.loaded {
		out = append(out, chunk.FindDescendentEntitiesWithName(name)...)
	}
	return out
}

func (cm *ChunkManager) LoadedChunks() []*Chunk {
	return append([]*Chunk(nil), cm.loaded...)
}

func (cm *ChunkManager) UnloadedChunks() []*Chunk {
	return append([]*Chunk(nil), cm.unloaded...)
}
