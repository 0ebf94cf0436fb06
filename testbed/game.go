package testbed

import (
	"github.com/spaghettifunk/ose/engine"
	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/math"
	"github.com/spaghettifunk/ose/engine/scene"
)

type gameState struct {
	player *scene.Entity
	// Units per second along the x axis.
	speed float32
	// Turn around once the player is this far from the origin.
	turnAt float32

	chunksActivated int
}

// NewTestGame returns an application that walks the player of the active scene
// back and forth so chunks stream in and out.
func NewTestGame() *engine.Application {
	state := &gameState{speed: 8, turnAt: 60}
	return &engine.Application{
		Name:         "ose testbed",
		State:        state,
		FnInitialize: state.initialize,
		FnUpdate:     state.update,
		FnShutdown:   state.shutdown,
	}
}

func (s *gameState) initialize(g *engine.Game) error {
	core.LogDebug("testbed initialize")
	g.Events().Register(core.EVENT_CODE_SCENE_ACTIVATED, s, s.onEvent)
	g.Events().Register(core.EVENT_CODE_CHUNK_ACTIVATED, s, s.onEvent)
	g.Events().Register(core.EVENT_CODE_CHUNK_DEACTIVATED, s, s.onEvent)
	g.Events().Register(core.EVENT_CODE_RESOURCE_RELOADED, s, s.onEvent)
	return nil
}

func (s *gameState) update(g *engine.Game, deltaTime float64) error {
	if s.player == nil {
		return nil
	}
	pos := s.player.Transform.Position
	// Turn around only when heading further out.
	if math.Abs(pos.X) >= s.turnAt && pos.X*s.speed > 0 {
		s.speed = -s.speed
	}
	s.player.Transform.Translate(math.NewVec3(s.speed*float32(deltaTime), 0, 0))
	return nil
}

func (s *gameState) shutdown(g *engine.Game) error {
	core.LogInfo("testbed activated %d chunks, last frame %.2fms", s.chunksActivated, g.Metrics().FrameTime())
	return nil
}

func (s *gameState) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_SCENE_ACTIVATED:
		g, ok := sender.(*engine.Game)
		if !ok {
			core.LogError("wrong sender associated with the event code `%d`", code)
			return false
		}
		s.player = nil
		if players := g.ActiveScene().FindEntitiesWithName("player"); len(players) > 0 {
			s.player = players[0]
		}
	case core.EVENT_CODE_CHUNK_ACTIVATED:
		s.chunksActivated++
		core.LogInfo("chunk '%s' streamed in", context.Name)
	case core.EVENT_CODE_CHUNK_DEACTIVATED:
		core.LogInfo("chunk '%s' streamed out", context.Name)
	case core.EVENT_CODE_RESOURCE_RELOADED:
		core.LogInfo("'%s' reloaded", context.Name)
	}
	return false
}
