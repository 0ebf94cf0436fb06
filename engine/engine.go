package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/math"
)

// Longest delta handed to a frame. Longer stalls (debugger, suspend) are cut
// so chunk streaming and the application do not jump.
const maxFrameDelta = 0.25

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine shut down and cannot be restarted
	EngineStageShutdown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	case EngineStageShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Engine drives the frame loop of a Game on the render thread.
type Engine struct {
	currentStage Stage
	game         *Game
	app          *Application
	isRunning    bool
	clock        *core.Clock
	lastTime     float64
	frames       uint64
	// Target frame duration; zero runs unthrottled.
	frameBudget time.Duration
	// Set from other goroutines, turned into APPLICATION_QUIT by the loop.
	stopRequested atomic.Bool
}

func New(game *Game, app *Application) *Engine {
	if app == nil {
		app = &Application{}
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		game:         game,
		app:          app,
		clock:        core.NewClock(),
	}
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Game() *Game {
	return e.game
}

// Frames returns how many frames Run has completed.
func (e *Engine) Frames() uint64 {
	return e.frames
}

// SetFrameRateLimit caps the loop at fps frames per second. Zero removes the cap.
func (e *Engine) SetFrameRateLimit(fps int) {
	if fps <= 0 {
		e.frameBudget = 0
		return
	}
	e.frameBudget = time.Second / time.Duration(fps)
}

func (e *Engine) Initialize(rt *core.RenderThread) error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine cannot initialize in stage %s", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	e.game.Events().Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)

	if err := e.game.Initialize(rt); err != nil {
		return err
	}
	if e.app.FnInitialize != nil {
		if err := e.app.FnInitialize(e.game); err != nil {
			core.LogError("application failed to initialize: %s", err.Error())
			return err
		}
	}
	if start := e.game.cfg.Game.StartScene; start != "" {
		if err := e.game.SetActiveScene(rt, start); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run updates and renders frames until APPLICATION_QUIT fires or maxFrames
// frames ran. maxFrames <= 0 runs until quit.
func (e *Engine) Run(rt *core.RenderThread, maxFrames int) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run in stage %s", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if e.stopRequested.CompareAndSwap(true, false) {
			e.Quit()
			break
		}
		frameStart := time.Now()

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := math.Clamp(currentTime-e.lastTime, 0, maxFrameDelta)

		if e.app.FnUpdate != nil {
			if err := e.app.FnUpdate(e.game, delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err.Error())
				e.isRunning = false
				return err
			}
		}
		e.game.Update(delta)

		if err := e.game.Render(rt, delta); err != nil {
			core.LogError("Game render failed, shutting down: %s", err.Error())
			e.isRunning = false
			return err
		}

		e.frames++
		if maxFrames > 0 && e.frames >= uint64(maxFrames) {
			e.isRunning = false
		}

		if remaining := e.frameBudget - time.Since(frameStart); e.frameBudget > 0 && remaining > 0 {
			// If there is time left, give it back to the OS.
			time.Sleep(remaining)
		}
		e.lastTime = currentTime
	}

	core.LogInfo("engine stopped after %d frames (%.1f fps)", e.frames, e.game.Metrics().FPS())
	return nil
}

// Quit stops Run at the end of the current frame.
func (e *Engine) Quit() {
	e.game.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

// RequestStop asks Run to quit before its next frame. Safe to call from any goroutine.
func (e *Engine) RequestStop() {
	e.stopRequested.Store(true)
}

func (e *Engine) Shutdown(rt *core.RenderThread) error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.game.Events().Unregister(core.EVENT_CODE_APPLICATION_QUIT, e)

	if e.app.FnShutdown != nil {
		if err := e.app.FnShutdown(e.game); err != nil {
			core.LogWarn("application shutdown: %s", err.Error())
		}
	}
	err := e.game.Shutdown(rt)
	e.clock.Stop()
	e.currentStage = EngineStageShutdown
	return err
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		// Other listeners may want to know too.
		return false
	}
	return false
}
