package engine

// Application is the user code driven by the engine loop.
type Application struct {
	// The application name used in logs and by the renderer.
	Name string
	// Application specific state, owned by the application.
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnShutdown   Shutdown
}

// Initialize runs once, before the start scene is activated.
type Initialize func(g *Game) error

// Update runs every frame before the game streams chunks.
type Update func(g *Game, deltaTime float64) error

type Shutdown func(g *Game) error
