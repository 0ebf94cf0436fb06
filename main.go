/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/ose/engine"
	"github.com/spaghettifunk/ose/engine/assets/loaders"
	"github.com/spaghettifunk/ose/engine/core"
	"github.com/spaghettifunk/ose/engine/renderer"
	"github.com/spaghettifunk/ose/engine/resources"
	"github.com/spaghettifunk/ose/testbed"
)

func main() {
	configPath := flag.String("config", "testbed/config.toml", "path to the engine configuration")
	frames := flag.Int("frames", -1, "frames to run before quitting, overrides game.max_frames")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("could not read configuration: %s", err.Error())
		os.Exit(1)
	}
	core.SetLogLevel(cfg.Engine.LogLevel)
	maxFrames := cfg.Game.MaxFrames
	if *frames >= 0 {
		maxFrames = *frames
	}

	// The main goroutine owns the render context for the whole run.
	rt := core.AcquireRenderThread("main")
	defer rt.Release()

	r, err := renderer.New(renderer.Headless)
	if err != nil {
		panic(err)
	}
	g, err := engine.NewGame(cfg, resources.Capabilities{
		TextureLoader: loaders.NewImageLoader(true),
		MeshLoader:    &loaders.ModelLoader{},
		TilemapLoader: &loaders.TilemapLoader{},
		Factory:       r,
	})
	if err != nil {
		panic(err)
	}

	e := engine.New(g, testbed.NewTestGame())
	e.SetFrameRateLimit(60)
	if err := e.Initialize(rt); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		e.RequestStop()
	}()

	// run engine
	if err := e.Run(rt, maxFrames); err != nil {
		core.LogError(err.Error())
	}
	if err := e.Shutdown(rt); err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}
}
