/*
Headless deferred-shading demo: renders a spinning textured cube lit by
a sun and a hemisphere ambient, then writes the final frame to a PNG.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hollowtide/lumen/engine"
	"github.com/hollowtide/lumen/testbed"
)

func main() {
	configPath := flag.String("config", "lumen.toml", "path to the TOML config")
	outputPath := flag.String("output", "frame.png", "path of the final frame dump")
	frames := flag.Uint64("frames", 120, "number of frames to render")
	flag.Parse()

	cfg, err := engine.ApplicationConfigFromFile(*configPath)
	if err != nil {
		panic(err)
	}
	cfg.MaxFrames = *frames

	game := testbed.NewDemoGame(cfg, *outputPath)

	eng, err := engine.New(game.Game)
	if err != nil {
		panic(err)
	}
	if err := eng.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		_ = eng.Shutdown()
	}()

	if err := eng.Run(); err != nil {
		panic(err)
	}
}
