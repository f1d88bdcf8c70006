package engine

import (
	"github.com/hollowtide/lumen/engine/config"
	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
)

type ApplicationConfig struct {
	// The application name used in logs and window titles.
	Name     string
	LogLevel core.LogLevel

	// Output surface starting size.
	StartWidth  uint32
	StartHeight uint32

	// Projection parameters applied every frame; aspect ratio follows
	// the surface.
	FOVDegrees float32
	NearClip   float32
	FarClip    float32

	AmbientTop    math.Vec3
	AmbientBottom math.Vec3

	// MaxFrames stops the frame loop after that many frames. Zero runs
	// until Shutdown.
	MaxFrames uint64
}

// ApplicationConfigFromFile builds the application config from the TOML
// config at path, falling back to defaults when it is absent.
func ApplicationConfigFromFile(path string) (*ApplicationConfig, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level := core.LogLevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = core.LogLevelDebug
	case "warn":
		level = core.LogLevelWarn
	case "error":
		level = core.LogLevelError
	}
	return &ApplicationConfig{
		Name:        cfg.Window.Title,
		LogLevel:    level,
		StartWidth:  cfg.Window.Width,
		StartHeight: cfg.Window.Height,
		FOVDegrees:  cfg.Renderer.FOVDegrees,
		NearClip:    cfg.Renderer.NearClip,
		FarClip:     cfg.Renderer.FarClip,
		AmbientTop: math.Vec3{
			X: cfg.Renderer.AmbientTop[0],
			Y: cfg.Renderer.AmbientTop[1],
			Z: cfg.Renderer.AmbientTop[2],
		},
		AmbientBottom: math.Vec3{
			X: cfg.Renderer.AmbientBottom[0],
			Y: cfg.Renderer.AmbientBottom[1],
			Z: cfg.Renderer.AmbientBottom[2],
		},
	}, nil
}
