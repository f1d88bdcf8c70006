// Package config loads the host configuration from a TOML file,
// falling back to defaults when the file is absent.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/hollowtide/lumen/engine/core"
)

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	FOVDegrees float32 `toml:"fov_degrees"`
	NearClip   float32 `toml:"near_clip"`
	FarClip    float32 `toml:"far_clip"`

	AmbientTop    [3]float32 `toml:"ambient_top"`
	AmbientBottom [3]float32 `toml:"ambient_bottom"`
}

type Config struct {
	LogLevel string         `toml:"log_level"`
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
}

// Default is the configuration used when no file overrides it.
func Default() Config {
	return Config{
		LogLevel: "info",
		Window: WindowConfig{
			Title:  "Lumen",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			FOVDegrees:    60,
			NearClip:      0.1,
			FarClip:       10,
			AmbientTop:    [3]float32{0.2, 0.2, 0.2},
			AmbientBottom: [3]float32{0.06, 0.08, 0.06},
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogInfo("no config at '%s', using defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config '%s': %w", path, err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config '%s': %w", path, err)
	}
	if cfg.Window.Width == 0 || cfg.Window.Height == 0 {
		return cfg, fmt.Errorf("config '%s': window size must be non-zero", path)
	}
	return cfg, nil
}
