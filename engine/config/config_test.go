package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("missing file config = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.toml")
	body := `
log_level = "debug"

[window]
title = "demo"
width = 256
height = 256

[renderer]
fov_degrees = 45.0
ambient_top = [0.1, 0.2, 0.3]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" || cfg.Window.Width != 256 || cfg.Renderer.FOVDegrees != 45 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Renderer.AmbientTop != [3]float32{0.1, 0.2, 0.3} {
		t.Fatalf("ambient top = %v", cfg.Renderer.AmbientTop)
	}
	// Unset sections keep their defaults.
	if cfg.Renderer.NearClip != 0.1 {
		t.Fatalf("near clip default lost: %v", cfg.Renderer.NearClip)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("window = {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config should fail")
	}

	zero := filepath.Join(t.TempDir(), "zero.toml")
	if err := os.WriteFile(zero, []byte("[window]\nwidth = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(zero); err == nil {
		t.Fatal("zero window size should fail")
	}
}
