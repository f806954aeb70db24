package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSetDefaults(t *testing.T) {
	var c ServerConfig
	c.SetDefaults()
	if c.Port != 8080 || c.MetricsAddr != ":8080" {
		t.Fatalf("defaults = %+v", c)
	}
	if c.WSPath != "/api/surfaces/connect" || c.Container != "main" || c.LogLevel != "info" {
		t.Fatalf("defaults = %+v", c)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("METRICS_PORT", "9100")
	t.Setenv("SURFACE_URL", "https://viz.example.com/embed")
	t.Setenv("SURFACE_KEY", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	var c ServerConfig
	c.SetDefaults()
	c.ApplyEnv()

	if c.Port != 9999 {
		t.Fatalf("port = %d", c.Port)
	}
	if c.MetricsAddr != ":9100" {
		t.Fatalf("metrics addr = %q", c.MetricsAddr)
	}
	if c.SurfaceURL != "https://viz.example.com/embed" || c.SurfaceKey != "secret" {
		t.Fatalf("surface config = %+v", c)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(c.AllowedOrigins, want) {
		t.Fatalf("origins = %v", c.AllowedOrigins)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	data := []byte("port: 7070\nsurface_url: https://viz.example.com\nallowed_origins:\n  - https://host.example.com\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var c ServerConfig
	c.SetDefaults()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Port != 7070 || c.SurfaceURL != "https://viz.example.com" {
		t.Fatalf("loaded = %+v", c)
	}
	if len(c.AllowedOrigins) != 1 || c.AllowedOrigins[0] != "https://host.example.com" {
		t.Fatalf("origins = %v", c.AllowedOrigins)
	}
	if c.Container != "main" {
		t.Fatalf("file must not reset untouched defaults, container = %q", c.Container)
	}
}

func TestLoadFileMissing(t *testing.T) {
	var c ServerConfig
	if err := c.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
