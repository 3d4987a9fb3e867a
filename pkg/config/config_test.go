package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.PreviewWidth != 320 {
		t.Errorf("preview width %d, want 320", cfg.PreviewWidth)
	}
	if cfg.PlaybackMaxWidth != 1280 {
		t.Errorf("playback max width %d, want 1280", cfg.PlaybackMaxWidth)
	}
	if cfg.PlaybackFPS != 30 {
		t.Errorf("playback fps %f, want 30", cfg.PlaybackFPS)
	}
	if len(cfg.Extensions) == 0 {
		t.Error("no default extensions")
	}
	if cfg.Workers <= 0 {
		t.Error("default workers must be positive")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "vidshelf.yaml")
	content := []byte("preview_width: 480\nplayback_fps: 24\nworkers: 2\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PreviewWidth != 480 {
		t.Errorf("preview width %d, want 480", cfg.PreviewWidth)
	}
	if cfg.PlaybackFPS != 24 {
		t.Errorf("playback fps %f, want 24", cfg.PlaybackFPS)
	}
	if cfg.Workers != 2 {
		t.Errorf("workers %d, want 2", cfg.Workers)
	}

	// Untouched fields keep defaults.
	if cfg.PlaybackMaxWidth != 1280 {
		t.Errorf("playback max width %d, want default 1280", cfg.PlaybackMaxWidth)
	}
	if cfg.ThumbnailWidth != 320 {
		t.Errorf("thumbnail width %d, want default 320", cfg.ThumbnailWidth)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/vidshelf.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "broken.yaml")
	if err := os.WriteFile(path, []byte("preview_width: [not a number"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
