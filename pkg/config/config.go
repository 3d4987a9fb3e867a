// Package config provides configuration loading for vidshelf.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config covers the decode subsystem and the scan pipeline.
type Config struct {
	// Decoding
	PreviewWidth     int     `yaml:"preview_width"`      // hover scrub frames
	PlaybackMaxWidth int     `yaml:"playback_max_width"` // in-app player frames
	PlaybackFPS      float64 `yaml:"playback_fps"`

	// Scanning
	Extensions []string `yaml:"extensions"`
	SkipDirs   []string `yaml:"skip_dirs"`
	Workers    int      `yaml:"workers"`

	// Artifacts
	ThumbnailWidth  int `yaml:"thumbnail_width"`
	ThumbnailJPEGQ  int `yaml:"thumbnail_jpeg_quality"`
	SpriteColumns   int `yaml:"sprite_columns"`
	SpriteRows      int `yaml:"sprite_rows"`
	SpriteTileWidth int `yaml:"sprite_tile_width"`

	// Tools
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		PreviewWidth:     320,
		PlaybackMaxWidth: 1280,
		PlaybackFPS:      30,

		Extensions: []string{".mov", ".mp4", ".m4v", ".avi", ".mkv", ".webm"},
		SkipDirs: []string{
			"node_modules", "__MACOSX", ".Trash",
			".Spotlight-V100", ".fseventsd", ".vidshelf",
		},
		Workers: 4,

		ThumbnailWidth:  320,
		ThumbnailJPEGQ:  85,
		SpriteColumns:   5,
		SpriteRows:      5,
		SpriteTileWidth: 160,

		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults. Fields absent from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
