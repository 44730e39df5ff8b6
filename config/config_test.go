package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
shorts:
  duration_sec: 40
  appear_times: [1, 5, 9, 14, 20]
subtitles:
  chunk_words: 4
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shorts.DurationSec != 40 {
		t.Errorf("duration = %v, want 40", cfg.Shorts.DurationSec)
	}
	if len(cfg.Shorts.AppearTimes) != 5 || cfg.Shorts.AppearTimes[2] != 9 {
		t.Errorf("appear_times = %v, want [1 5 9 14 20]", cfg.Shorts.AppearTimes)
	}
	if cfg.Subtitles.ChunkWords != 4 {
		t.Errorf("chunk_words = %d, want 4", cfg.Subtitles.ChunkWords)
	}
	// untouched sections keep their defaults
	if cfg.Overlay.RowPitch != 145 {
		t.Errorf("row_pitch = %d, want default 145", cfg.Overlay.RowPitch)
	}
	if cfg.Audio.Voices["right"] != "p226" {
		t.Errorf("right voice = %q, want p226", cfg.Audio.Voices["right"])
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"min over max", func(c *Config) { c.Subtitles.MinCueSec = 4 }, "min_cue_sec"},
		{"appear past end", func(c *Config) { c.Shorts.AppearTimes = []float64{2, 7, 14, 22, 36} }, "appear_times[4]"},
		{"too few appear times", func(c *Config) { c.Shorts.AppearTimes = []float64{2, 7, 14} }, "3 entries"},
		{"appear times out of order", func(c *Config) { c.Shorts.AppearTimes = []float64{2, 14, 7, 22, 29} }, "appear_times[2]"},
		{"appear times tie", func(c *Config) { c.Shorts.AppearTimes = []float64{2, 7, 7, 22, 29} }, "appear_times[2]"},
		{"negative appear time", func(c *Config) { c.Shorts.AppearTimes = []float64{-1, 7, 14, 22, 29} }, "appear_times[0]"},
		{"zero chunk", func(c *Config) { c.Subtitles.ChunkWords = 0 }, "chunk_words"},
		{"unknown engine", func(c *Config) { c.Audio.Engine = "espeak" }, "audio.engine"},
		{"unknown backend", func(c *Config) { c.State.Backend = "etcd" }, "state.backend"},
		{"chat taller than canvas", func(c *Config) { c.Overlay.ChatHeight = 5000 }, "chat_height"},
		{"zero weight", func(c *Config) { c.Audio.MixWeight = 0 }, "mix_weight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
