package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/upscaler/pkg/orchestrator"
	"github.com/user/upscaler/pkg/pipeline"
	"github.com/user/upscaler/pkg/superres"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Input = "in.avi"
	cfg.Output = "out.mp4"
	cfg.ModelsDir = "/opt/models"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Factor != 2 {
		t.Errorf("expected factor 2, got %d", cfg.Factor)
	}
	if cfg.Algo != "espcn" {
		t.Errorf("expected algo espcn, got %s", cfg.Algo)
	}
	if cfg.Workers != orchestrator.DefaultWorkers {
		t.Errorf("expected %d workers, got %d", orchestrator.DefaultWorkers, cfg.Workers)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	content := `
input: movie.avi
output: movie_x4.mp4
models_dir: /opt/dnn_superres_models
factor: 4
algo: edsr
parallel_instances: 3
debug: true
debug_every: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Input != "movie.avi" || cfg.Output != "movie_x4.mp4" {
		t.Errorf("unexpected paths %s -> %s", cfg.Input, cfg.Output)
	}
	if cfg.Factor != 4 || cfg.Algo != "edsr" || cfg.Workers != 3 {
		t.Errorf("unexpected upscale settings %+v", cfg)
	}
	// Unset fields keep their defaults.
	if cfg.LogLevel != "info" || cfg.DebugDir != "./debug" {
		t.Errorf("expected defaults to survive, got log_level=%s debug_dir=%s", cfg.LogLevel, cfg.DebugDir)
	}

	oc, err := cfg.ToOrchestratorConfig()
	if err != nil {
		t.Fatalf("ToOrchestratorConfig failed: %v", err)
	}
	if oc.Algo != superres.EDSR || oc.Factor != 4 || oc.Workers != 3 || oc.DebugEvery != 10 {
		t.Errorf("unexpected orchestrator config %+v", oc)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("factor: [1, 2"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := LoadFromFile(path)
	if !pipeline.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"missing input", func(c *Config) { c.Input = "" }, "input"},
		{"missing output", func(c *Config) { c.Output = "" }, "output"},
		{"missing models", func(c *Config) { c.ModelsDir = "" }, "models_dir"},
		{"zero factor", func(c *Config) { c.Factor = 0 }, "factor"},
		{"unknown algo", func(c *Config) { c.Algo = "bicubic" }, "algo"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "parallel_instances"},
		{"crf out of range", func(c *Config) { c.CRF = 60 }, "crf"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"debug without dir", func(c *Config) { c.Debug = true; c.DebugDir = "" }, "debug_dir"},
		{"bad debug format", func(c *Config) { c.DebugFormat = "gif" }, "debug_format"},
		{"debug quality out of range", func(c *Config) { c.DebugQuality = 101 }, "debug_quality"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if !pipeline.IsConfiguration(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field+":") {
				t.Errorf("expected error to name %s, got %v", tt.field, err)
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadFromFile_MixedCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	content := "input: a.avi\noutput: b.mp4\nmodels_dir: models\nalgo: ESPCN\nlog_level: Debug\nlog_format: JSON\ndebug_format: JPEG\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected mixed-case values to validate, got %v", err)
	}
	if cfg.Algo != "espcn" || cfg.LogLevel != "debug" || cfg.LogFormat != "json" || cfg.DebugFormat != "jpeg" {
		t.Errorf("expected lower-cased values, got %s %s %s %s", cfg.Algo, cfg.LogLevel, cfg.LogFormat, cfg.DebugFormat)
	}
}

func TestNormalize(t *testing.T) {
	cfg := validConfig()
	cfg.Algo = " FSRCNN_Small "
	cfg.Normalize()

	if cfg.Algo != "fsrcnn_small" {
		t.Errorf("expected fsrcnn_small, got %q", cfg.Algo)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestToOrchestratorConfig_DebugDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.DebugEvery = 5

	oc, err := cfg.ToOrchestratorConfig()
	if err != nil {
		t.Fatalf("ToOrchestratorConfig failed: %v", err)
	}
	if oc.DebugEvery != 0 {
		t.Errorf("expected debug sampling off when debug is disabled, got %d", oc.DebugEvery)
	}
}
