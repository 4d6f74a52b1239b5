// Package config loads and validates job settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/user/upscaler/pkg/orchestrator"
	"github.com/user/upscaler/pkg/pipeline"
	"github.com/user/upscaler/pkg/superres"
)

// Config is the file representation of an upscale job. Command-line flags
// override individual fields after loading.
type Config struct {
	// Input/Output
	Input     string `yaml:"input" validate:"required"`
	Output    string `yaml:"output" validate:"required"`
	ModelsDir string `yaml:"models_dir" validate:"required"`

	// Upscaling
	Factor  int    `yaml:"factor" validate:"gt=0"`
	Algo    string `yaml:"algo" validate:"oneof=edsr fsrcnn fsrcnn_small lapsrn espcn"`
	Workers int    `yaml:"parallel_instances" validate:"gte=0"`

	// Encoding
	CRF        int    `yaml:"crf" validate:"gte=0,lte=51"`
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Logging
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error quiet"`
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`

	// Debug
	Debug        bool   `yaml:"debug"`
	DebugDir     string `yaml:"debug_dir" validate:"required_if=Debug true"`
	DebugEvery   int    `yaml:"debug_every" validate:"gte=0"`
	DebugFormat  string `yaml:"debug_format" validate:"oneof=png jpeg"`
	DebugQuality int    `yaml:"debug_quality" validate:"gte=0,lte=100"`

	// Summary is an optional Markdown report path.
	Summary string `yaml:"summary"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Factor:      2,
		Algo:        superres.DefaultAlgo.String(),
		Workers:     orchestrator.DefaultWorkers,
		LogLevel:    "info",
		LogFormat:   "console",
		DebugDir:    "./debug",
		DebugEvery:  30,
		DebugFormat: "png",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, pipeline.WrapConfig(fmt.Errorf("parse %s: %w", path, err))
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize lower-cases the enumerated fields so that they match
// case-insensitively, the way superres.ParseAlgo does.
func (c *Config) Normalize() {
	for _, f := range []*string{&c.Algo, &c.LogLevel, &c.LogFormat, &c.DebugFormat} {
		*f = strings.ToLower(strings.TrimSpace(*f))
	}
}

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their YAML names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks field constraints. Failures match pipeline.ErrConfiguration.
func (c Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pipeline.WrapConfig(err)
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, e.Field()+": "+formatValidationError(e))
	}
	return pipeline.ConfigError("%s", strings.Join(messages, "; "))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

// ToOrchestratorConfig validates c and converts it to an orchestrator.Config.
func (c Config) ToOrchestratorConfig() (orchestrator.Config, error) {
	if err := c.Validate(); err != nil {
		return orchestrator.Config{}, err
	}

	algo, err := superres.ParseAlgo(c.Algo)
	if err != nil {
		return orchestrator.Config{}, pipeline.WrapConfig(err)
	}

	oc := orchestrator.Config{
		InputPath:  c.Input,
		OutputPath: c.Output,
		ModelsDir:  c.ModelsDir,
		Factor:     c.Factor,
		Algo:       algo,
		Workers:    c.Workers,
		CRF:        c.CRF,
	}
	if c.Debug {
		oc.DebugEvery = c.DebugEvery
	}
	return oc, nil
}
