// Package config provides configuration management for the wavescan
// application. The engine itself only ever sees the resolved
// wave.Options value.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "wavescan/internal/errors"
	"wavescan/internal/wave"
)

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Tuner   TunerConfig   `mapstructure:"tuner"`
	Signals SignalsConfig `mapstructure:"signals"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EngineConfig holds the detection engine parameters.
type EngineConfig struct {
	SkipN                 int     `mapstructure:"skip_n"`
	MaxGap                int     `mapstructure:"max_gap"`
	BeamWidth             int     `mapstructure:"beam_width"`
	MaxCandidatesPerStart int     `mapstructure:"max_candidates_per_start"`
	NodeBudget            int     `mapstructure:"node_budget"`
	MaxPatterns           int     `mapstructure:"max_patterns"`
	MinConfidence         float64 `mapstructure:"min_confidence"`
	NMSOverlap            float64 `mapstructure:"nms_overlap_threshold"`
	AllowDiagonal         bool    `mapstructure:"allow_diagonal"`
}

// TunerConfig holds the grid-search dimensions.
type TunerConfig struct {
	SkipN      []int `mapstructure:"skip_n"`
	MaxGap     []int `mapstructure:"max_gap"`
	BeamWidths []int `mapstructure:"beam_widths"`
}

// SignalsConfig holds signal-generation parameters.
type SignalsConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/wavescan"
	}
	return filepath.Join(home, ".config", "wavescan")
}

// Load loads configuration from the specified directory. A missing
// config file yields the documented defaults; a malformed one is an
// error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: loading config.toml: %w", apperrors.ErrConfigInvalid, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding config.toml: %w", apperrors.ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := wave.DefaultOptions()
	v.SetDefault("engine.skip_n", def.SkipN)
	v.SetDefault("engine.max_gap", def.MaxGap)
	v.SetDefault("engine.beam_width", def.BeamWidth)
	v.SetDefault("engine.max_candidates_per_start", def.MaxCandidatesPerStart)
	v.SetDefault("engine.node_budget", def.NodeBudget)
	v.SetDefault("engine.max_patterns", def.MaxPatterns)
	v.SetDefault("engine.min_confidence", def.MinConfidence)
	v.SetDefault("engine.nms_overlap_threshold", def.NMSOverlap)
	v.SetDefault("engine.allow_diagonal", def.AllowDiagonal)

	v.SetDefault("tuner.skip_n", []int{0, 1, 2})
	v.SetDefault("tuner.max_gap", []int{1, 2})
	v.SetDefault("tuner.beam_widths", []int{32, 64, 128})

	v.SetDefault("signals.min_confidence", 0.6)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", filepath.Join(DefaultConfigDir(), "logs", "wavescan.log"))
}

// Options converts the engine section into a resolved wave.Options.
func (c *Config) Options() wave.Options {
	return wave.Options{
		SkipN:                 c.Engine.SkipN,
		MaxGap:                c.Engine.MaxGap,
		BeamWidth:             c.Engine.BeamWidth,
		MaxCandidatesPerStart: c.Engine.MaxCandidatesPerStart,
		NodeBudget:            c.Engine.NodeBudget,
		MaxPatterns:           c.Engine.MaxPatterns,
		MinConfidence:         c.Engine.MinConfidence,
		NMSOverlap:            c.Engine.NMSOverlap,
		AllowDiagonal:         c.Engine.AllowDiagonal,
	}
}

// Validate validates the configuration. Failures carry both
// ErrConfigInvalid and the field-level validation error.
func (c *Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrConfigInvalid, err)
	}
	if c.Signals.MinConfidence < 0 || c.Signals.MinConfidence > 1 {
		return fmt.Errorf("%w: %w", apperrors.ErrConfigInvalid,
			apperrors.NewValidationError("signals.min_confidence", c.Signals.MinConfidence, "must be in [0, 1]"))
	}
	return nil
}
