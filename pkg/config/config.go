// Package config provides configuration loading and management for trackinterp.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"trackinterp/internal/models"
	"trackinterp/pkg/interpolation"
)

// ErrMissingLayout is returned when a coordinates file is not configured
var ErrMissingLayout = errors.New("coordinates file is not configured")

// Layout describes one electrode layout of the interpolation
type Layout struct {
	// File is the .xyz coordinates file
	File string `yaml:"file"`

	// BadChannels is a channel selection left out of the source layout
	BadChannels string `yaml:"badChannels,omitempty"`

	// Landmarks are the fiducial groups, all five or none
	Landmarks models.Landmarks `yaml:"landmarks,omitempty"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores share the time frames
		NumCores int `yaml:"numCores"`

		// ProgressInterval is the refresh period of the progress bar
		ProgressInterval time.Duration `yaml:"progressInterval"`
	} `yaml:"processing"`

	// Interpolation parameters
	Interpolation struct {
		// Method is one of planar, spherical, current-density, volumetric
		Method string `yaml:"method"`

		// Degree is the spline degree, clamped to [1, 6]
		Degree int `yaml:"degree"`

		// Target is fiducial (use the landmarks) or normalized
		Target string `yaml:"target"`

		From Layout `yaml:"from"`
		To   Layout `yaml:"to"`
	} `yaml:"interpolation"`

	// Output parameters
	Output struct {
		// Infix is inserted between the input name and the extension
		Infix string `yaml:"infix"`

		// Extension of the written files, empty to keep the input one
		Extension string `yaml:"extension"`

		// TempDir receives the intermediate layouts, none when empty
		TempDir string `yaml:"tempDir"`

		// KeepTempFiles leaves the intermediate layouts on disk
		KeepTempFiles bool `yaml:"keepTempFiles"`

		// PlotLayout adds a picture of the projected layouts to TempDir
		PlotLayout bool `yaml:"plotLayout"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// Settings is the parsed interpolation part of a Config
type Settings struct {
	Method interpolation.Method
	Degree int
	Target interpolation.TargetMode
	From   interpolation.PointSpec
	To     interpolation.PointSpec
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.ProgressInterval = 500 * time.Millisecond

	cfg.Interpolation.Method = interpolation.SphericalSpline.String()
	cfg.Interpolation.Degree = interpolation.DefaultDegree
	cfg.Interpolation.Target = interpolation.TargetFiducial.String()

	cfg.Output.Infix = "interpolated"
	cfg.Output.Verbose = true

	return cfg
}

// Settings parses and checks the interpolation section
func (c *Config) Settings() (*Settings, error) {
	method, err := interpolation.ParseMethod(c.Interpolation.Method)
	if err != nil {
		return nil, err
	}
	target, err := interpolation.ParseTargetMode(c.Interpolation.Target)
	if err != nil {
		return nil, err
	}
	if c.Interpolation.From.File == "" {
		return nil, fmt.Errorf("from: %w", ErrMissingLayout)
	}
	if c.Interpolation.To.File == "" {
		return nil, fmt.Errorf("to: %w", ErrMissingLayout)
	}

	return &Settings{
		Method: method,
		Degree: c.Interpolation.Degree,
		Target: target,
		From: interpolation.PointSpec{
			Path:        c.Interpolation.From.File,
			Landmarks:   c.Interpolation.From.Landmarks,
			BadChannels: c.Interpolation.From.BadChannels,
		},
		To: interpolation.PointSpec{
			Path:      c.Interpolation.To.File,
			Landmarks: c.Interpolation.To.Landmarks,
		},
	}, nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
