package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the location of the configuration file.
const EnvConfigPath = "ICOFORGE_CONFIG"

type WindowConfig struct {
	Width  float32 `yaml:"width" validate:"gte=0"`
	Height float32 `yaml:"height" validate:"gte=0"`
}

// Config holds the user adjustable settings of both binaries.
type Config struct {
	LogLevel     string       `yaml:"logLevel" validate:"omitempty,oneof=debug info warn warning error disabled off"`
	AllSizes     bool         `yaml:"allSizes"`
	DefaultSizes []int        `yaml:"defaultSizes" validate:"dive,min=1,max=256"`
	Resampler    string       `yaml:"resampler" validate:"required"`
	Fit          string       `yaml:"fit" validate:"oneof=pad contain stretch"`
	Format       string       `yaml:"format" validate:"oneof=bmp png"`
	Window       WindowConfig `yaml:"window"`
}

// Default selects every size with Lanczos filtering.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		AllSizes:  true,
		Resampler: "lanczos",
		Fit:       "pad",
		Format:    "bmp",
		Window: WindowConfig{
			Width:  560,
			Height: 420,
		},
	}
}

// LoadConfig loads configuration from the specified YAML file. Keys missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

// Load reads the file named by $ICOFORGE_CONFIG, or the per-user default
// location. A missing default file is not an error.
func Load() (*Config, string, error) {
	path, explicit := DefaultPath()
	if path == "" {
		return Default(), "", nil
	}

	config, err := LoadConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), "", nil
		}
		return nil, path, err
	}
	return config, path, nil
}

// DefaultPath returns the config location and whether it was set explicitly.
func DefaultPath() (string, bool) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "icoforge", "config.yaml"), false
}

// ApplyEnv lets LOG_LEVEL and DEBUG=1 override the configured log level.
func (c *Config) ApplyEnv() {
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		c.LogLevel = level
		return
	}
	if os.Getenv("DEBUG") == "1" {
		c.LogLevel = "debug"
	}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
