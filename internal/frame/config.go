package frame

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// ButtonConfig describes one link-action button.
type ButtonConfig struct {
	Label  string `yaml:"label"`
	Target string `yaml:"target"`
}

// Config holds the frame surface's presentational fixtures: button labels,
// link targets and share-image text.
type Config struct {
	Title    string `yaml:"title"`
	Tagline  string `yaml:"tagline"`
	FontFile string `yaml:"fontFile"`
	Buttons  struct {
		Start ButtonConfig `yaml:"start"`
		Log   ButtonConfig `yaml:"log"`
	} `yaml:"buttons"`
}

// DefaultConfig returns the shipped fixtures, used when no frame.yaml is
// present.
func DefaultConfig() *Config {
	cfg := &Config{
		Title:   "Build Streaks",
		Tagline: "Track Your Daily Progress",
	}
	cfg.Buttons.Start = ButtonConfig{Label: "Connect Wallet", Target: "https://app.base.org"}
	cfg.Buttons.Log = ButtonConfig{Label: "Open in Base App", Target: "https://app.base.org"}
	return cfg
}

// LoadConfig reads the frame fixtures from a yaml file. A missing file falls
// back to the built-in defaults; a malformed one is an error.
func LoadConfig(frameFile string) (*Config, error) {
	var framePath string
	if filepath.IsAbs(frameFile) {
		framePath = frameFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		framePath = filepath.Join(wd, frameFile)
	}

	data, err := os.ReadFile(framePath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", frameFile, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", frameFile, err)
	}

	if config.Buttons.Start.Label == "" || config.Buttons.Start.Target == "" {
		return nil, fmt.Errorf("%s: start button requires label and target", frameFile)
	}
	if config.Buttons.Log.Label == "" || config.Buttons.Log.Target == "" {
		return nil, fmt.Errorf("%s: log button requires label and target", frameFile)
	}

	defaults := DefaultConfig()
	if config.Title == "" {
		config.Title = defaults.Title
	}
	if config.Tagline == "" {
		config.Tagline = defaults.Tagline
	}

	return &config, nil
}
