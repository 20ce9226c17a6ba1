// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/jhuberd/timestamper/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Stamp StampConfig `mapstructure:"stamp"`
	Video VideoConfig `mapstructure:"video"`
}

// StampConfig holds configuration for the stamping stage
type StampConfig struct {
	FontSize string `mapstructure:"font_size"`
	Dual     bool   `mapstructure:"dual"`
	Quality  int    `mapstructure:"quality"`
	Prefix   string `mapstructure:"prefix"`
}

// VideoConfig holds configuration for the timelapse assembly stage
type VideoConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	FPS            int    `mapstructure:"fps"`
	CRF            int    `mapstructure:"crf"`
	Output         string `mapstructure:"output"`
	EncoderPath    string `mapstructure:"encoder_path"`
	SkipDuplicates bool   `mapstructure:"skip_duplicates"`
	DedupThreshold int    `mapstructure:"dedup_threshold"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Stamp: StampConfig{
			FontSize: string(types.FontMedium),
			Dual:     true,
			Quality:  90,
			Prefix:   "stamped_",
		},
		Video: VideoConfig{
			Enabled:        false,
			FPS:            30,
			CRF:            23,
			Output:         "timelapse.mp4",
			EncoderPath:    "ffmpeg",
			SkipDuplicates: false,
			DedupThreshold: 10,
		},
	}
}

// Load reads a YAML configuration file and merges it over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &c, nil
}

// LoadOrDefault loads the config at path. An empty path falls back to the
// file at GetConfigPath() when one exists, and to Default() otherwise; an
// explicit path that cannot be read is an error.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
		if _, err := os.Stat(path); err != nil {
			return Default(), nil
		}
	}
	return Load(path)
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("stamp.font_size", d.Stamp.FontSize)
	v.SetDefault("stamp.dual", d.Stamp.Dual)
	v.SetDefault("stamp.quality", d.Stamp.Quality)
	v.SetDefault("stamp.prefix", d.Stamp.Prefix)
	v.SetDefault("video.enabled", d.Video.Enabled)
	v.SetDefault("video.fps", d.Video.FPS)
	v.SetDefault("video.crf", d.Video.CRF)
	v.SetDefault("video.output", d.Video.Output)
	v.SetDefault("video.encoder_path", d.Video.EncoderPath)
	v.SetDefault("video.skip_duplicates", d.Video.SkipDuplicates)
	v.SetDefault("video.dedup_threshold", d.Video.DedupThreshold)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !types.FontPreset(c.Stamp.FontSize).Valid() {
		return fmt.Errorf("stamp.font_size must be one of small, medium, large")
	}
	if c.Stamp.Quality < 1 || c.Stamp.Quality > 100 {
		return fmt.Errorf("stamp.quality must be between 1 and 100")
	}
	if c.Video.FPS < 1 {
		return fmt.Errorf("video.fps must be positive")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return fmt.Errorf("video.crf must be between 0 and 51")
	}
	if c.Video.Output == "" {
		return fmt.Errorf("video.output cannot be empty")
	}
	if c.Video.DedupThreshold < 1 {
		return fmt.Errorf("video.dedup_threshold must be positive")
	}
	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "timestamper", "config.yaml")
}
