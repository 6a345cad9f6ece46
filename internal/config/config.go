package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zantac/OSN/internal/subtitle"
)

const (
	DefaultTickInterval = 100 * time.Millisecond
	DefaultNudgeStep    = 500 * time.Millisecond
	DefaultListen       = "127.0.0.1:8765"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	// Decoding
	Encoding         subtitle.Encoding `yaml:"encoding"`
	FallbackEncoding subtitle.Encoding `yaml:"fallback_encoding"`

	// Playback
	TickInterval time.Duration `yaml:"tick_interval"`
	NudgeStep    time.Duration `yaml:"nudge_step"`

	// Bridge
	Listen string `yaml:"listen"`
	Watch  bool   `yaml:"watch"`

	// Video sources
	FFmpegPath     string `yaml:"ffmpeg_path"`
	SubtitleStream int    `yaml:"subtitle_stream"`

	path string
}

func Default() *Config {
	return &Config{
		Encoding:         subtitle.EncodingAuto,
		FallbackEncoding: subtitle.DefaultFallback,
		TickInterval:     DefaultTickInterval,
		NudgeStep:        DefaultNudgeStep,
		Listen:           DefaultListen,
	}
}

// Load reads path over the defaults. An empty path, or a path that does
// not exist, yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Path is the file the config was read from, empty for defaults.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Encoding.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("encoding: %w", err))
	}
	if c.FallbackEncoding.IsAuto() {
		errs = append(errs, errors.New("fallback_encoding: must name a concrete encoding"))
	} else if err := c.FallbackEncoding.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fallback_encoding: %w", err))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval: must be positive, got %v", c.TickInterval))
	}
	if c.NudgeStep <= 0 {
		errs = append(errs, fmt.Errorf("nudge_step: must be positive, got %v", c.NudgeStep))
	}
	if c.Listen == "" {
		errs = append(errs, errors.New("listen: must not be empty"))
	}
	if c.SubtitleStream < 0 {
		errs = append(errs, fmt.Errorf("subtitle_stream: must not be negative, got %d", c.SubtitleStream))
	}
	return errors.Join(errs...)
}
