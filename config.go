package flick

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ============================================================================
// Configuration
// ============================================================================

// Config is the on-disk tuning surface for scroll behavior, normally
// loaded from a flick.toml next to the application.
type Config struct {
	Scroll ScrollConfig `toml:"scroll"`
}

// ScrollConfig holds the gesture and physics tunables. Durations are in
// milliseconds, distances in pixels.
type ScrollConfig struct {
	Distance           float64 `toml:"scroll_distance"`
	TimeoutMS          int     `toml:"scroll_timeout"`
	WheelDistance      float64 `toml:"scroll_wheel_distance"`
	ParallelDelegation bool    `toml:"parallel_delegation"`
	SlowDeviceSupport  bool    `toml:"slow_device_support"`
	AlwaysOverscroll   bool    `toml:"always_overscroll"`
	BarWidth           float64 `toml:"bar_width"`
	SmoothScrollEnd    float64 `toml:"smooth_scroll_end"`
}

// DefaultConfig returns the stock tuning, matching DefaultOptions.
func DefaultConfig() *Config {
	return &Config{
		Scroll: ScrollConfig{
			Distance:           20,
			TimeoutMS:          55,
			WheelDistance:      20,
			ParallelDelegation: true,
			BarWidth:           2,
		},
	}
}

// LoadConfig reads a TOML config file. A missing file is not an error;
// defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the config as TOML.
func SaveConfig(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Options converts the scroll section into ScrollView options, filling in
// everything the file does not cover from DefaultOptions.
func (c ScrollConfig) Options() Options {
	opts := DefaultOptions()
	if c.Distance > 0 {
		opts.ScrollDistance = c.Distance
	}
	if c.TimeoutMS > 0 {
		opts.ScrollTimeout = time.Duration(c.TimeoutMS) * time.Millisecond
	}
	if c.WheelDistance > 0 {
		opts.ScrollWheelDistance = c.WheelDistance
	}
	if c.BarWidth > 0 {
		opts.BarWidth = c.BarWidth
	}
	opts.ParallelDelegation = c.ParallelDelegation
	opts.SlowDeviceSupport = c.SlowDeviceSupport
	opts.AlwaysOverscroll = c.AlwaysOverscroll
	opts.SmoothScrollEnd = c.SmoothScrollEnd
	return opts
}
