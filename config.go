package narrow

import (
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunables of the narrow phase.
//
// Both distances are expressed in length units and scaled by the narrow
// phase's length unit before use, so a config file keeps working when a
// project changes its world scale.
type Config struct {
	// DefaultSpeculativeMargin is the maximum speculative contact distance
	// used for colliders and bodies that carry no override. Unbounded by
	// default, which detects all contacts a body could reach in one step.
	DefaultSpeculativeMargin float64 `toml:"default_speculative_margin"`

	// ContactTolerance keeps contacts alive for slightly separated shapes,
	// preventing missed collisions and jitter for resting stacks.
	ContactTolerance float64 `toml:"contact_tolerance"`

	// WarmStartCoefficient scales the solver's warm-start impulses.
	// Contact matching across frames runs only when it is positive.
	WarmStartCoefficient float64 `toml:"warm_start_coefficient"`
}

// DefaultConfig returns the narrow-phase defaults.
func DefaultConfig() Config {
	return Config{
		DefaultSpeculativeMargin: math.Inf(1),
		ContactTolerance:         0.005,
		WarmStartCoefficient:     1.0,
	}
}

// WarmStart reports whether contact matching and impulse carry-over run.
func (c Config) WarmStart() bool {
	return c.WarmStartCoefficient > 0
}

// LoadConfig reads a TOML config file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("narrow: read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("narrow: parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config as TOML.
func SaveConfig(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("narrow: encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("narrow: write config: %w", err)
	}
	return nil
}
