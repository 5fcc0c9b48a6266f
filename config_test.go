package narrow_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/physkit/narrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := narrow.DefaultConfig()
	assert.True(t, math.IsInf(cfg.DefaultSpeculativeMargin, 1))
	assert.Equal(t, 0.005, cfg.ContactTolerance)
	assert.True(t, cfg.WarmStart())

	cfg.WarmStartCoefficient = 0
	assert.False(t, cfg.WarmStart())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrow.toml")
	data := "default_speculative_margin = 2.5\ncontact_tolerance = 0.01\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := narrow.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.DefaultSpeculativeMargin)
	assert.Equal(t, 0.01, cfg.ContactTolerance)
	// Missing keys keep their defaults.
	assert.Equal(t, 1.0, cfg.WarmStartCoefficient)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := narrow.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrow.toml")
	want := narrow.Config{
		DefaultSpeculativeMargin: 4,
		ContactTolerance:         0.02,
		WarmStartCoefficient:     0.5,
	}
	require.NoError(t, narrow.SaveConfig(path, want))

	got, err := narrow.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
