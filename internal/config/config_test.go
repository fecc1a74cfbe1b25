package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ventosilenzioso/cubesync/internal/playout"
	"github.com/ventosilenzioso/cubesync/internal/snapshot"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default().NumCubes, cfg.NumCubes)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("num_cubes: 32\ncompression_mode: QUANTIZE_POSITION\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 32, cfg.NumCubes)
	require.Equal(t, Default().SendRateHz, cfg.SendRateHz, "unspecified field should retain its default")
}

func TestModeParsesCompressionMode(t *testing.T) {
	cfg := Default()
	cfg.CompressionMode = "AT_REST"
	mode, err := cfg.Mode()
	require.NoError(t, err)
	require.Equal(t, snapshot.AtRest, mode)
}

func TestModeRejectsUnknownName(t *testing.T) {
	cfg := Default()
	cfg.CompressionMode = "NOT_A_MODE"
	_, err := cfg.Mode()
	require.Error(t, err)
}

func TestInterpolationMethodDefaultsByMode(t *testing.T) {
	cfg := Default()
	require.Equal(t, playout.Hermite, cfg.InterpolationMethod(snapshot.Uncompressed))
	require.Equal(t, playout.Linear, cfg.InterpolationMethod(snapshot.QuantizePosition))
}
