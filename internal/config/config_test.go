package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "matchd.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaultsToSparseFile(t *testing.T) {
	path := writeTemp(t, `port = 4000`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4000, cfg.Port)
	require.Equal(t, "0.0.0.0", cfg.Addr)
	require.Equal(t, 16, cfg.RelayBufferSize)
	require.Equal(t, 13, cfg.HistoryCapacity)
}

func TestLoadFullFile(t *testing.T) {
	path := writeTemp(t, `
addr = "127.0.0.1"
port = 39005
variants = [1, 34, 35]
allow_reset_puzzle = true
trace = true
admin_addr = "127.0.0.1:2222"
per_turn_timeout_seconds = 120
relay_buffer_size = 32
history_capacity = 13
open_public_capacity = 13
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 34, 35}, cfg.Variants)
	require.True(t, cfg.AllowResetPuzzle)
	require.Equal(t, "127.0.0.1:2222", cfg.AdminAddr)
	require.Equal(t, 120, cfg.PerTurnTimeoutSeconds)
}

func TestLoadCapsOversizedCapacities(t *testing.T) {
	path := writeTemp(t, `
history_capacity = 999
open_public_capacity = 999
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 13, cfg.HistoryCapacity)
	require.Equal(t, 13, cfg.OpenPublicCapacity)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := writeTemp(t, `port = 0`)
	_, err := Load(path)
	require.Error(t, err)
}
