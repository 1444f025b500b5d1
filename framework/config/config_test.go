package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/celestiaorg/ics721/framework/config"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

func TestDefaultMatchesParams(t *testing.T) {
	params, err := config.Default().Transfer.Params()
	require.NoError(t, err)
	require.Equal(t, types.DefaultParams(), params)
}

func TestDecode(t *testing.T) {
	t.Run("overlay keeps unset defaults", func(t *testing.T) {
		cfg, err := config.Decode([]byte(`
[transfer]
send_enabled = false
default_timeout = "90s"

[log]
level = "debug"
`))
		require.NoError(t, err)
		require.False(t, cfg.Transfer.SendEnabled)
		require.True(t, cfg.Transfer.ReceiveEnabled)
		require.Equal(t, types.PortID, cfg.Transfer.PortID)
		require.Equal(t, "json", cfg.Log.Format)

		params, err := cfg.Transfer.Params()
		require.NoError(t, err)
		require.Equal(t, 90*time.Second, params.DefaultTimeout)
	})

	tests := []struct {
		name string
		toml string
	}{
		{"bad duration", "[transfer]\ndefault_timeout = \"soon\"\n"},
		{"negative duration", "[transfer]\ndefault_timeout = \"-1m\"\n"},
		{"bad port", "[transfer]\nport_id = \"x\"\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"bad format", "[log]\nformat = \"xml\"\n"},
		{"bad toml", "[transfer\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Decode([]byte(tc.toml))
			require.Error(t, err)
		})
	}
}

func TestWriteLoadModify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nft-transfer.toml")

	cfg := config.Default()
	cfg.Transfer.MaxTokensPerPacket = 8
	require.NoError(t, cfg.Write(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	err = config.Modify(path, func(cfg *config.Config) {
		cfg.Transfer.ReceiveEnabled = false
		cfg.Log.Format = "console"
	})
	require.NoError(t, err)

	loaded, err = config.Load(path)
	require.NoError(t, err)
	require.False(t, loaded.Transfer.ReceiveEnabled)
	require.Equal(t, uint32(8), loaded.Transfer.MaxTokensPerPacket)
	require.Equal(t, "console", loaded.Log.Format)

	t.Run("invalid modification is not written", func(t *testing.T) {
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		err = config.Modify(path, func(cfg *config.Config) {
			cfg.Log.Level = "nope"
		})
		require.Error(t, err)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
		require.Error(t, err)
	})
}

func TestLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			logger, err := config.LogConfig{Level: "warn", Format: format}.Logger()
			require.NoError(t, err)
			require.NotNil(t, logger)
			require.False(t, logger.Core().Enabled(-1))
			require.True(t, logger.Core().Enabled(1))
		})
	}
}

func TestLoggerOptions(t *testing.T) {
	var logs *observer.ObservedLogs
	logger, err := config.LogConfig{Level: "warn", Format: "json"}.Logger(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		observed, recorded := observer.New(core)
		logs = recorded
		return observed
	}))
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	require.Equal(t, "kept", entries[0].Message)
	require.Equal(t, types.ModuleName, entries[0].ContextMap()["module"])
}

func TestGenesis(t *testing.T) {
	cfg := config.Default()
	cfg.Transfer.MaxTokensPerPacket = 8

	gs, err := cfg.Genesis()
	require.NoError(t, err)
	require.NoError(t, gs.Validate())
	require.Equal(t, uint32(8), gs.Params.MaxTokensPerPacket)
	require.Empty(t, gs.Channels)

	cfg.Transfer.DefaultTimeout = "0s"
	_, err = cfg.Genesis()
	require.ErrorIs(t, err, types.ErrInvalidGenesis)
}
