package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// Config is the on-disk configuration of the nft-transfer module.
type Config struct {
	Transfer TransferConfig `toml:"transfer"`
	Log      LogConfig      `toml:"log"`
}

// TransferConfig holds the initial module params.
type TransferConfig struct {
	PortID             string `toml:"port_id"`
	SendEnabled        bool   `toml:"send_enabled"`
	ReceiveEnabled     bool   `toml:"receive_enabled"`
	MaxTokensPerPacket uint32 `toml:"max_tokens_per_packet"`
	// DefaultTimeout is a Go duration string, e.g. "10m".
	DefaultTimeout string `toml:"default_timeout"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration matching types.DefaultParams.
func Default() Config {
	params := types.DefaultParams()
	return Config{
		Transfer: TransferConfig{
			PortID:             params.PortID,
			SendEnabled:        params.SendEnabled,
			ReceiveEnabled:     params.ReceiveEnabled,
			MaxTokensPerPacket: params.MaxTokensPerPacket,
			DefaultTimeout:     params.DefaultTimeout.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML content on top of the defaults.
func Decode(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg to path.
func (c Config) Write(path string) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Modify reads path, applies modification and writes the result back.
func Modify(path string, modification func(cfg *Config)) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	modification(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.Write(path)
}

// Validate checks both sections.
func (c Config) Validate() error {
	if _, err := c.Transfer.Params(); err != nil {
		return err
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Params converts the transfer section into module params.
func (t TransferConfig) Params() (types.Params, error) {
	timeout, err := time.ParseDuration(t.DefaultTimeout)
	if err != nil {
		return types.Params{}, fmt.Errorf("failed to parse default_timeout: %w", err)
	}
	params := types.Params{
		PortID:             t.PortID,
		SendEnabled:        t.SendEnabled,
		ReceiveEnabled:     t.ReceiveEnabled,
		MaxTokensPerPacket: t.MaxTokensPerPacket,
		DefaultTimeout:     timeout,
	}
	if err := params.Validate(); err != nil {
		return types.Params{}, err
	}
	return params, nil
}

// Logger builds a zap logger. The json format uses the production encoder, console
// the development one. opts are applied when building.
func (l LogConfig) Logger(opts ...zap.Option) (*zap.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	switch l.Format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.With(zap.String("module", types.ModuleName)), nil
}

func (l LogConfig) level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// Genesis returns a genesis state with the configured params and no channels.
func (c Config) Genesis() (types.GenesisState, error) {
	params, err := c.Transfer.Params()
	if err != nil {
		return types.GenesisState{}, err
	}
	gs := types.DefaultGenesisState()
	gs.Params = params
	return *gs, nil
}
