// Package config loads process settings from an optional CUE file.
//
// Settings resolve in three layers: the defaults carried by the embedded
// #Config schema, the user's file unified with that schema, then
// BOOKSTORE_* environment variables. Command-line flags are applied by the
// caller on top.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource string

// Environment overrides.
const (
	EnvDataDir    = "BOOKSTORE_DATA_DIR"
	EnvLogLevel   = "BOOKSTORE_LOG_LEVEL"
	EnvSyncWrites = "BOOKSTORE_SYNC_WRITES"
)

// Root is the superuser created on first startup.
type Root struct {
	ID       string `json:"id" yaml:"id"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
}

// Config is the resolved process configuration.
type Config struct {
	DataDir      string `json:"data_dir" yaml:"data_dir"`
	Database     string `json:"database" yaml:"database"`
	LedgerPrefix string `json:"ledger_prefix" yaml:"ledger_prefix"`
	BcryptCost   int    `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	SyncWrites   bool   `json:"sync_writes" yaml:"sync_writes"`
	LogLevel     string `json:"log_level" yaml:"log_level"`
	Root         Root   `json:"root" yaml:"root"`
}

// Load resolves the configuration. An empty path uses schema defaults only.
func Load(path string) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		file := ctx.CompileBytes(data, cue.Filename(path))
		if err := file.Err(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		v = v.Unify(file)
	}
	if err := v.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if _, err := parseLevel(v); err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		c.LogLevel = v
	}
	if v := os.Getenv(EnvSyncWrites); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSyncWrites, err)
		}
		c.SyncWrites = enabled
	}
	return nil
}

// DatabasePath returns the SQLite file path.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.Database)
}

// LedgerPath returns the ledger file prefix.
func (c Config) LedgerPath() string {
	return filepath.Join(c.DataDir, c.LedgerPrefix)
}

// Level returns LogLevel as a slog level. Unknown names fall back to info.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return l, nil
}
