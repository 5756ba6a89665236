package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	tmp := t.TempDir()
	return &Config{
		SourceDir:       filepath.Join(tmp, "source"),
		ReplicaDir:      filepath.Join(tmp, "replica"),
		IntervalSeconds: 5,
		LogFile:         filepath.Join(tmp, "logs", "mirror.log"),
		LockDir:         filepath.Join(tmp, "locks"),
	}
}

func TestConfig_Validate_NormalizesAndDefaults(t *testing.T) {
	cfg := validConfig(t)
	cfg.SourceDir = cfg.SourceDir + string(filepath.Separator) + "." + string(filepath.Separator)
	cfg.Hash = " SHA256 "

	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.SourceDir))
	assert.Equal(t, "source", filepath.Base(cfg.SourceDir))
	assert.Equal(t, HashSHA256, cfg.Hash)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Interval())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestConfig_Validate_DefaultsLogFileAndHash(t *testing.T) {
	cfg := validConfig(t)
	cfg.LogFile = ""
	cfg.LockDir = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Equal(t, DefaultLockDir, cfg.LockDir)
	assert.Equal(t, HashMD5, cfg.Hash)
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"missing source", func(c *Config) { c.SourceDir = "  " }, ErrSourceRequired},
		{"missing replica", func(c *Config) { c.ReplicaDir = "" }, ErrReplicaRequired},
		{"zero interval", func(c *Config) { c.IntervalSeconds = 0 }, ErrInvalidInterval},
		{"negative interval", func(c *Config) { c.IntervalSeconds = -3 }, ErrInvalidInterval},
		{"same dir", func(c *Config) { c.ReplicaDir = c.SourceDir }, ErrNestedTrees},
		{"replica inside source", func(c *Config) { c.ReplicaDir = filepath.Join(c.SourceDir, "mirror") }, ErrNestedTrees},
		{"source inside replica", func(c *Config) { c.SourceDir = filepath.Join(c.ReplicaDir, "src") }, ErrNestedTrees},
		{"log in replica", func(c *Config) { c.LogFile = filepath.Join(c.ReplicaDir, "mirror.log") }, ErrLogInReplica},
		{"log in source", func(c *Config) { c.LogFile = filepath.Join(c.SourceDir, "logs", "mirror.log") }, ErrLogInSource},
		{"lock dir in replica", func(c *Config) { c.LockDir = filepath.Join(c.ReplicaDir, ".locks") }, ErrLockInReplica},
		{"bad hash", func(c *Config) { c.Hash = "crc32" }, ErrUnknownHash},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, ErrUnknownLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfig_Validate_SiblingWithSharedPrefix(t *testing.T) {
	cfg := validConfig(t)
	cfg.ReplicaDir = cfg.SourceDir + "-replica"
	assert.NoError(t, cfg.Validate(), "a sibling sharing a name prefix is not nested")
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("loud")
	assert.ErrorIs(t, err, ErrUnknownLogLevel)
}
