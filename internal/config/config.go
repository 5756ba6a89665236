package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openmined/syftmirror/internal/utils"
)

const (
	HashMD5    = "md5"
	HashSHA256 = "sha256"

	DefaultIntervalSeconds = 60
	DefaultHash            = HashMD5
	DefaultLogLevel        = "info"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigDir  = filepath.Join(home, ".syftmirror")
	DefaultConfigPath = filepath.Join(DefaultConfigDir, "config.json")
	DefaultLogFile    = filepath.Join(DefaultConfigDir, "logs", "syftmirror.log")
	DefaultLockDir    = filepath.Join(DefaultConfigDir, "locks")
)

var (
	ErrSourceRequired  = errors.New("source path is required")
	ErrReplicaRequired = errors.New("replica path is required")
	ErrInvalidInterval = errors.New("interval must be a positive number of seconds")
	ErrNestedTrees     = errors.New("source and replica must not contain each other")
	ErrLogInReplica    = errors.New("log file must not be inside the replica")
	ErrLogInSource     = errors.New("log file must not be inside the source")
	ErrLockInReplica   = errors.New("lock dir must not be inside the replica")
	ErrUnknownHash     = errors.New("unknown hash algorithm")
	ErrUnknownLogLevel = errors.New("unknown log level")
)

type Config struct {
	SourceDir       string `json:"source_dir" mapstructure:"source_dir"`
	ReplicaDir      string `json:"replica_dir" mapstructure:"replica_dir"`
	IntervalSeconds int    `json:"interval" mapstructure:"interval"`
	LogFile         string `json:"log_file" mapstructure:"log_file"`
	Hash            string `json:"hash" mapstructure:"hash"`
	LogLevel        string `json:"log_level" mapstructure:"log_level"`
	LockDir         string `json:"lock_dir" mapstructure:"lock_dir"`
	Once            bool   `json:"-" mapstructure:"-"`
	Path            string `json:"-" mapstructure:"-"`
}

// Validate normalizes paths and names, fills defaults for optional fields and
// rejects combinations that would make the mirror destroy its own inputs.
func (c *Config) Validate() error {
	var err error

	if strings.TrimSpace(c.SourceDir) == "" {
		return ErrSourceRequired
	}
	if c.SourceDir, err = utils.ResolvePath(c.SourceDir); err != nil {
		return fmt.Errorf("source path: %w", err)
	}

	if strings.TrimSpace(c.ReplicaDir) == "" {
		return ErrReplicaRequired
	}
	if c.ReplicaDir, err = utils.ResolvePath(c.ReplicaDir); err != nil {
		return fmt.Errorf("replica path: %w", err)
	}

	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, c.IntervalSeconds)
	}

	if utils.IsWithin(c.SourceDir, c.ReplicaDir) || utils.IsWithin(c.ReplicaDir, c.SourceDir) {
		return fmt.Errorf("%w: source=%s replica=%s", ErrNestedTrees, c.SourceDir, c.ReplicaDir)
	}

	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.LogFile, err = utils.ResolvePath(c.LogFile); err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	// anything in the replica that is not in the source gets deleted on the next pass
	if utils.IsWithin(c.ReplicaDir, c.LogFile) {
		return fmt.Errorf("%w: %s", ErrLogInReplica, c.LogFile)
	}
	// it would grow between passes and be copied again on every one
	if utils.IsWithin(c.SourceDir, c.LogFile) {
		return fmt.Errorf("%w: %s", ErrLogInSource, c.LogFile)
	}

	if c.LockDir == "" {
		c.LockDir = DefaultLockDir
	}
	if c.LockDir, err = utils.ResolvePath(c.LockDir); err != nil {
		return fmt.Errorf("lock dir: %w", err)
	}
	if utils.IsWithin(c.ReplicaDir, c.LockDir) {
		return fmt.Errorf("%w: %s", ErrLockInReplica, c.LockDir)
	}

	c.Hash = strings.ToLower(strings.TrimSpace(c.Hash))
	switch c.Hash {
	case "":
		c.Hash = DefaultHash
	case HashMD5, HashSHA256:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHash, c.Hash)
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Path != "" {
		if c.Path, err = utils.ResolvePath(c.Path); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}

	return nil
}

// Interval is the pause between the end of one pass and the start of the next
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// SlogLevel returns the parsed log level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, s)
	}
	return level, nil
}
