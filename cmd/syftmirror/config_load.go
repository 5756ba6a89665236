package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/openmined/syftmirror/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "SYFTMIRROR"
	envConfigPath  = "SYFTMIRROR_CONFIG_PATH"
	configFileName = "config"
)

var (
	home, _           = os.UserHomeDir()
	defaultConfigPath = config.DefaultConfigPath
	defaultLogFile    = config.DefaultLogFile
	defaultLockDir    = config.DefaultLockDir
	defaultInterval   = config.DefaultIntervalSeconds
	defaultHash       = config.DefaultHash
	defaultLogLevel   = config.DefaultLogLevel
)

// flag name -> config key
var flagKeys = map[string]string{
	"source":    "source_dir",
	"replica":   "replica_dir",
	"interval":  "interval",
	"log-file":  "log_file",
	"hash":      "hash",
	"log-level": "log_level",
	"lock-dir":  "lock_dir",
	"once":      "once",
}

// positional arguments: source replica interval logfile
var positionalKeys = []string{"source_dir", "replica_dir", "interval", "log_file"}

var errIntervalArg = errors.New("provided interval argument is not a valid integer")

// loadConfig merges, from lowest to highest precedence: flag defaults, the
// config file, SYFTMIRROR_* env vars, explicitly set flags and positional args.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	v := viper.New()

	if configPath := resolveConfigPath(cmd); configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(config.DefaultConfigDir)
		v.AddConfigPath(filepath.Join(home, ".config", "syftmirror"))
		v.SetConfigName(configFileName)
		v.SetConfigType("json")
	}

	configUsed := ""
	if err := v.ReadInConfig(); err == nil {
		configUsed = v.ConfigFileUsed()
	} else {
		enoent := errors.Is(err, os.ErrNotExist)
		var notFound viper.ConfigFileNotFoundError
		if !enoent && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for i, arg := range args {
		key := positionalKeys[i]
		if key == "interval" {
			n, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil {
				return nil, fmt.Errorf("%w: %q", errIntervalArg, arg)
			}
			v.Set(key, n)
			continue
		}
		v.Set(key, arg)
	}

	cfg := &config.Config{
		SourceDir:       v.GetString("source_dir"),
		ReplicaDir:      v.GetString("replica_dir"),
		IntervalSeconds: v.GetInt("interval"),
		LogFile:         v.GetString("log_file"),
		Hash:            v.GetString("hash"),
		LogLevel:        v.GetString("log_level"),
		LockDir:         v.GetString("lock_dir"),
		Once:            v.GetBool("once"),
		Path:            configUsed,
	}
	return cfg, nil
}

// resolveConfigPath returns the explicit config file, if any:
// the --config flag when set, otherwise SYFTMIRROR_CONFIG_PATH.
// An empty result means "search the default locations".
func resolveConfigPath(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	return os.Getenv(envConfigPath)
}
