package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/syftmirror/internal/config"
	"github.com/openmined/syftmirror/internal/mirror"
	"github.com/openmined/syftmirror/internal/version"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "syftmirror [source] [replica] [interval] [logfile]",
		Short: "Mirror a source folder into a replica folder on a fixed interval",
		Long: `syftmirror keeps a replica folder identical to a source folder.
Every interval it copies new and changed files into the replica and deletes
everything in the replica that is not in the source.`,
		Version:       version.Detailed(),
		Args:          cobra.MaximumNArgs(4),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// all good now, show header
			cmd.SilenceUsage = true
			showHeader(cmd, cfg)

			logger, closeLog, err := setupLogging(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			m, err := mirror.New(cfg, logger)
			if err != nil {
				return err
			}

			logger.Info("synchronization started")
			defer logger.Info("synchronization stopped")
			return m.Start(cmd.Context())
		},
	}

	flags := rootCmd.Flags()
	flags.SortFlags = false
	flags.StringP("source", "s", "", "Source folder to mirror")
	flags.StringP("replica", "r", "", "Replica folder kept identical to the source")
	flags.IntP("interval", "i", defaultInterval, "Seconds to wait between synchronization passes")
	flags.StringP("log-file", "l", defaultLogFile, "File the synchronization log is appended to")
	flags.String("hash", defaultHash, "Content digest used to compare files (md5, sha256)")
	flags.String("log-level", defaultLogLevel, "Log level (debug, info, warn, error)")
	flags.String("lock-dir", defaultLockDir, "Folder holding the replica lock files")
	flags.Bool("once", false, "Run a single synchronization pass and exit")
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "Config file")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	// console only until the config tells us where the log file is
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: logTimeFormat,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))

	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red.Render("Error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}

func showHeader(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cyan.Bold(true).Render(version.ShortWithApp()))
	fmt.Fprintln(out, gray.Render(fmt.Sprintf("%s -> %s every %s", cfg.SourceDir, cfg.ReplicaDir, cfg.Interval())))
}
