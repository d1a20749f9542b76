package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"remindbot/config"
	"remindbot/remindme"
	"remindbot/state"
)

var (
	// Global flags
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "remindbot",
	Short: "Set reminders with plain text like \"tomorrow noon lunch\"",
	Long: `remindbot turns short reminder specifications into due times.

A specification is a time part followed by a message:
  noon lunch                    part of day
  tomorrow 15:30 "call bank"    tomorrow, time, quoted message
  2024-12-24 18:00 presents     timestamp
  2 days 3 hours buy milk       duration

Reminders are kept in a SQLite database and delivered by "remindbot serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logger.Level = "debug"
		}

		// The TUI owns the terminal
		if cmd.Name() == "tui" {
			logger = zap.NewNop()
			return nil
		}

		logger, err = newLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: remindbot.yaml in ./config, . or ~/.remindbot)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(parseCmd, addCmd, listCmd, rmCmd, subscribeCmd, ackCmd, serveCmd, tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(lc config.LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if lc.Encoding == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func newParser() *remindme.Parser {
	if cfg.Parser.RequireMessage {
		return remindme.New(remindme.RequireMessage())
	}
	return remindme.New()
}

func openStore() (*state.Store, error) {
	store, err := state.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reminder database: %w", err)
	}
	logger.Debug("reminder database opened", zap.String("path", store.Path()))
	return store, nil
}
