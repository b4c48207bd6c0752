package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/datasync/internal/app"
	"github.com/sevigo/datasync/internal/config"
	"github.com/sevigo/datasync/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "datasync",
	Short: "datasync pushes crawler-produced JSON files to the ingestion endpoint.",
	Long: `A batch sync client for crawler output: it diffs the data directory
between the last synced commit and the current head, partitions the changed
JSON files into bounded batches, and delivers them to the remote ingestion
endpoint with idempotent, resumable semantics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("repo", "", "path to the local repository (default \".\")")
	rootCmd.PersistentFlags().Int("batch-size", 0, "maximum number of files per batch (default 200)")
	rootCmd.PersistentFlags().Bool("fail-fast", false, "halt the run on the first failed batch")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	for flag, key := range map[string]string{
		"repo":       "REPO_PATH",
		"batch-size": "MAX_BATCH_SIZE",
		"fail-fast":  "FAIL_FAST",
		"log-level":  "LOG_LEVEL",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			slog.Error("Error binding flag", "flag", flag, "error", err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(syncCmd, resyncCmd, statsCmd, statusCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// newApp loads the configuration, installs the logger and wires the
// application. Callers must invoke the returned cleanup function.
func newApp() (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)
	slog.SetDefault(log)

	return app.NewApp(cfg, log)
}
