package main

import (
	"fmt"
	"os"

	"github.com/raykavin/volguard/internal/config"
	"github.com/raykavin/volguard/pkg/logger"
	logrusadapter "github.com/raykavin/volguard/pkg/logger/logrus"
	"github.com/raykavin/volguard/pkg/logger/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Global flags
var (
	configPath string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "volguard",
		Short:        "Volatility-adaptive trailing stops and regime analysis",
		Version:      "1.0.0",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default ./volguard.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level override (trace, debug, info, warn, error)")

	rootCmd.AddCommand(buildRegimeCmd())
	rootCmd.AddCommand(buildReplayCmd())

	return rootCmd
}

// setup loads the configuration and builds the console logger
func setup(cmd *cobra.Command) (*config.AppConfig, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

// newLogger builds the console logger for the configured backend
func newLogger(cmd *cobra.Command, cfg *config.AppConfig) (logger.Logger, error) {
	if cfg.LogBackend == "logrus" {
		l := logrus.New()
		l.SetOutput(cmd.ErrOrStderr())
		if cfg.LogJSON {
			l.SetFormatter(&logrus.JSONFormatter{})
		}

		log := logrusadapter.NewAdapter(l)
		log.SetLevel(logger.ParseLevel(cfg.LogLevel))
		return log, nil
	}

	return zerolog.New(zerolog.Config{
		Level:   cfg.LogLevel,
		Colored: true,
		JSON:    cfg.LogJSON,
		Out:     cmd.ErrOrStderr(),
	})
}
