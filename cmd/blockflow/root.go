package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/blockflow"
	"github.com/aretw0/blockflow/internal/cli"
	"github.com/aretw0/blockflow/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blockflow",
	Short: "blockflow validates and serves block-based workflows",
	Long: `blockflow checks workflows built from Start, Form, Conditional, API and End blocks.
It finds complete start-to-end paths, decides which blocks may be deleted,
resolves the form fields an API block can send, and gates saves on all of it.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the blockflow config file (yaml or json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides the config file)")
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	if !cmd.Flags().Changed("config") {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// setup loads the config and builds an engine from it. The returned close
// function must be called once the command is done.
func setup(ctx context.Context, cmd *cobra.Command, extra ...blockflow.Option) (*blockflow.Engine, config.Config, cli.CloseFunc, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	engine, closeFn, err := cli.CreateEngine(ctx, cfg, logger, extra...)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	return engine, cfg, closeFn, nil
}

func exitOnError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}
