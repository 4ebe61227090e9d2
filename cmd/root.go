// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd implements the modelpark-go command line.
//
// Most commands are thin pass-throughs: they build a command.Operation and hand
// it to the dispatcher, which runs the external modelpark executable. The
// token and call commands talk to deployed apps over HTTPS through the relay,
// and auth/config manage local state.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"modelpark/cli/internal/config"
	mperrors "modelpark/cli/internal/errors"
	"modelpark/cli/internal/logging"
)

var (
	verbose    bool
	configPath string

	// cfg and logger are set by loadRuntime before any command runs.
	cfg    = config.Default()
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "modelpark-go",
	Short: "Drive the ModelPark CLI and call deployed ModelPark apps",
	Long: `modelpark-go wraps the modelpark executable. Tunnel management commands
(init, run, serve, ls, stop, ...) are forwarded to it; run, serve and init are
started in the background and return immediately.

The token and call commands exchange your credentials for an app access token
and send requests to https://{app}.modelpark.app directly.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntime,
}

// Execute runs the root command and exits with a status derived from the error kind.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, logging.FormatFailure(err))
		os.Exit(mperrors.ExitCode(err))
	}
}

func loadRuntime(cmd *cobra.Command, _ []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger = logging.NewLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(logger)
	logger.Debug("config loaded", "binary_name", cfg.BinaryName, "binary_path", cfg.BinaryPath, "api", cfg.APIBaseURL)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default is the XDG config dir)")
}
