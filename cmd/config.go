// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"modelpark/cli/internal/config"
	"modelpark/cli/internal/locator"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration and the resolved executable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout := "none"
		if t := cfg.Timeout(); t > 0 {
			timeout = t.String()
		}
		resolved, err := locator.New(cfg.BinaryName, cfg.BinaryPath).Resolve()
		if err != nil {
			resolved = "not found"
		}
		data := pterm.TableData{
			{"Setting", "Value"},
			{"binary_name", cfg.BinaryName},
			{"binary_path", orDash(cfg.BinaryPath)},
			{"resolved executable", resolved},
			{"api_base_url", cfg.APIBaseURL},
			{"app_domain", cfg.AppDomain},
			{"app_scheme", cfg.AppScheme},
			{"http_timeout", timeout},
			{"log_level", cfg.LogLevel},
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := configPath
		if p == "" {
			var err error
			if p, err = config.Path(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
