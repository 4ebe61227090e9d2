// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"modelpark/cli/internal/command"
)

// Version is set at build time with -ldflags "-X modelpark/cli/cmd.Version=...".
var Version = "0.0.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wrapper version and the ModelPark CLI version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "modelpark-go %s\n", Version)
		return runOperation(cmd, command.VersionParams{})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
