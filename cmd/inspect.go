// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"

	"modelpark/cli/internal/command"
)

var (
	logsFollow bool
	stopAll    bool
	killAll    bool
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered apps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, command.LsParams{})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of running tunnels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, command.StatusParams{})
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs NAME",
	Short: "Print the logs of an app; -f keeps streaming",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, command.LogsParams{Name: args[0], Follow: logsFollow})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop [NAME | --all]",
	Short: "Stop a tunnel, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, command.StopParams{Name: firstArg(args), All: stopAll})
	},
}

var killCmd = &cobra.Command{
	Use:   "kill [NAME | --all]",
	Short: "Kill a process started by run, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, command.KillParams{Name: firstArg(args), All: killAll})
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Stream new log lines until interrupted")
	stopCmd.Flags().BoolVarP(&stopAll, "all", "a", false, "Stop every tunnel")
	killCmd.Flags().BoolVarP(&killAll, "all", "a", false, "Kill every process")

	rootCmd.AddCommand(lsCmd, statusCmd, logsCmd, stopCmd, killCmd)
}
