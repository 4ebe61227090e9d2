// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"modelpark/cli/internal/command"
	"modelpark/cli/internal/dispatch"
)

// dispatchOptions are applied after the defaults when a dispatcher is built.
var dispatchOptions []dispatch.Option

func newDispatcher(cmd *cobra.Command) *dispatch.Dispatcher {
	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithStdin(cmd.InOrStdin()),
		dispatch.WithStream(cmd.OutOrStdout()),
	}
	return dispatch.New(cfg, append(opts, dispatchOptions...)...)
}

// runOperation dispatches p and prints what the external CLI produced.
func runOperation(cmd *cobra.Command, p command.Params) error {
	res, err := newDispatcher(cmd).Do(cmd.Context(), p)
	if err != nil {
		return err
	}
	printResult(cmd, res)
	return nil
}

func printResult(cmd *cobra.Command, res dispatch.Result) {
	if res.Mode == command.Background {
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("%s started in the background (pid %d)", res.Kind, res.PID)
		return
	}
	if res.Stdout != "" {
		fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
	}
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
}
