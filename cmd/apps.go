// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"

	"modelpark/cli/internal/command"
	mperrors "modelpark/cli/internal/errors"
)

var (
	initPort   int
	initDetach bool

	runPort      int
	runAccess    string
	runFramework string

	servePort      int
	serveAccess    string
	serveFramework string

	registerPort      int
	registerName      string
	registerAccess    string
	registerFramework string
	registerPassword  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start the local ModelPark agent in the background",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, command.InitParams{Port: initPort, NoDetach: !initDetach})
	},
}

var runCmd = &cobra.Command{
	Use:   "run NAME [flags] -- COMMAND [ARGS...]",
	Short: "Run a command and expose it under NAME",
	Long: `Starts COMMAND through the ModelPark CLI and tunnels it as NAME. Everything
after -- is passed to the command unchanged. The process runs in the background.`,
	Example: `  modelpark-go run demo --port 8501 -- streamlit run app.py`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, rest, err := splitRunArgs(args, cmd.ArgsLenAtDash())
		if err != nil {
			return err
		}
		return runOperation(cmd, command.RunParams{
			Name:      name,
			Port:      runPort,
			Access:    runAccess,
			Framework: runFramework,
			Command:   rest,
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve NAME --port PORT",
	Short: "Expose a process already listening on PORT under NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, command.ServeParams{
			Name:      args[0],
			Port:      servePort,
			Access:    serveAccess,
			Framework: serveFramework,
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register --port PORT --name NAME [FILE]",
	Short: "Register an app with the legacy flag set",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := command.RegisterParams{
			Port:      registerPort,
			Name:      registerName,
			Access:    registerAccess,
			Framework: registerFramework,
			Password:  registerPassword,
		}
		if len(args) == 1 {
			p.FilePath = args[0]
		}
		return runOperation(cmd, p)
	},
}

// splitRunArgs separates NAME from the command given after "--".
// dash is cobra's ArgsLenAtDash: -1 when no "--" was given.
func splitRunArgs(args []string, dash int) (string, []string, error) {
	before, after := args, []string(nil)
	if dash >= 0 {
		before, after = args[:dash], args[dash:]
	}
	if len(before) != 1 {
		return "", nil, mperrors.New(mperrors.InvalidOperation, "run takes exactly one NAME before --")
	}
	return before[0], after, nil
}

func init() {
	initCmd.Flags().IntVarP(&initPort, "port", "p", 0, "Agent port")
	initCmd.Flags().BoolVarP(&initDetach, "detach", "d", true, "Detach the agent (use --detach=false to keep it attached)")

	runCmd.Flags().IntVar(&runPort, "port", 0, "Port the command listens on")
	runCmd.Flags().StringVar(&runAccess, "access", "", "Access level (public or private)")
	runCmd.Flags().StringVar(&runFramework, "framework", "", "Framework hint (streamlit, gradio, ...)")

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port the process listens on")
	serveCmd.Flags().StringVar(&serveAccess, "access", "", "Access level (public or private)")
	serveCmd.Flags().StringVar(&serveFramework, "framework", "", "Framework hint")
	_ = serveCmd.MarkFlagRequired("port")

	registerCmd.Flags().IntVarP(&registerPort, "port", "p", 0, "Port the app listens on")
	registerCmd.Flags().StringVarP(&registerName, "name", "n", "", "App name")
	registerCmd.Flags().StringVarP(&registerAccess, "access", "a", command.DefaultAccess, "Access level (public or private)")
	registerCmd.Flags().StringVarP(&registerFramework, "framework", "f", "", "Framework hint")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password for public apps")
	_ = registerCmd.MarkFlagRequired("port")
	_ = registerCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(initCmd, runCmd, serveCmd, registerCmd)
}
