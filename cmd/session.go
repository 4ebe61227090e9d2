// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"

	"modelpark/cli/internal/command"
	"modelpark/cli/internal/terminal"
)

var (
	loginToken    string
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log the ModelPark CLI in with a token or an email",
	Long: `Forwards to 'modelpark login'. With --email and no --password the password
is read from standard input, without echo when it is a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := command.LoginParams{Token: loginToken, Email: loginEmail, Password: loginPassword}
		if p.Email != "" && p.Password == "" {
			pw, err := terminal.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
			p.Password = pw
		}
		return runOperation(cmd, p)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log the ModelPark CLI out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, command.LogoutParams{})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Log in with an API token")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Log in with an email address")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when omitted)")
	loginCmd.MarkFlagsMutuallyExclusive("token", "email")
	loginCmd.MarkFlagsMutuallyExclusive("token", "password")

	rootCmd.AddCommand(loginCmd, logoutCmd)
}
