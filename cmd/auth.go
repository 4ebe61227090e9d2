// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"modelpark/cli/internal/auth"
	"modelpark/cli/internal/backend"
	"modelpark/cli/internal/keychain"
	"modelpark/cli/internal/terminal"
)

// openAuth builds the credentials service over the OS keychain.
var openAuth = func() (*auth.Service, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return nil, err
	}
	statePath, err := auth.StatePath()
	if err != nil {
		return nil, err
	}
	return auth.NewService(km, statePath, logger), nil
}

var (
	saveEmail    string
	saveUsername string
	savePassword string
	saveToken    string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the credentials used by token and call",
}

var authSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store account credentials in the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := backend.Credentials{Email: saveEmail, Username: saveUsername, Password: savePassword, Token: saveToken}
		if c.Token == "" && c.Password == "" && (c.Email != "" || c.Username != "") {
			pw, err := terminal.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Account password: ")
			if err != nil {
				return err
			}
			c.Password = pw
		}
		if err := c.Validate(); err != nil {
			return err
		}
		svc, err := openAuth()
		if err != nil {
			return err
		}
		if err := svc.Save(c); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Credentials for %s saved to the keychain", c.Account())
		return nil
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openAuth()
		if err != nil {
			return err
		}
		if err := svc.Clear(); err != nil {
			return fmt.Errorf("clear credentials: %w", err)
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Println("Stored credentials removed")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which account is stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openAuth()
		if err != nil {
			return err
		}
		st, err := svc.Status()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !st.Saved {
			pterm.Info.WithWriter(out).Println("No credentials stored. Run 'modelpark-go auth save'.")
			return nil
		}
		pterm.Info.WithWriter(out).Printfln("Credentials for %s saved %s", st.Account, st.SavedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	authSaveCmd.Flags().StringVar(&saveEmail, "email", "", "Account email")
	authSaveCmd.Flags().StringVar(&saveUsername, "username", "", "Account username")
	authSaveCmd.Flags().StringVarP(&savePassword, "password", "p", "", "Account password (prompted when omitted)")
	authSaveCmd.Flags().StringVar(&saveToken, "token", "", "Account API token")
	authSaveCmd.MarkFlagsMutuallyExclusive("token", "email")
	authSaveCmd.MarkFlagsMutuallyExclusive("token", "username")
	authSaveCmd.MarkFlagsMutuallyExclusive("email", "username")
	authSaveCmd.MarkFlagsOneRequired("token", "email", "username")

	authCmd.AddCommand(authSaveCmd, authClearCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
