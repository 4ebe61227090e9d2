// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"modelpark/cli/internal/backend"
	mperrors "modelpark/cli/internal/errors"
	"modelpark/cli/internal/relay"
	"modelpark/cli/internal/terminal"
)

// relayOptions are applied after the defaults when a relay is built.
var relayOptions []relay.Option

// credentialFlags select the account used for the token exchange. When none
// is set the credentials saved with 'auth save' are used.
type credentialFlags struct {
	email     string
	username  string
	password  string
	authToken string
}

func (f *credentialFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.email, "email", "", "Account email (default: saved credentials)")
	fs.StringVar(&f.username, "username", "", "Account username (default: saved credentials)")
	fs.StringVar(&f.password, "account-password", "", "Account password (prompted when omitted)")
	fs.StringVar(&f.authToken, "auth-token", "", "Account API token (default: saved credentials)")
}

// resolve returns the credentials to log in with.
func (f *credentialFlags) resolve(cmd *cobra.Command) (backend.Credentials, error) {
	c := backend.Credentials{Email: f.email, Username: f.username, Password: f.password, Token: f.authToken}
	if (c.Email != "" || c.Username != "") && c.Password == "" {
		pw, err := terminal.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Account password: ")
		if err != nil {
			return c, err
		}
		c.Password = pw
	}
	svc, err := openAuth()
	if err != nil {
		if c.Email != "" || c.Username != "" || c.Token != "" {
			return c, c.Validate()
		}
		return c, err
	}
	return svc.Resolve(c)
}

func newRelay() *relay.Relay {
	opts := append([]relay.Option{relay.WithLogger(logger)}, relayOptions...)
	return relay.New(cfg, opts...)
}

var (
	tokenCreds    credentialFlags
	tokenPassword string
	tokenExpire   string
)

var tokenCmd = &cobra.Command{
	Use:   "token APP",
	Short: "Print an access token for a deployed app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := tokenCreds.resolve(cmd)
		if err != nil {
			return err
		}
		stop := terminal.StartSpinner("Requesting access token")
		token, err := newRelay().AccessToken(cmd.Context(), args[0], creds, backend.AccessOptions{
			Password: tokenPassword,
			Expire:   tokenExpire,
		})
		stop()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var (
	callCreds       credentialFlags
	callQuery       []string
	callFiles       []string
	callAudio       string
	callAccessToken string
	callPassword    string
	callExpire      string
)

var callCmd = &cobra.Command{
	Use:   "call APP [PATH]",
	Short: "Send a request to a deployed app",
	Long: `Sends a request to https://APP.modelpark.app[/PATH] with an app access token.

Without files the request is a GET and -q pairs become query parameters. With
-F (or --audio) the request is a multipart POST and -q pairs become form fields.
-F wins over --audio when both are given. A JSON response is printed indented;
any other response body is printed as is.`,
	Example: `  modelpark-go call demo predict -q text=hello
  modelpark-go call whisper transcribe --audio clip.wav
  modelpark-go call demo upload -F file=data.csv -q sep=,`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest(args)
		if err != nil {
			return err
		}

		r := newRelay()
		var res relay.Result
		if callAccessToken != "" {
			stop := terminal.StartSpinner("Calling " + args[0])
			res, err = r.CallWithAccessToken(cmd.Context(), args[0], callAccessToken, req)
			stop()
		} else {
			var creds backend.Credentials
			if creds, err = callCreds.resolve(cmd); err != nil {
				return err
			}
			stop := terminal.StartSpinner("Calling " + args[0])
			res, err = r.Call(cmd.Context(), args[0], creds, req)
			stop()
		}
		if err != nil {
			return err
		}

		if !res.IsJSON() {
			pterm.Warning.WithWriter(cmd.ErrOrStderr()).Printfln("%s answered with status %d", args[0], res.StatusCode)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.String())
		return nil
	},
}

func buildRequest(args []string) (relay.Request, error) {
	req := relay.Request{
		AudioPath: callAudio,
		Access:    backend.AccessOptions{Password: callPassword, Expire: callExpire},
	}
	if len(args) == 2 {
		req.Extension = args[1]
	}
	payload, err := parsePairs(callQuery)
	if err != nil {
		return req, err
	}
	req.Payload = payload

	for _, kv := range callFiles {
		field, path, ok := strings.Cut(kv, "=")
		if !ok || field == "" || path == "" {
			return req, mperrors.New(mperrors.InvalidOperation, fmt.Sprintf("expected field=path, got %q", kv))
		}
		req.Files = append(req.Files, relay.File{Field: field, Path: path})
	}
	return req, nil
}

// parsePairs turns k=v strings into url.Values, keeping repeated keys.
func parsePairs(pairs []string) (url.Values, error) {
	out := url.Values{}
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, mperrors.New(mperrors.InvalidOperation, fmt.Sprintf("expected key=value, got %q", kv))
		}
		out.Add(k, v)
	}
	return out, nil
}

func init() {
	tokenCreds.register(tokenCmd.Flags())
	tokenCmd.Flags().StringVar(&tokenPassword, "password", "", "App password for protected public apps")
	tokenCmd.Flags().StringVar(&tokenExpire, "expire", "", "Token lifetime passed as expiresIn")

	callCreds.register(callCmd.Flags())
	callCmd.Flags().StringArrayVarP(&callQuery, "query", "q", nil, "Payload pair key=value (repeatable)")
	callCmd.Flags().StringArrayVarP(&callFiles, "file", "F", nil, "Upload file as field=path (repeatable)")
	callCmd.Flags().StringVar(&callAudio, "audio", "", "Upload an audio file as the field \"audio\"")
	callCmd.Flags().StringVar(&callAccessToken, "access-token", "", "Use this access token and skip the exchange")
	callCmd.Flags().StringVar(&callPassword, "password", "", "App password for protected public apps")
	callCmd.Flags().StringVar(&callExpire, "expire", "", "Token lifetime passed as expiresIn")
	callCmd.MarkFlagsMutuallyExclusive("access-token", "email")
	callCmd.MarkFlagsMutuallyExclusive("access-token", "username")
	callCmd.MarkFlagsMutuallyExclusive("access-token", "auth-token")

	rootCmd.AddCommand(tokenCmd, callCmd)
}
