// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pterm/pterm"

	mperrors "modelpark/cli/internal/errors"
	"modelpark/cli/internal/httperrors"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatFailure renders a failure with a title, a hint chosen by error kind,
// and the masked technical details.
func FormatFailure(err error) string {
	var b strings.Builder

	kind := mperrors.KindOf(err)
	if network := explainNetwork(kind, err); network != "" {
		b.WriteString(network)
		writeDetails(&b, err)
		return b.String()
	}

	switch kind {
	case mperrors.ExecutableNotFound:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("ModelPark CLI not installed"))
		b.WriteString("\n\n")
		b.WriteString("The modelpark executable was not found on PATH or in the usual install locations.\n")
		b.WriteString("To fix this:\n")
		b.WriteString("  • Install the CLI from https://modelpark.app\n")
		b.WriteString("  • Or point binary_path in the config (or MODELPARK_BIN) at the executable\n")
	case mperrors.ProcessLaunchFailure:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Could not start the ModelPark CLI"))
		b.WriteString("\n\n")
		b.WriteString("The executable was found but the operating system refused to run it.\n")
		b.WriteString("  • Check that the file is executable (chmod +x)\n")
	case mperrors.NonZeroExit:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("ModelPark CLI reported an error"))
		b.WriteString("\n")
		var e *mperrors.E
		if stderrors.As(err, &e) && strings.TrimSpace(e.Stderr) != "" {
			b.WriteString("\n")
			b.WriteString(Mask(strings.TrimSpace(e.Stderr)))
			b.WriteString("\n")
		}
	case mperrors.AuthTokenFetchFailure:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Authentication failed"))
		b.WriteString("\n\n")
		b.WriteString("  • Check the email/password or token you supplied\n")
		b.WriteString("  • Run 'modelpark-go auth save' to store working credentials\n")
	case mperrors.AccessTokenFetchFailure:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Could not obtain an app access token"))
		b.WriteString("\n\n")
		b.WriteString("  • Check the app name and that your account can access it\n")
		b.WriteString("  • Public apps protected by a password need --password\n")
	case mperrors.InvalidOperation:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Invalid arguments"))
		b.WriteString("\n")
	default:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Request failed"))
		b.WriteString("\n")
	}

	writeDetails(&b, err)
	return b.String()
}

func writeDetails(b *strings.Builder, err error) {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(msg)))
	}
}

// explainNetwork handles transport failures of the HTTP-backed kinds.
func explainNetwork(kind mperrors.Kind, err error) string {
	var action string
	switch kind {
	case mperrors.AuthTokenFetchFailure:
		action = "logging in"
	case mperrors.AccessTokenFetchFailure:
		action = "requesting an access token"
	case mperrors.RelayHTTPFailure:
		action = "calling the app"
	default:
		return ""
	}
	host := "server"
	var ue *url.Error
	if stderrors.As(err, &ue) {
		host = httperrors.HostOf(ue.URL)
	}
	return httperrors.Explain(err, action, host)
}
