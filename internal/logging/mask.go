// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It includes functions for masking sensitive information in log messages and
// formatting errors for user-friendly display while protecting credentials and secrets.
//
// The package helps ensure that auth tokens, access tokens and app passwords
// are not accidentally exposed in logs or error messages shown to users.
package logging

import "regexp"

var (
	rePassword    = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken       = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reAccessToken = regexp.MustCompile(`(?i)(x-access-token:\s*)(\S+)`)
	reJSONSecret  = regexp.MustCompile(`(?i)("(?:authToken|accessToken|token|password)"\s*:\s*")([^"]*)(")`)
)

// Mask replaces sensitive values in the input string with "*".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAccessToken.ReplaceAllString(out, "$1***")
	out = reJSONSecret.ReplaceAllString(out, "$1***$3")
	return out
}
