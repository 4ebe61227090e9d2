// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure surfaced by the dispatcher or the relay carries a Kind so the
// command layer can pick an exit status and a hint without parsing messages.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ExecutableNotFound indicates the external CLI could not be located.
	ExecutableNotFound Kind = "executable_not_found"
	// ProcessLaunchFailure indicates the external CLI was found but could not be started.
	ProcessLaunchFailure Kind = "process_launch_failure"
	// NonZeroExit indicates a blocking operation finished with a non-zero exit code.
	NonZeroExit Kind = "non_zero_exit"
	// AuthTokenFetchFailure indicates the credentials to authToken exchange failed.
	AuthTokenFetchFailure Kind = "auth_token_fetch_failure"
	// AccessTokenFetchFailure indicates the authToken to accessToken exchange failed.
	AccessTokenFetchFailure Kind = "access_token_fetch_failure"
	// RelayHTTPFailure indicates the relayed request could not be completed or decoded.
	RelayHTTPFailure Kind = "relay_http_failure"
	// InvalidOperation indicates the caller supplied an invalid parameter set.
	InvalidOperation Kind = "invalid_operation"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error

	// ExitCode is the child's exit status for NonZeroExit errors.
	ExitCode int
	// Stderr holds the child's error stream for NonZeroExit errors.
	Stderr string
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Exit builds a NonZeroExit error for a finished child process.
func Exit(code int, stderr string) *E {
	return &E{
		Kind:     NonZeroExit,
		Message:  fmt.Sprintf("external command exited with status %d", code),
		ExitCode: code,
		Stderr:   stderr,
	}
}

// KindOf returns the Kind of the first *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to the status the CLI process terminates with.
// A NonZeroExit carries the child's own status, so 126 or 127 from the child
// are passed through unchanged. Cancellation maps to 130, as for SIGINT.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if stderrors.Is(err, context.Canceled) {
		return 130
	}
	var e *E
	if !stderrors.As(err, &e) {
		return 1
	}
	switch e.Kind {
	case ExecutableNotFound:
		return 127
	case ProcessLaunchFailure:
		return 126
	case InvalidOperation:
		return 2
	case NonZeroExit:
		if e.ExitCode > 0 {
			return e.ExitCode
		}
		return 1
	default:
		return 1
	}
}
