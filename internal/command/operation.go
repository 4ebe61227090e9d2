// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package command turns high-level intents into argument lists for the
// external modelpark executable.
//
// Each operation kind has its own parameter record. New validates the record,
// assembles the ordered argument list and fixes the execution mode, so an
// Operation is immutable once built and can be inspected without starting
// any process.
package command

import (
	"fmt"
	"strings"

	mperrors "modelpark/cli/internal/errors"
)

// Kind names an operation of the external CLI. The value is the subcommand.
type Kind string

const (
	Login    Kind = "login"
	Logout   Kind = "logout"
	Init     Kind = "init"
	Run      Kind = "run"
	Serve    Kind = "serve"
	Register Kind = "register"
	Ls       Kind = "ls"
	Logs     Kind = "logs"
	Stop     Kind = "stop"
	Kill     Kind = "kill"
	Status   Kind = "status"
	Version  Kind = "version"
)

// Kinds lists every operation kind.
var Kinds = []Kind{Login, Logout, Init, Run, Serve, Register, Ls, Logs, Stop, Kill, Status, Version}

// Mode says whether the caller waits for the external process.
type Mode int

const (
	// Blocking waits for exit, captures output and checks the exit code.
	Blocking Mode = iota
	// Background returns as soon as the process has started.
	Background
)

func (m Mode) String() string {
	switch m {
	case Blocking:
		return "blocking"
	case Background:
		return "background"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// modes classifies every kind. Long-lived server operations run in the background.
var modes = map[Kind]Mode{
	Login:    Blocking,
	Logout:   Blocking,
	Init:     Background,
	Run:      Background,
	Serve:    Background,
	Register: Blocking,
	Ls:       Blocking,
	Logs:     Blocking,
	Stop:     Blocking,
	Kill:     Blocking,
	Status:   Blocking,
	Version:  Blocking,
}

// ModeOf returns the execution mode of k.
func ModeOf(k Kind) (Mode, bool) {
	m, ok := modes[k]
	return m, ok
}

// Params is a parameter record for one operation kind.
type Params interface {
	Kind() Kind
	validate() error
	args() []arg
}

type arg struct {
	value  string
	secret bool
}

func plain(values ...string) []arg {
	out := make([]arg, 0, len(values))
	for _, v := range values {
		out = append(out, arg{value: v})
	}
	return out
}

// Operation is a validated, ready-to-dispatch invocation.
type Operation struct {
	kind   Kind
	mode   Mode
	stream bool
	args   []arg
}

// New validates p and builds the Operation for it.
func New(p Params) (Operation, error) {
	if p == nil {
		return Operation{}, mperrors.New(mperrors.InvalidOperation, "no operation given")
	}
	mode, ok := ModeOf(p.Kind())
	if !ok {
		return Operation{}, mperrors.New(mperrors.InvalidOperation, fmt.Sprintf("unknown operation %q", p.Kind()))
	}
	if err := p.validate(); err != nil {
		return Operation{}, mperrors.Wrap(mperrors.InvalidOperation, string(p.Kind()), err)
	}
	op := Operation{
		kind: p.Kind(),
		mode: mode,
		args: append([]arg{{value: string(p.Kind())}}, p.args()...),
	}
	if s, ok := p.(interface{ streams() bool }); ok {
		op.stream = s.streams()
	}
	return op, nil
}

// Kind returns the operation kind.
func (o Operation) Kind() Kind { return o.kind }

// Mode returns the execution mode fixed at construction.
func (o Operation) Mode() Mode { return o.mode }

// Stream reports whether stdout should be forwarded live instead of captured.
func (o Operation) Stream() bool { return o.stream }

// Args returns the ordered arguments that follow the executable.
func (o Operation) Args() []string {
	out := make([]string, len(o.args))
	for i, a := range o.args {
		out[i] = a.value
	}
	return out
}

// Redacted returns Args with secret values replaced by "***".
func (o Operation) Redacted() []string {
	out := make([]string, len(o.args))
	for i, a := range o.args {
		if a.secret {
			out[i] = "***"
			continue
		}
		out[i] = a.value
	}
	return out
}

// CommandLine joins the executable and the redacted arguments with spaces.
func (o Operation) CommandLine(executable string) string {
	return strings.Join(append([]string{executable}, o.Redacted()...), " ")
}

func (o Operation) String() string { return o.CommandLine("modelpark") }
