// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dispatch runs command.Operations against the external modelpark
// executable.
//
// The executable is resolved on every call; when it cannot be found nothing is
// launched. Background operations return once the process has started and
// expose only its PID. Blocking operations wait, capture stdout and stderr,
// and turn a non-zero exit code into a NonZeroExit error.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"modelpark/cli/internal/command"
	"modelpark/cli/internal/config"
	mperrors "modelpark/cli/internal/errors"
	"modelpark/cli/internal/locator"
	"modelpark/cli/internal/logging"
)

// Resolver locates the executable.
type Resolver interface {
	Resolve() (string, error)
}

// Result describes a finished dispatch.
type Result struct {
	// ID correlates log lines of one dispatch.
	ID   string
	Kind command.Kind
	Mode command.Mode
	// Path is the resolved executable.
	Path string
	// PID is set for background operations.
	PID int
	// ExitCode, Stdout and Stderr are set for blocking operations. Stdout is
	// empty when the operation streamed its output.
	ExitCode int
	Stdout   string
	Stderr   string
}

// Dispatcher resolves, launches and classifies external invocations.
// It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	resolver Resolver
	launcher Launcher
	logger   *slog.Logger
	stdin    io.Reader
	stream   io.Writer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithResolver replaces the executable resolver.
func WithResolver(r Resolver) Option { return func(d *Dispatcher) { d.resolver = r } }

// WithLauncher replaces the process launcher.
func WithLauncher(l Launcher) Option { return func(d *Dispatcher) { d.launcher = l } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// WithStdin connects r to the standard input of blocking operations.
func WithStdin(r io.Reader) Option { return func(d *Dispatcher) { d.stdin = r } }

// WithStream sets where streaming operations (logs -f) write stdout.
func WithStream(w io.Writer) Option { return func(d *Dispatcher) { d.stream = w } }

// New builds a Dispatcher from cfg. Production wiring uses the OS locator and
// ExecLauncher; options override either.
func New(cfg config.Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: locator.New(cfg.BinaryName, cfg.BinaryPath),
		launcher: ExecLauncher{},
		logger:   logging.Discard(),
		stream:   io.Discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Do builds the operation for p and dispatches it.
func (d *Dispatcher) Do(ctx context.Context, p command.Params) (Result, error) {
	op, err := command.New(p)
	if err != nil {
		return Result{}, err
	}
	return d.Dispatch(ctx, op)
}

// Dispatch resolves the executable and runs op according to its mode.
func (d *Dispatcher) Dispatch(ctx context.Context, op command.Operation) (Result, error) {
	res := Result{
		ID:   uuid.NewString(),
		Kind: op.Kind(),
		Mode: op.Mode(),
	}
	log := d.logger.With("dispatch_id", res.ID, "operation", string(op.Kind()), "mode", op.Mode().String())

	path, err := d.resolver.Resolve()
	if err != nil {
		log.Warn("executable not resolved", "error", logging.Mask(err.Error()))
		return res, err
	}
	res.Path = path
	log.Debug("dispatching", "command", op.CommandLine(path))

	if op.Mode() == command.Background {
		pid, err := d.launcher.Start(ctx, path, op.Args())
		if err != nil {
			log.Warn("launch failed", "error", err)
			return res, mperrors.Wrap(mperrors.ProcessLaunchFailure, fmt.Sprintf("start %s", op.Kind()), err)
		}
		res.PID = pid
		log.Debug("started in background", "pid", pid)
		return res, nil
	}

	var stdout, stderr bytes.Buffer
	stdio := Stdio{Stdin: d.stdin, Stdout: &stdout, Stderr: &stderr}
	if op.Stream() {
		stdio.Stdout = d.stream
	}
	code, err := d.launcher.Run(ctx, path, op.Args(), stdio)
	res.ExitCode = code
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Debug("interrupted", "error", err)
			return res, fmt.Errorf("%s interrupted: %w", op.Kind(), err)
		}
		log.Warn("launch failed", "error", err)
		return res, mperrors.Wrap(mperrors.ProcessLaunchFailure, fmt.Sprintf("run %s", op.Kind()), err)
	}
	if code != 0 {
		log.Warn("external command failed", "exit_code", code)
		return res, fmt.Errorf("%s: %w", op.Kind(), mperrors.Exit(code, res.Stderr))
	}
	log.Debug("completed", "stdout_bytes", stdout.Len(), "stderr_bytes", stderr.Len())
	return res, nil
}
