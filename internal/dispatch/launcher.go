// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dispatch

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

//go:generate mockgen -source=launcher.go -destination=mocks/mock_launcher.go -package=mocks

// Stdio carries the standard streams for a blocking launch.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Launcher starts external processes.
//
// A returned error means the process could not be started or that ctx ended
// while it ran. A process that exited non-zero on its own is reported through
// the exit code only.
type Launcher interface {
	// Start launches path without waiting and returns its process ID.
	Start(ctx context.Context, path string, args []string) (int, error)
	// Run launches path, waits for it to exit and returns its exit code.
	Run(ctx context.Context, path string, args []string, stdio Stdio) (int, error)
}

// ExecLauncher implements Launcher with os/exec. No shell is involved, so
// arguments reach the executable exactly as built.
type ExecLauncher struct{}

// Start leaves the child's standard streams on the null device and reaps it in
// the background; failures after start are not observed.
func (ExecLauncher) Start(_ context.Context, path string, args []string) (int, error) {
	// Not bound to ctx: background processes outlive the call.
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// Run holds the whole output in the provided writers; unbounded output from
// the child is buffered by the caller.
func (ExecLauncher) Run(ctx context.Context, path string, args []string, stdio Stdio) (int, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		// The child was killed by CommandContext; its -1 is not an exit code.
		return -1, ctxErr
	}
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}
