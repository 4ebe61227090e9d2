// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package locator resolves the path of the external modelpark executable.
//
// Resolution is ordered and the first match wins: an explicitly configured
// path, the process search path, then a fixed list of conventional install
// locations for the current OS. A candidate is accepted only when it exists
// and, outside Windows, is executable.
package locator

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	mperrors "modelpark/cli/internal/errors"
)

// Locator finds the executable. The function fields default to the real OS
// and exist so resolution can be exercised against a fake filesystem.
type Locator struct {
	// Name is the executable name without extension.
	Name string
	// Path, when set, is the only candidate considered.
	Path string

	GOOS     string
	LookPath func(file string) (string, error)
	Stat     func(name string) (fs.FileInfo, error)
	HomeDir  func() (string, error)
	Getenv   func(key string) string
}

// New returns a Locator bound to the real operating system.
func New(name, path string) *Locator {
	return &Locator{
		Name:     name,
		Path:     path,
		GOOS:     runtime.GOOS,
		LookPath: exec.LookPath,
		Stat:     os.Stat,
		HomeDir:  os.UserHomeDir,
		Getenv:   os.Getenv,
	}
}

// Resolve returns the first acceptable candidate or an ExecutableNotFound error.
func (l *Locator) Resolve() (string, error) {
	if l.Path != "" {
		if l.accept(l.Path) {
			return l.Path, nil
		}
		return "", mperrors.New(mperrors.ExecutableNotFound,
			fmt.Sprintf("configured executable %s does not exist or is not executable", l.Path))
	}

	if l.LookPath != nil {
		if p, err := l.LookPath(l.fileName()); err == nil && p != "" {
			return p, nil
		}
	}
	for _, c := range l.Candidates() {
		if l.accept(c) {
			return c, nil
		}
	}
	return "", mperrors.New(mperrors.ExecutableNotFound,
		fmt.Sprintf("%s CLI not installed: not on PATH and not in %s", l.Name, strings.Join(l.Candidates(), ", ")))
}

func (l *Locator) fileName() string {
	if l.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(l.Name), ".exe") {
		return l.Name + ".exe"
	}
	return l.Name
}

// Candidates lists the conventional install locations in search order.
func (l *Locator) Candidates() []string {
	file := l.fileName()
	home := ""
	if l.HomeDir != nil {
		if h, err := l.HomeDir(); err == nil {
			home = h
		}
	}
	getenv := l.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	var out []string
	add := func(parts ...string) {
		for _, p := range parts {
			if p == "" {
				return
			}
		}
		out = append(out, filepath.Join(parts...))
	}

	if l.GOOS == "windows" {
		add(getenv("ProgramFiles"), "ModelPark", file)
		add(getenv("ProgramFiles(x86)"), "ModelPark", file)
		add(getenv("APPDATA"), "ModelPark", file)
		add(home, file)
		add(home, "ModelPark", file)
		return out
	}
	add(home, file)
	add("/usr/local/bin", file)
	add(home, ".local", "bin", file)
	return out
}

func (l *Locator) accept(path string) bool {
	stat := l.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if l.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
