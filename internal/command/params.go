// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultAccess is the access level register uses when none is given.
const DefaultAccess = "private"

// LoginParams authenticates the external CLI with a token or an email.
type LoginParams struct {
	Token    string
	Email    string
	Password string
}

func (LoginParams) Kind() Kind { return Login }

func (p LoginParams) validate() error {
	if p.Token != "" && p.Email != "" {
		return errors.New("token and email are mutually exclusive")
	}
	return nil
}

func (p LoginParams) args() []arg {
	var out []arg
	if p.Token != "" {
		out = append(out, arg{value: "--token"}, arg{value: p.Token, secret: true})
	}
	if p.Email != "" {
		out = append(out, plain("--email", p.Email)...)
	}
	if p.Password != "" {
		out = append(out, arg{value: "-p"}, arg{value: p.Password, secret: true})
	}
	return out
}

// LogoutParams has no fields.
type LogoutParams struct{}

func (LogoutParams) Kind() Kind      { return Logout }
func (LogoutParams) validate() error { return nil }
func (LogoutParams) args() []arg     { return nil }

// InitParams starts the local agent. Detach is on unless NoDetach is set.
type InitParams struct {
	Port     int
	NoDetach bool
}

func (InitParams) Kind() Kind { return Init }

func (p InitParams) validate() error { return optionalPort(p.Port) }

func (p InitParams) args() []arg {
	var out []arg
	if p.Port != 0 {
		out = append(out, plain("-p", strconv.Itoa(p.Port))...)
	}
	if p.NoDetach {
		out = append(out, plain("-d", "false")...)
	}
	return out
}

// RunParams starts Command under a tunnel named Name.
type RunParams struct {
	Name      string
	Port      int
	Access    string
	Framework string
	Command   []string
}

func (RunParams) Kind() Kind { return Run }

func (p RunParams) validate() error {
	if err := requireName(p.Name); err != nil {
		return err
	}
	return optionalPort(p.Port)
}

func (p RunParams) args() []arg {
	out := plain("--name", p.Name)
	if p.Port != 0 {
		out = append(out, plain("--port", strconv.Itoa(p.Port))...)
	}
	if p.Access != "" {
		out = append(out, plain("--access", p.Access)...)
	}
	if p.Framework != "" {
		out = append(out, plain("--framework", p.Framework)...)
	}
	if len(p.Command) > 0 {
		out = append(out, arg{value: "--"})
		out = append(out, plain(p.Command...)...)
	}
	return out
}

// ServeParams tunnels an already running local process listening on Port.
type ServeParams struct {
	Name      string
	Port      int
	Access    string
	Framework string
}

func (ServeParams) Kind() Kind { return Serve }

func (p ServeParams) validate() error {
	if err := requireName(p.Name); err != nil {
		return err
	}
	return requirePort(p.Port)
}

func (p ServeParams) args() []arg {
	out := plain("--name", p.Name, "--port", strconv.Itoa(p.Port))
	if p.Access != "" {
		out = append(out, plain("--access", p.Access)...)
	}
	if p.Framework != "" {
		out = append(out, plain("--framework", p.Framework)...)
	}
	return out
}

// RegisterParams is the legacy registration path kept for older CLI builds.
type RegisterParams struct {
	Port      int
	Name      string
	Access    string
	Framework string
	FilePath  string
	Password  string
}

func (RegisterParams) Kind() Kind { return Register }

func (p RegisterParams) validate() error {
	if err := requirePort(p.Port); err != nil {
		return err
	}
	return requireName(p.Name)
}

func (p RegisterParams) access() string {
	if p.Access == "" {
		return DefaultAccess
	}
	return p.Access
}

func (p RegisterParams) args() []arg {
	out := plain("-p", strconv.Itoa(p.Port), "-n", p.Name, "-a", p.access())
	if p.Framework != "" {
		out = append(out, plain("-f", p.Framework)...)
	}
	if p.FilePath != "" {
		out = append(out, arg{value: p.FilePath})
	}
	if p.access() == "public" && p.Password != "" {
		out = append(out, arg{value: "-password"}, arg{value: p.Password, secret: true})
	}
	return out
}

// LsParams has no fields.
type LsParams struct{}

func (LsParams) Kind() Kind      { return Ls }
func (LsParams) validate() error { return nil }
func (LsParams) args() []arg     { return nil }

// StatusParams has no fields.
type StatusParams struct{}

func (StatusParams) Kind() Kind      { return Status }
func (StatusParams) validate() error { return nil }
func (StatusParams) args() []arg     { return nil }

// VersionParams has no fields.
type VersionParams struct{}

func (VersionParams) Kind() Kind      { return Version }
func (VersionParams) validate() error { return nil }
func (VersionParams) args() []arg     { return nil }

// LogsParams prints the logs of the app Name; Follow keeps streaming.
type LogsParams struct {
	Name   string
	Follow bool
}

func (LogsParams) Kind() Kind { return Logs }

func (p LogsParams) validate() error { return requireName(p.Name) }

func (p LogsParams) streams() bool { return p.Follow }

func (p LogsParams) args() []arg {
	out := plain("--name", p.Name)
	if p.Follow {
		out = append(out, arg{value: "-f"})
	}
	return out
}

// StopParams stops the tunnel Name, or every tunnel when All is set.
type StopParams struct {
	Name string
	All  bool
}

func (StopParams) Kind() Kind        { return Stop }
func (p StopParams) validate() error { return nameOrAll(p.Name, p.All) }
func (p StopParams) args() []arg     { return targetArgs(p.Name, p.All) }

// KillParams kills the process Name, or every process when All is set.
type KillParams struct {
	Name string
	All  bool
}

func (KillParams) Kind() Kind        { return Kill }
func (p KillParams) validate() error { return nameOrAll(p.Name, p.All) }
func (p KillParams) args() []arg     { return targetArgs(p.Name, p.All) }

func targetArgs(name string, all bool) []arg {
	switch {
	case all:
		return plain("-a")
	case name != "":
		return plain("-n", name)
	default:
		return nil
	}
}

func nameOrAll(name string, all bool) error {
	if all && name != "" {
		return errors.New("name and all are mutually exclusive")
	}
	return nil
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	if strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("name %q must not contain whitespace", name)
	}
	return nil
}

func requirePort(port int) error {
	if port == 0 {
		return errors.New("port is required")
	}
	return optionalPort(port)
}

func optionalPort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}
