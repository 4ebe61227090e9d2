// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mperrors "modelpark/cli/internal/errors"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{"login bare", LoginParams{}, []string{"login"}},
		{"login token", LoginParams{Token: "T"}, []string{"login", "--token", "T"}},
		{"login email password", LoginParams{Email: "a@b.c", Password: "pw"}, []string{"login", "--email", "a@b.c", "-p", "pw"}},
		{"logout", LogoutParams{}, []string{"logout"}},
		{"init default", InitParams{}, []string{"init"}},
		{"init port attached", InitParams{Port: 8080, NoDetach: true}, []string{"init", "-p", "8080", "-d", "false"}},
		{"run minimal", RunParams{Name: "demo"}, []string{"run", "--name", "demo"}},
		{
			"run full",
			RunParams{Name: "demo", Port: 8501, Access: "public", Framework: "streamlit", Command: []string{"streamlit", "run", "app.py"}},
			[]string{"run", "--name", "demo", "--port", "8501", "--access", "public", "--framework", "streamlit", "--", "streamlit", "run", "app.py"},
		},
		{"serve", ServeParams{Name: "demo", Port: 3000}, []string{"serve", "--name", "demo", "--port", "3000"}},
		{
			"serve full",
			ServeParams{Name: "demo", Port: 3000, Access: "private", Framework: "fastapi"},
			[]string{"serve", "--name", "demo", "--port", "3000", "--access", "private", "--framework", "fastapi"},
		},
		{"register defaults", RegisterParams{Port: 8501, Name: "demo"}, []string{"register", "-p", "8501", "-n", "demo", "-a", "private"}},
		{
			"register public with password and file",
			RegisterParams{Port: 8501, Name: "demo", Access: "public", Framework: "streamlit", FilePath: "app.py", Password: "pw"},
			[]string{"register", "-p", "8501", "-n", "demo", "-a", "public", "-f", "streamlit", "app.py", "-password", "pw"},
		},
		{
			"register private drops password",
			RegisterParams{Port: 8501, Name: "demo", Password: "pw"},
			[]string{"register", "-p", "8501", "-n", "demo", "-a", "private"},
		},
		{"ls", LsParams{}, []string{"ls"}},
		{"status", StatusParams{}, []string{"status"}},
		{"version", VersionParams{}, []string{"version"}},
		{"logs", LogsParams{Name: "demo"}, []string{"logs", "--name", "demo"}},
		{"logs follow", LogsParams{Name: "demo", Follow: true}, []string{"logs", "--name", "demo", "-f"}},
		{"stop bare", StopParams{}, []string{"stop"}},
		{"stop name", StopParams{Name: "demo"}, []string{"stop", "-n", "demo"}},
		{"stop all", StopParams{All: true}, []string{"stop", "-a"}},
		{"kill name", KillParams{Name: "demo"}, []string{"kill", "-n", "demo"}},
		{"kill all", KillParams{All: true}, []string{"kill", "-a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := New(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op.Args())

			again, err := New(tt.params)
			require.NoError(t, err)
			assert.Equal(t, op.CommandLine("modelpark"), again.CommandLine("modelpark"))
		})
	}
}

func TestPointerParams(t *testing.T) {
	op, err := New(&LogsParams{Name: "demo", Follow: true})
	require.NoError(t, err)
	assert.True(t, op.Stream())
	assert.Equal(t, []string{"logs", "--name", "demo", "-f"}, op.Args())
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"nil", nil},
		{"login token and email", LoginParams{Token: "T", Email: "a@b.c"}},
		{"run without name", RunParams{Port: 80}},
		{"run bad port", RunParams{Name: "demo", Port: 70000}},
		{"serve without port", ServeParams{Name: "demo"}},
		{"serve without name", ServeParams{Port: 80}},
		{"register without port", RegisterParams{Name: "demo"}},
		{"register without name", RegisterParams{Port: 80}},
		{"logs without name", LogsParams{}},
		{"stop name and all", StopParams{Name: "demo", All: true}},
		{"kill name and all", KillParams{Name: "demo", All: true}},
		{"name with space", LogsParams{Name: "my app"}},
		{"init negative port", InitParams{Port: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			require.Error(t, err)
			assert.True(t, mperrors.Is(err, mperrors.InvalidOperation))
		})
	}
}

func TestModeClassificationIsExhaustive(t *testing.T) {
	background := map[Kind]bool{Init: true, Run: true, Serve: true}
	for _, k := range Kinds {
		m, ok := ModeOf(k)
		require.True(t, ok, "kind %s has no mode", k)
		if background[k] {
			assert.Equal(t, Background, m, k)
		} else {
			assert.Equal(t, Blocking, m, k)
		}
	}
	_, ok := ModeOf(Kind("deploy"))
	assert.False(t, ok)
}

func TestModeFixedAtConstruction(t *testing.T) {
	op, err := New(RunParams{Name: "init-server", Command: []string{"python", "init.py"}})
	require.NoError(t, err)
	assert.Equal(t, Background, op.Mode())

	op, err = New(LogsParams{Name: "run"})
	require.NoError(t, err)
	assert.Equal(t, Blocking, op.Mode())
	assert.False(t, op.Stream())
}

func TestRedacted(t *testing.T) {
	op, err := New(LoginParams{Token: "secret-token"})
	require.NoError(t, err)
	assert.Equal(t, "modelpark login --token ***", op.CommandLine("modelpark"))
	assert.Equal(t, []string{"login", "--token", "secret-token"}, op.Args())

	op, err = New(RegisterParams{Port: 8501, Name: "demo", Access: "public", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/modelpark register -p 8501 -n demo -a public -password ***", op.CommandLine("/usr/local/bin/modelpark"))
}

func TestArgsReturnsCopy(t *testing.T) {
	op, err := New(LogsParams{Name: "demo"})
	require.NoError(t, err)
	args := op.Args()
	args[0] = "mutated"
	assert.Equal(t, "logs", op.Args()[0])
}
