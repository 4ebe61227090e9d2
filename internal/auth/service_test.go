// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelpark/cli/internal/backend"
	"modelpark/cli/internal/keychain"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "auth.json")
	s := NewService(keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil)), path, nil)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, path
}

func TestSaveLoadClear(t *testing.T) {
	s, path := newTestService(t)

	st, err := s.Status()
	require.NoError(t, err)
	assert.False(t, st.Saved)

	_, err = s.Load()
	require.ErrorIs(t, err, ErrNoCredentials)

	creds := backend.Credentials{Username: "dev", Password: "pw"}
	require.NoError(t, s.Save(creds))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	st, err = LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, State{Saved: true, Account: "dev", SavedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}, st)

	require.NoError(t, s.Clear())
	assert.NoFileExists(t, path)
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestSaveInvalidLeavesNoState(t *testing.T) {
	s, path := newTestService(t)
	require.Error(t, s.Save(backend.Credentials{Password: "pw"}))
	assert.NoFileExists(t, path)
}

func TestResolve(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Resolve(backend.Credentials{})
	assert.ErrorIs(t, err, ErrNoCredentials)

	stored := backend.Credentials{Token: "stored"}
	require.NoError(t, s.Save(stored))

	got, err := s.Resolve(backend.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	explicit := backend.Credentials{Email: "a@b.c", Password: "x"}
	got, err = s.Resolve(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got, "explicit credentials win over stored ones")

	_, err = s.Resolve(backend.Credentials{Email: "a@b.c"})
	assert.Error(t, err, "email without password")
}

func TestStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, SaveState(path, State{Saved: true}))
	st, err := LoadState(path)
	require.NoError(t, err)
	assert.True(t, st.Saved)

	require.NoError(t, ClearState(path))
	require.NoError(t, ClearState(path))
}
