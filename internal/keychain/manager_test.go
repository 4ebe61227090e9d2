// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelpark/cli/internal/backend"
)

func TestCredentialsLifecycle(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	_, err := m.LoadCredentials()
	require.ErrorIs(t, err, ErrNotFound)

	want := backend.Credentials{Email: "dev@example.com", Password: "s3cret"}
	require.NoError(t, m.SaveCredentials(want))

	got, err := m.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	tok := backend.Credentials{Token: "T"}
	require.NoError(t, m.SaveCredentials(tok))
	got, err = m.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, tok, got, "save replaces the previous credentials")

	require.NoError(t, m.ClearCredentials())
	_, err = m.LoadCredentials()
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, m.ClearCredentials(), "clearing twice is fine")
}

func TestSaveRejectsInvalidCredentials(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	m := NewManagerWithRing(ring)

	err := m.SaveCredentials(backend.Credentials{Email: "a@b.c"})
	require.Error(t, err)

	keys, err := ring.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLoadCorruptItem(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: KeyCredentials, Data: []byte("{not json")}})
	_, err := NewManagerWithRing(ring).LoadCredentials()
	assert.ErrorContains(t, err, "decode stored credentials")
}

func TestAllowedBackends(t *testing.T) {
	assert.Equal(t, []keyring.BackendType{keyring.WinCredBackend}, allowedBackends("windows"))
	assert.Contains(t, allowedBackends("linux"), keyring.SecretServiceBackend)
	assert.NotContains(t, allowedBackends("linux"), keyring.FileBackend)
	assert.Equal(t, keyring.KeychainBackend, allowedBackends("darwin")[0])
}
