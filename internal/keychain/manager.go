// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores relay credentials in the OS credential store.
//
// Credentials are kept as a single JSON item so that the email/username,
// password and token forms travel together. macOS uses the security command
// when it is available; every other platform goes through 99designs/keyring
// with native backends only.
package keychain

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"modelpark/cli/internal/backend"
)

// ServiceName identifies our namespace in the credential store.
const ServiceName = "modelpark"

// KeyCredentials is the item holding the relay credentials.
const KeyCredentials = "relay_credentials"

// ErrNotFound is returned when no credentials are stored.
var ErrNotFound = errors.New("no stored credentials")

var (
	globalManager *Manager
	mu            sync.Mutex
)

// store is the minimal set of operations the Manager needs.
type store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe access to the stored credentials.
type Manager struct {
	mu    sync.RWMutex
	store store
}

// NewManager opens the platform credential store.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if sb, err := newSecurityBackend(); err == nil {
			return &Manager{store: sb}, nil
		}
	}
	ring, err := openRing(runtime.GOOS)
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{store: ringStore{ring: ring}}
}

// GetManager returns the process-wide Manager, opening it on first use.
// A failed open is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// allowedBackends lists the native keyring backends per OS. No file fallback.
func allowedBackends(goos string) []keyring.BackendType {
	switch goos {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}
}

func openRing(goos string) (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends(goos),
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		switch goos {
		case "darwin":
			return nil, errors.New("macOS Keychain unavailable; install 'pass' as a fallback: brew install pass gnupg && pass init <gpg-key-id>")
		case "windows":
			return nil, fmt.Errorf("windows credential manager unavailable: %w", err)
		default:
			return nil, fmt.Errorf("no secret service, kwallet or pass store available: %w", err)
		}
	}
	return ring, nil
}

// SaveCredentials validates and stores c, replacing any previous value.
func (m *Manager) SaveCredentials(c backend.Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(KeyCredentials, string(b))
}

// LoadCredentials returns the stored credentials or ErrNotFound.
func (m *Manager) LoadCredentials() (backend.Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var c backend.Credentials
	data, err := m.store.Get(KeyCredentials)
	if err != nil {
		return c, err
	}
	if data == "" {
		return c, ErrNotFound
	}
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return c, fmt.Errorf("decode stored credentials: %w", err)
	}
	return c, nil
}

// ClearCredentials removes the stored credentials. Missing items are not an error.
func (m *Manager) ClearCredentials() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(KeyCredentials)
}

// ringStore adapts keyring.Keyring to store.
type ringStore struct {
	ring keyring.Keyring
}

func (r ringStore) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringStore) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringStore) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}
