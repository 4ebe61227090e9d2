// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth manages the credentials used by the relay.
//
// Secrets live in the OS keychain (internal/keychain); a small state file in
// the XDG state directory records which account was saved and when, so that
// status can be shown without unlocking the keychain.
package auth

import (
	"errors"
	"log/slog"
	"time"

	"modelpark/cli/internal/backend"
	"modelpark/cli/internal/keychain"
	"modelpark/cli/internal/logging"
)

// ErrNoCredentials is returned when neither flags nor the keychain supply credentials.
var ErrNoCredentials = errors.New("no credentials: pass --email/--password or --token, or run 'auth save'")

// Store persists credentials. *keychain.Manager implements it.
type Store interface {
	SaveCredentials(backend.Credentials) error
	LoadCredentials() (backend.Credentials, error)
	ClearCredentials() error
}

// Service saves, loads and resolves relay credentials.
type Service struct {
	store     Store
	statePath string
	now       func() time.Time
	logger    *slog.Logger
}

// NewService returns a Service over store that records state at statePath.
// An empty statePath disables the state file.
func NewService(store Store, statePath string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{store: store, statePath: statePath, now: time.Now, logger: logger}
}

// Save stores c in the keychain and records the account in the state file.
func (s *Service) Save(c backend.Credentials) error {
	if err := s.store.SaveCredentials(c); err != nil {
		return err
	}
	s.logger.Debug("credentials saved", "account", c.Account())
	if s.statePath == "" {
		return nil
	}
	return SaveState(s.statePath, State{Saved: true, Account: c.Account(), SavedAt: s.now().UTC()})
}

// Load returns the stored credentials.
func (s *Service) Load() (backend.Credentials, error) {
	c, err := s.store.LoadCredentials()
	if errors.Is(err, keychain.ErrNotFound) {
		return c, ErrNoCredentials
	}
	return c, err
}

// Clear removes stored credentials and the state file.
func (s *Service) Clear() error {
	if err := s.store.ClearCredentials(); err != nil {
		return err
	}
	s.logger.Debug("credentials cleared")
	if s.statePath == "" {
		return nil
	}
	return ClearState(s.statePath)
}

// Status reports what the state file says without touching the keychain.
func (s *Service) Status() (State, error) {
	if s.statePath == "" {
		return State{}, nil
	}
	return LoadState(s.statePath)
}

// Resolve returns explicit when it carries an email, username or token and
// the stored credentials otherwise. Explicit credentials are validated.
func (s *Service) Resolve(explicit backend.Credentials) (backend.Credentials, error) {
	if explicit.Email != "" || explicit.Username != "" || explicit.Token != "" {
		return explicit, explicit.Validate()
	}
	c, err := s.Load()
	if err != nil {
		return c, err
	}
	s.logger.Debug("using stored credentials", "account", c.Account())
	return c, nil
}
