// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the client for the ModelPark authentication API.
// It performs the two token exchanges that precede every relayed request:
// credentials for an authToken, then an authToken for an app-scoped accessToken.
package backend

import (
	"context"
	"net/http"
)

// API defines backend operations the relay depends on.
// Implementations may call the real HTTP endpoints or provide fakes for tests.
type API interface {
	// GetAuthToken exchanges credentials for an authToken. credentials is any
	// JSON-serializable value, typically a Credentials.
	GetAuthToken(ctx context.Context, credentials any) (string, error)
	// GetAccessToken exchanges an authToken for an accessToken scoped to appName.
	GetAccessToken(ctx context.Context, appName, authToken string, opts AccessOptions) (string, error)
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}
