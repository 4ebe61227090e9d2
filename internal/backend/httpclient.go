// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"strings"
	"time"
)

// Endpoints holds the URL paths of the authentication API.
type Endpoints struct {
	Login  string // e.g. "/api/auth/login"
	Access string // e.g. "/api/app-project/access/", the app name is appended
}

// DefaultEndpoints are the paths served by modelpark.app.
var DefaultEndpoints = Endpoints{
	Login:  "/api/auth/login",
	Access: "/api/app-project/access/",
}

// HTTP implements API over the REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all requests (e.g., "https://modelpark.app")
	baseURL   string
	endpoints Endpoints
	client    Doer
}

// New creates an HTTP backend. A zero timeout means requests are not bounded,
// matching a single blocking attempt; pass a positive timeout to bound them.
func New(baseURL string, timeout time.Duration) *HTTP {
	return NewWithClient(baseURL, DefaultEndpoints, &http.Client{Timeout: timeout})
}

// NewWithClient creates an HTTP backend that sends requests through client.
func NewWithClient(baseURL string, endpoints Endpoints, client Doer) *HTTP {
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		client:    client,
	}
}
