// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	mperrors "modelpark/cli/internal/errors"
	"modelpark/cli/internal/logging"
)

// GetAuthToken calls POST /api/auth/login with the credentials as JSON body
// and returns the authToken field of the response.
func (h *HTTP) GetAuthToken(ctx context.Context, credentials any) (string, error) {
	var validateErr error
	switch c := credentials.(type) {
	case Credentials:
		validateErr = c.Validate()
	case *Credentials:
		validateErr = c.Validate()
	}
	if validateErr != nil {
		return "", mperrors.Wrap(mperrors.AuthTokenFetchFailure, "invalid credentials", validateErr)
	}
	body, err := json.Marshal(credentials)
	if err != nil {
		return "", mperrors.Wrap(mperrors.AuthTokenFetchFailure, "encode credentials", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+h.endpoints.Login, bytes.NewReader(body))
	if err != nil {
		return "", mperrors.Wrap(mperrors.AuthTokenFetchFailure, "build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := h.fetchToken(req, "authToken", "auth_token", "token")
	if err != nil {
		return "", mperrors.Wrap(mperrors.AuthTokenFetchFailure, "login", err)
	}
	return token, nil
}

// GetAccessToken calls GET /api/app-project/access/{appName} with
// Authorization: Bearer <authToken> and returns the accessToken field.
func (h *HTTP) GetAccessToken(ctx context.Context, appName, authToken string, opts AccessOptions) (string, error) {
	if strings.TrimSpace(appName) == "" {
		return "", mperrors.New(mperrors.AccessTokenFetchFailure, "app name is required")
	}
	u := h.baseURL + h.endpoints.Access + url.PathEscape(appName) + AccessQuery(opts.Password, opts.Expire)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", mperrors.Wrap(mperrors.AccessTokenFetchFailure, "build access request", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Accept", "application/json")

	token, err := h.fetchToken(req, "accessToken", "access_token", "token")
	if err != nil {
		return "", mperrors.Wrap(mperrors.AccessTokenFetchFailure, appName, err)
	}
	return token, nil
}

// fetchToken sends req and extracts the first non-empty string among keys
// from the JSON response.
func (h *HTTP) fetchToken(req *http.Request, keys ...string) (string, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%d %s", resp.StatusCode, summarize(b))
	}

	var result map[string]any
	if err := json.Unmarshal(b, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if token := extractToken(result, keys...); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("no %s in response", keys[0])
}

// extractToken tries multiple field names to be resilient to response variants.
func extractToken(result map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := result[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// summarize returns a masked, shortened body for error messages.
func summarize(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return logging.Mask(s)
}
