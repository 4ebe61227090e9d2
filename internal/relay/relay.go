// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package relay forwards HTTP requests to apps deployed on ModelPark.
//
// Call performs the full handshake: credentials are exchanged for an
// authToken, the authToken for an accessToken scoped to the app, and the
// request is then sent to https://{app}.{domain}[/{extension}] with the
// accessToken in the x-access-token header. CallWithAccessToken skips the
// exchange. Tokens are never cached between calls.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"modelpark/cli/internal/backend"
	"modelpark/cli/internal/config"
	mperrors "modelpark/cli/internal/errors"
	"modelpark/cli/internal/logging"
)

// AccessTokenHeader carries the accessToken on relayed requests.
const AccessTokenHeader = "x-access-token"

var reAppName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Opener opens a file for upload.
type Opener func(path string) (io.ReadCloser, error)

// Relay sends requests to deployed apps.
type Relay struct {
	api    backend.API
	client backend.Doer
	scheme string
	domain string
	open   Opener
	logger *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithAPI replaces the token exchange client.
func WithAPI(api backend.API) Option { return func(r *Relay) { r.api = api } }

// WithClient replaces the HTTP client used for relayed requests.
func WithClient(c backend.Doer) Option { return func(r *Relay) { r.client = c } }

// WithOpener replaces how upload files are opened.
func WithOpener(o Opener) Option { return func(r *Relay) { r.open = o } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(r *Relay) { r.logger = l } }

// New builds a Relay from cfg.
func New(cfg config.Config, opts ...Option) *Relay {
	client := &http.Client{Timeout: cfg.Timeout()}
	r := &Relay{
		api:    backend.NewWithClient(cfg.APIBaseURL, backend.DefaultEndpoints, client),
		client: client,
		scheme: cfg.AppScheme,
		domain: cfg.AppDomain,
		open:   func(p string) (io.ReadCloser, error) { return os.Open(p) },
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AppURL returns the relay URL for app with an optional path extension.
// A query in extension is kept; a fragment is rejected.
func (r *Relay) AppURL(app, extension string) (string, error) {
	u, err := r.appURL(app, extension)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func checkApp(app string) error {
	if !reAppName.MatchString(app) {
		return mperrors.New(mperrors.InvalidOperation, fmt.Sprintf("invalid app name %q", app))
	}
	return nil
}

func (r *Relay) appURL(app, extension string) (*url.URL, error) {
	if err := checkApp(app); err != nil {
		return nil, err
	}
	if strings.Contains(extension, "#") {
		return nil, mperrors.New(mperrors.InvalidOperation, fmt.Sprintf("extension %q must not contain a fragment", extension))
	}
	path, rawQuery, _ := strings.Cut(strings.TrimLeft(extension, "/"), "?")
	if _, err := url.ParseQuery(rawQuery); err != nil {
		return nil, mperrors.Wrap(mperrors.InvalidOperation, fmt.Sprintf("extension %q", extension), err)
	}
	u := &url.URL{Scheme: r.scheme, Host: app + "." + r.domain, RawQuery: rawQuery}
	if path != "" {
		u.Path = "/" + path
	}
	return u, nil
}

// AccessToken runs both token exchanges and returns an accessToken for app.
func (r *Relay) AccessToken(ctx context.Context, app string, credentials any, opts backend.AccessOptions) (string, error) {
	if err := checkApp(app); err != nil {
		return "", err
	}
	authToken, err := r.api.GetAuthToken(ctx, credentials)
	if err != nil {
		return "", err
	}
	return r.api.GetAccessToken(ctx, app, authToken, opts)
}

// Call exchanges credentials for an accessToken and relays req to app.
func (r *Relay) Call(ctx context.Context, app string, credentials any, req Request) (Result, error) {
	if _, err := r.appURL(app, req.Extension); err != nil {
		return Result{}, err
	}
	accessToken, err := r.AccessToken(ctx, app, credentials, req.Access)
	if err != nil {
		return Result{}, err
	}
	return r.CallWithAccessToken(ctx, app, accessToken, req)
}

// CallWithAccessToken relays req to app using a previously obtained accessToken.
func (r *Relay) CallWithAccessToken(ctx context.Context, app, accessToken string, req Request) (Result, error) {
	u, err := r.appURL(app, req.Extension)
	if err != nil {
		return Result{}, err
	}
	mode := req.Mode()
	log := r.logger.With("app", app, "mode", mode.String())

	var httpReq *http.Request
	if mode == Query {
		q := u.Query()
		for k, vs := range req.Payload {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return Result{}, mperrors.Wrap(mperrors.RelayHTTPFailure, "build request", err)
		}
	} else {
		// Upload files stay open until the call has completed.
		files, err := r.openParts(req.parts())
		if err != nil {
			return Result{}, err
		}
		defer files.Close()
		httpReq, err = multipartRequest(ctx, u.String(), req.Payload, files)
		if err != nil {
			return Result{}, err
		}
	}
	httpReq.Header.Set(AccessTokenHeader, accessToken)

	log.Debug("relaying", "method", httpReq.Method, "url", logging.Mask(httpReq.URL.String()))
	resp, err := r.client.Do(httpReq)
	if err != nil {
		log.Warn("relay failed", "error", logging.Mask(err.Error()))
		return Result{}, mperrors.Wrap(mperrors.RelayHTTPFailure, httpReq.Method+" "+app, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, mperrors.Wrap(mperrors.RelayHTTPFailure, "read response", err)
	}
	log.Debug("relay response", "status", resp.StatusCode, "bytes", len(body))

	res := Result{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		res.Text = string(body)
		return res, nil
	}
	if err := json.Unmarshal(body, &res.JSON); err != nil {
		return Result{}, mperrors.Wrap(mperrors.RelayHTTPFailure, "decode response", err)
	}
	return res, nil
}

type openFile struct {
	File
	rc io.ReadCloser
}

type openFiles []openFile

// Close closes every file and returns the first error.
func (fs openFiles) Close() error {
	var first error
	for _, f := range fs {
		if err := f.rc.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openParts opens every part; on failure the already opened ones are closed.
func (r *Relay) openParts(parts []File) (openFiles, error) {
	out := make(openFiles, 0, len(parts))
	for _, p := range parts {
		rc, err := r.open(p.Path)
		if err != nil {
			_ = out.Close()
			return nil, mperrors.Wrap(mperrors.RelayHTTPFailure, "open "+p.Path, err)
		}
		out = append(out, openFile{File: p, rc: rc})
	}
	return out, nil
}

func multipartRequest(ctx context.Context, target string, payload url.Values, files openFiles) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		w, err := writer.CreateFormFile(f.Field, filepath.Base(f.Path))
		if err != nil {
			return nil, mperrors.Wrap(mperrors.RelayHTTPFailure, "create form file", err)
		}
		if _, err := io.Copy(w, f.rc); err != nil {
			return nil, mperrors.Wrap(mperrors.RelayHTTPFailure, "copy "+f.Path, err)
		}
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range payload[k] {
			if err := writer.WriteField(k, v); err != nil {
				return nil, mperrors.Wrap(mperrors.RelayHTTPFailure, "write form field", err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, mperrors.Wrap(mperrors.RelayHTTPFailure, "close multipart writer", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return nil, mperrors.Wrap(mperrors.RelayHTTPFailure, "build request", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	return httpReq, nil
}
