// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package relay

import (
	"encoding/json"
	"net/url"

	"modelpark/cli/internal/backend"
)

// PayloadMode is how a Request is sent to the app.
type PayloadMode int

const (
	// Query sends a GET with the payload encoded as query parameters.
	Query PayloadMode = iota
	// Files sends a multipart POST with every file in Request.Files.
	Files
	// Audio sends a multipart POST with the single file field "audio".
	Audio
)

func (m PayloadMode) String() string {
	switch m {
	case Files:
		return "files"
	case Audio:
		return "audio"
	default:
		return "query"
	}
}

// AudioField is the multipart field name used for audio uploads.
const AudioField = "audio"

// File is one multipart file part.
type File struct {
	Field string
	Path  string
}

// Request describes one relayed call to an app.
type Request struct {
	// Extension is appended to the app URL as a path suffix. Its query, if
	// any, is merged with Payload in query mode.
	Extension string
	// Payload is sent as query parameters for GET, as form fields for POST.
	Payload url.Values
	// Files takes priority over AudioPath.
	Files     []File
	AudioPath string
	// Access constrains the accessToken fetched by Relay.Call.
	Access backend.AccessOptions
}

// Mode selects the payload mode: a file set wins over an audio path, which
// wins over a plain query.
func (r Request) Mode() PayloadMode {
	switch {
	case len(r.Files) > 0:
		return Files
	case r.AudioPath != "":
		return Audio
	default:
		return Query
	}
}

// parts returns the file parts for the selected mode.
func (r Request) parts() []File {
	switch r.Mode() {
	case Files:
		return r.Files
	case Audio:
		return []File{{Field: AudioField, Path: r.AudioPath}}
	default:
		return nil
	}
}

// Result is the outcome of a relayed call. A 200 response carries the decoded
// JSON; any other status carries the raw body as Text.
type Result struct {
	StatusCode int
	JSON       any
	Text       string
}

// IsJSON reports whether the call succeeded and JSON holds the decoded body.
func (r Result) IsJSON() bool { return r.StatusCode == 200 }

// String renders the result for display: indented JSON or the raw text.
func (r Result) String() string {
	if !r.IsJSON() {
		return r.Text
	}
	b, err := json.MarshalIndent(r.JSON, "", "  ")
	if err != nil {
		return r.Text
	}
	return string(b)
}
