// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelpark/cli/internal/backend"
	"modelpark/cli/internal/config"
	mperrors "modelpark/cli/internal/errors"
)

// recorder is a backend.Doer that answers by URL and keeps every request.
type recorder struct {
	requests []*http.Request
	bodies   [][]byte
	handle   func(*http.Request) (*http.Response, error)
}

func (r *recorder) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	r.requests = append(r.requests, req)
	r.bodies = append(r.bodies, body)
	return r.handle(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// spyFile records whether it was closed.
type spyFile struct {
	io.Reader
	closed bool
}

func (s *spyFile) Close() error {
	s.closed = true
	return nil
}

func newRelay(rec *recorder, opts ...Option) *Relay {
	cfg := config.Default()
	api := backend.NewWithClient(cfg.APIBaseURL, backend.DefaultEndpoints, rec)
	opts = append([]Option{WithAPI(api), WithClient(rec)}, opts...)
	return New(cfg, opts...)
}

func TestCallRoundTrip(t *testing.T) {
	rec := &recorder{handle: func(req *http.Request) (*http.Response, error) {
		switch req.URL.String() {
		case "https://modelpark.app/api/auth/login":
			return respond(http.StatusOK, `{"authToken":"A"}`), nil
		case "https://modelpark.app/api/app-project/access/demo":
			return respond(http.StatusOK, `{"accessToken":"B"}`), nil
		default:
			return respond(http.StatusOK, `{"answer":42}`), nil
		}
	}}
	r := newRelay(rec)

	res, err := r.Call(context.Background(), "demo", backend.Credentials{Email: "a@b.c", Password: "pw"}, Request{
		Payload: url.Values{"q": {"1"}},
	})
	require.NoError(t, err)
	require.Len(t, rec.requests, 3)

	login := rec.requests[0]
	assert.Equal(t, http.MethodPost, login.Method)
	assert.JSONEq(t, `{"email":"a@b.c","password":"pw"}`, string(rec.bodies[0]))

	access := rec.requests[1]
	assert.Equal(t, http.MethodGet, access.Method)
	assert.Equal(t, "Bearer A", access.Header.Get("Authorization"))

	relayed := rec.requests[2]
	assert.Equal(t, http.MethodGet, relayed.Method)
	assert.Equal(t, "demo.modelpark.app", relayed.URL.Host)
	assert.Equal(t, "https", relayed.URL.Scheme)
	assert.Empty(t, relayed.URL.Path)
	assert.Equal(t, "q=1", relayed.URL.RawQuery)
	assert.Equal(t, "B", relayed.Header.Get("x-access-token"))
	assert.Empty(t, relayed.Header.Get("Authorization"))

	assert.True(t, res.IsJSON())
	assert.Equal(t, map[string]any{"answer": float64(42)}, res.JSON)
}

func TestCallAccessOptions(t *testing.T) {
	rec := &recorder{handle: func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/auth/login" {
			return respond(http.StatusOK, `{"authToken":"A"}`), nil
		}
		if strings.HasPrefix(req.URL.Path, "/api/app-project/access/") {
			return respond(http.StatusOK, `{"accessToken":"B"}`), nil
		}
		return respond(http.StatusOK, `[]`), nil
	}}
	r := newRelay(rec)

	_, err := r.Call(context.Background(), "demo", backend.Credentials{Token: "T"}, Request{
		Extension: "/predict",
		Access:    backend.AccessOptions{Password: "x", Expire: "60"},
	})
	require.NoError(t, err)
	require.Len(t, rec.requests, 3)
	assert.Equal(t, "password=x&expiresIn=60", rec.requests[1].URL.RawQuery)
	assert.Equal(t, "https://demo.modelpark.app/predict", rec.requests[2].URL.String())
}

func TestCallStopsOnTokenFailure(t *testing.T) {
	rec := &recorder{handle: func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/auth/login" {
			return respond(http.StatusOK, `{"authToken":"A"}`), nil
		}
		return respond(http.StatusNotFound, `no such app`), nil
	}}
	r := newRelay(rec)

	_, err := r.Call(context.Background(), "demo", backend.Credentials{Token: "T"}, Request{})
	require.Error(t, err)
	assert.True(t, mperrors.Is(err, mperrors.AccessTokenFetchFailure))
	assert.Len(t, rec.requests, 2)
}

func TestNon200ReturnsText(t *testing.T) {
	rec := &recorder{handle: func(*http.Request) (*http.Response, error) {
		return respond(http.StatusInternalServerError, "oops"), nil
	}}
	r := newRelay(rec)

	res, err := r.CallWithAccessToken(context.Background(), "demo", "B", Request{})
	require.NoError(t, err)
	assert.False(t, res.IsJSON())
	assert.Equal(t, "oops", res.Text)
	assert.Nil(t, res.JSON)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "oops", res.String())
}

func TestOKWithBadJSONFails(t *testing.T) {
	rec := &recorder{handle: func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "<html>"), nil
	}}

	_, err := newRelay(rec).CallWithAccessToken(context.Background(), "demo", "B", Request{})
	require.Error(t, err)
	assert.True(t, mperrors.Is(err, mperrors.RelayHTTPFailure))
}

func TestAudioUploadClosesFile(t *testing.T) {
	tests := []struct {
		name    string
		doErr   error
		wantErr bool
	}{
		{"post succeeds", nil, false},
		{"post fails", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyFile{Reader: strings.NewReader("RIFF....WAVE")}
			var opened []string
			rec := &recorder{handle: func(req *http.Request) (*http.Response, error) {
				assert.False(t, spy.closed, "file closed before the call completed")
				if tt.doErr != nil {
					return nil, tt.doErr
				}
				return respond(http.StatusOK, `{"text":"hello"}`), nil
			}}
			r := newRelay(rec, WithOpener(func(p string) (io.ReadCloser, error) {
				opened = append(opened, p)
				return spy, nil
			}))

			_, err := r.CallWithAccessToken(context.Background(), "demo", "B", Request{
				Extension: "transcribe",
				AudioPath: "/tmp/clip.wav",
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, mperrors.Is(err, mperrors.RelayHTTPFailure))
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, []string{"/tmp/clip.wav"}, opened)
			assert.True(t, spy.closed)

			require.Len(t, rec.requests, 1)
			req := rec.requests[0]
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "https://demo.modelpark.app/transcribe", req.URL.String())
			parts := readParts(t, req.Header.Get("Content-Type"), rec.bodies[0])
			assert.Equal(t, "RIFF....WAVE", parts["audio"].content)
			assert.Equal(t, "clip.wav", parts["audio"].filename)
		})
	}
}

func TestFilesWinOverAudio(t *testing.T) {
	rec := &recorder{handle: func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{}`), nil
	}}
	contents := map[string]string{"/data/a.csv": "a,b\n1,2\n", "/tmp/clip.wav": "audio"}
	var opened []string
	var spies []*spyFile
	r := newRelay(rec, WithOpener(func(p string) (io.ReadCloser, error) {
		opened = append(opened, p)
		s := &spyFile{Reader: strings.NewReader(contents[p])}
		spies = append(spies, s)
		return s, nil
	}))

	req := Request{
		Files:     []File{{Field: "file", Path: "/data/a.csv"}},
		AudioPath: "/tmp/clip.wav",
		Payload:   url.Values{"sep": {","}},
	}
	assert.Equal(t, Files, req.Mode())

	_, err := r.CallWithAccessToken(context.Background(), "demo", "B", req)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a.csv"}, opened)
	for _, s := range spies {
		assert.True(t, s.closed)
	}

	parts := readParts(t, rec.requests[0].Header.Get("Content-Type"), rec.bodies[0])
	assert.Equal(t, "a,b\n1,2\n", parts["file"].content)
	assert.Equal(t, ",", parts["sep"].content)
	_, hasAudio := parts["audio"]
	assert.False(t, hasAudio)
}

func TestOpenFailureClosesOpenedFiles(t *testing.T) {
	rec := &recorder{handle: func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}}
	first := &spyFile{Reader: strings.NewReader("x")}
	r := newRelay(rec, WithOpener(func(p string) (io.ReadCloser, error) {
		if p == "/missing" {
			return nil, errors.New("no such file")
		}
		return first, nil
	}))

	_, err := r.CallWithAccessToken(context.Background(), "demo", "B", Request{
		Files: []File{{Field: "a", Path: "/ok"}, {Field: "b", Path: "/missing"}},
	})
	require.Error(t, err)
	assert.True(t, mperrors.Is(err, mperrors.RelayHTTPFailure))
	assert.True(t, first.closed)
}

func TestModePriority(t *testing.T) {
	assert.Equal(t, Query, Request{}.Mode())
	assert.Equal(t, Query, Request{Payload: url.Values{"q": {"1"}}}.Mode())
	assert.Equal(t, Audio, Request{AudioPath: "a.wav"}.Mode())
	assert.Equal(t, Files, Request{Files: []File{{Field: "f", Path: "p"}}}.Mode())
	assert.Equal(t, Files, Request{Files: []File{{Field: "f", Path: "p"}}, AudioPath: "a.wav"}.Mode())
}

func TestAppURL(t *testing.T) {
	r := New(config.Default())

	u, err := r.AppURL("demo", "")
	require.NoError(t, err)
	assert.Equal(t, "https://demo.modelpark.app", u)

	u, err = r.AppURL("demo", "api/v1/predict")
	require.NoError(t, err)
	assert.Equal(t, "https://demo.modelpark.app/api/v1/predict", u)

	u, err = r.AppURL("demo", "/predict?mode=fast")
	require.NoError(t, err)
	assert.Equal(t, "https://demo.modelpark.app/predict?mode=fast", u)

	for _, bad := range []string{"", "evil.com/x", "a b", "-lead", "x@y"} {
		_, err := r.AppURL(bad, "")
		assert.True(t, mperrors.Is(err, mperrors.InvalidOperation), bad)
	}

	_, err = r.AppURL("demo", "predict#top")
	assert.True(t, mperrors.Is(err, mperrors.InvalidOperation))
}

func TestExtensionQueryMergesWithPayload(t *testing.T) {
	rec := &recorder{handle: func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{}`), nil
	}}

	_, err := newRelay(rec).CallWithAccessToken(context.Background(), "demo", "B", Request{
		Extension: "predict?mode=fast",
		Payload:   url.Values{"q": {"1"}},
	})
	require.NoError(t, err)
	require.Len(t, rec.requests, 1)

	got := rec.requests[0].URL
	assert.Equal(t, "/predict", got.Path)
	assert.Equal(t, url.Values{"mode": {"fast"}, "q": {"1"}}, got.Query())
	assert.Equal(t, "https://demo.modelpark.app/predict?mode=fast&q=1", got.String())
}

func TestExtensionQueryKeptForUploads(t *testing.T) {
	rec := &recorder{handle: func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{}`), nil
	}}
	r := newRelay(rec, WithOpener(func(string) (io.ReadCloser, error) {
		return &spyFile{Reader: strings.NewReader("x")}, nil
	}))

	_, err := r.CallWithAccessToken(context.Background(), "demo", "B", Request{
		Extension: "upload?lang=en",
		AudioPath: "/tmp/a.wav",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://demo.modelpark.app/upload?lang=en", rec.requests[0].URL.String())
}

func TestInvalidAppSkipsTokenExchange(t *testing.T) {
	rec := &recorder{handle: func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected request %s %s", req.Method, req.URL)
		return respond(http.StatusOK, `{"authToken":"A","accessToken":"B"}`), nil
	}}
	r := newRelay(rec)
	creds := backend.Credentials{Email: "a@b.c", Password: "pw"}

	_, err := r.Call(context.Background(), "evil.com/x", creds, Request{})
	assert.True(t, mperrors.Is(err, mperrors.InvalidOperation))

	_, err = r.AccessToken(context.Background(), "evil.com/x", creds, backend.AccessOptions{})
	assert.True(t, mperrors.Is(err, mperrors.InvalidOperation))

	_, err = r.Call(context.Background(), "demo", creds, Request{Extension: "x#y"})
	assert.True(t, mperrors.Is(err, mperrors.InvalidOperation))

	assert.Empty(t, rec.requests)
}

func TestResultString(t *testing.T) {
	res := Result{StatusCode: http.StatusOK, JSON: map[string]any{"a": float64(1)}}
	assert.Equal(t, "{\n  \"a\": 1\n}", res.String())
}

type part struct {
	filename string
	content  string
}

func readParts(t *testing.T, contentType string, body []byte) map[string]part {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	out := map[string]part{}
	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		out[p.FormName()] = part{filename: p.FileName(), content: string(b)}
	}
	return out
}
