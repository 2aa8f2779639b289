package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/resfetch/resfetch/internal/fetch"
	"github.com/resfetch/resfetch/internal/hashid"
	"github.com/resfetch/resfetch/internal/logging"
	"github.com/resfetch/resfetch/internal/resource"
	"github.com/resfetch/resfetch/internal/urltable"
)

func TestRouterServesResourceByName(t *testing.T) {
	app, fake := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/resources/models/model.tflite", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 status, got %d (body=%s)", resp.StatusCode, string(body))
	}
	if string(body) != "name:models/model.tflite" {
		t.Fatalf("unexpected body %q", string(body))
	}
	if fake.lastRef != "models/model.tflite" {
		t.Fatalf("expected name passed through, got %s", fake.lastRef)
	}
	if resp.Header.Get("X-Resfetch-Path") == "" {
		t.Fatalf("expected X-Resfetch-Path header")
	}
	if reqID := resp.Header.Get("X-Request-ID"); reqID == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func TestRouterServesHashAndURL(t *testing.T) {
	app, fake := newTestApp(t)

	id := "hash:da39a3ee5e6b4b0d3255bfef95601890afd80709:log.bag"
	resp, err := app.Test(httptest.NewRequest("GET", "/hash?id="+url.QueryEscape(id), nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK || fake.lastRef != id {
		t.Fatalf("unexpected hash response status=%d ref=%s", resp.StatusCode, fake.lastRef)
	}

	raw := "https://x/photo.jpg"
	resp, err = app.Test(httptest.NewRequest("GET", "/url?u="+url.QueryEscape(raw), nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK || fake.lastRef != raw {
		t.Fatalf("unexpected url response status=%d ref=%s", resp.StatusCode, fake.lastRef)
	}
}

func TestRouterMapsErrors(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", &urltable.ResolutionError{Ref: "missing", Reason: "no URL found"}, fiber.StatusNotFound, "resource_not_found"},
		{"invalid hash", fmt.Errorf("%w: bad", hashid.ErrInvalid), fiber.StatusBadRequest, "invalid_hash_url"},
		{"download", &fetch.DownloadError{URL: "u", Destination: "d", Err: fmt.Errorf("exit 8")}, fiber.StatusBadGateway, "download_failed"},
		{"integrity", &fetch.IntegrityError{URL: "u", Destination: "d"}, fiber.StatusInternalServerError, "fetch_failed"},
		{"invalid url", fmt.Errorf("%w: scheme", resource.ErrInvalidURL), fiber.StatusBadRequest, "invalid_url"},
		{"directory", &fetch.DestinationError{URL: "u", Destination: "d"}, fiber.StatusConflict, "destination_conflict"},
		{"commit", &fetch.CommitError{URL: "u", Destination: "d", TempPath: "t", Err: os.ErrPermission}, fiber.StatusInternalServerError, "cache_write_failed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, fake := newTestApp(t)
			fake.err = tc.err

			resp, err := app.Test(httptest.NewRequest("GET", "/resources/missing", nil))
			if err != nil {
				t.Fatalf("app.Test failed: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			body, _ := io.ReadAll(resp.Body)
			if !bytes.Contains(body, []byte(`"`+tc.code+`"`)) {
				t.Fatalf("expected %s error, got %s", tc.code, string(body))
			}
		})
	}
}

func TestRouterRequiresParameters(t *testing.T) {
	app, _ := newTestApp(t)

	for _, target := range []string{"/hash", "/url", "/hash?id=", "/url?u=%20"} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		if err != nil {
			t.Fatalf("app.Test failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", target, resp.StatusCode)
		}
	}
}

func TestNewAppValidatesOptions(t *testing.T) {
	if _, err := NewApp(AppOptions{}); err == nil {
		t.Fatalf("missing options should fail")
	}
	if _, err := NewApp(AppOptions{Logger: logging.Discard(), Resources: &fakeResources{}, ListenPort: 0}); err == nil {
		t.Fatalf("invalid port should fail")
	}
}

func newTestApp(t *testing.T) (*fiber.App, *fakeResources) {
	t.Helper()

	fake := &fakeResources{dir: t.TempDir()}
	app, err := NewApp(AppOptions{
		Logger:     logging.Discard(),
		Resources:  fake,
		ListenPort: 5000,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return app, fake
}

// fakeResources writes "<kind>:<ref>" into a temp file and returns its path.
type fakeResources struct {
	dir     string
	err     error
	lastRef string
	n       int
}

func (f *fakeResources) Require(ctx context.Context, name, destination string) (string, error) {
	return f.produce("name", name)
}

func (f *fakeResources) RequireFromHashURL(ctx context.Context, hashURL, destination string) (string, error) {
	return f.produce("hash", hashURL)
}

func (f *fakeResources) FileFromURL(ctx context.Context, url string) (string, error) {
	return f.produce("url", url)
}

func (f *fakeResources) produce(kind, ref string) (string, error) {
	f.lastRef = ref
	if f.err != nil {
		return "", f.err
	}
	f.n++
	path := filepath.Join(f.dir, fmt.Sprintf("file-%d", f.n))
	if err := os.WriteFile(path, []byte(kind+":"+ref), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
