package github

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testBaseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u
}

func TestNewClientUnauthenticated(t *testing.T) {
	c, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.Client == nil || c.HTTP == nil {
		t.Fatal("expected client to be initialized without a token")
	}
}

func TestNewClientSendsAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient("test-token")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	c.Client.BaseURL = testBaseURL(t, server.URL)

	req, err := c.Client.NewRequest("GET", "rate_limit", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if _, err := c.Client.Do(context.Background(), req, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.Contains(gotAuth, "test-token") {
		t.Fatalf("expected Authorization header with token, got %q", gotAuth)
	}
}

func TestNewClientVerboseLogging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := NewClient("", WithVerbose(true, logger))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	c.Client.BaseURL = testBaseURL(t, server.URL)

	req, err := c.Client.NewRequest("GET", "rate_limit", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if _, err := c.Client.Do(context.Background(), req, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}

	logs := buf.String()
	if !strings.Contains(logs, "github api request") {
		t.Fatalf("expected request log line, got: %q", logs)
	}
	if !strings.Contains(logs, "github api response") {
		t.Fatalf("expected response log line, got: %q", logs)
	}
}

func TestNewClientAppAuthBadKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(keyPath, []byte("not a pem key"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	_, err := NewClient("", WithAppAuth(1234, 5678, keyPath))
	if err == nil {
		t.Fatal("expected error for malformed private key")
	}
	if !strings.Contains(err.Error(), "github app auth") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClientAppAuthMissingKeyFile(t *testing.T) {
	_, err := NewClient("", WithAppAuth(1234, 5678, filepath.Join(t.TempDir(), "absent.pem")))
	if err == nil {
		t.Fatal("expected error for missing private key file")
	}
}
