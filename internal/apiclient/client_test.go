package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/oauth2"
)

type memTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared bool
}

func (m *memTokens) Token(context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &oauth2.Token{AccessToken: m.access, RefreshToken: m.refresh}, nil
}

func (m *memTokens) SetAccessToken(_ context.Context, access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	return nil
}

func (m *memTokens) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh, m.cleared = "", "", true
	return nil
}

func newTestClient(t *testing.T, srv *httptest.Server, tokens TokenStore, onFail func(string)) (*Client, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	client, err := New(Config{BaseURL: srv.URL + "/", Tokens: tokens, OnAuthFailure: onFail, Registerer: reg})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client, reg
}

func TestClientSendsBearerAndDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"total": 24})
	}))
	defer srv.Close()

	client, reg := newTestClient(t, srv, &memTokens{access: "access-1"}, nil)
	var out struct {
		Total int `json:"total"`
	}
	if err := client.Get(context.Background(), EndpointStats, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.Total != 24 {
		t.Fatalf("unexpected body %#v", out)
	}
	if got := testutil.ToFloat64(client.metrics.requests.WithLabelValues("/stats/", "200")); got != 1 {
		t.Fatalf("expected 1 counted request, got %v", got)
	}
	if n, _ := testutil.GatherAndCount(reg, "acta_api_requests_total"); n != 1 {
		t.Fatalf("expected one request series, got %d", n)
	}
}

func TestClientRefreshesOnceAndRetries(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EndpointRefresh:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["refresh"] != "refresh-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"access": "access-2"})
		case "/tasks/42/":
			mu.Lock()
			attempts++
			mu.Unlock()
			if r.Header.Get("Authorization") != "Bearer access-2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	tokens := &memTokens{access: "stale", refresh: "refresh-1"}
	client, _ := newTestClient(t, srv, tokens, func(string) { t.Error("unexpected auth failure") })
	if err := client.Delete(context.Background(), TaskDetail("42")); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected original request plus one retry, got %d", attempts)
	}
	if tokens.access != "access-2" {
		t.Fatalf("expected refreshed access token stored, got %q", tokens.access)
	}
	if got := testutil.ToFloat64(client.metrics.refreshes.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1 successful refresh, got %v", got)
	}
	if got := testutil.ToFloat64(client.metrics.requests.WithLabelValues("/tasks/{id}/", "401")); got != 1 {
		t.Fatalf("expected collapsed endpoint label, got %v", got)
	}
}

func TestClientDoesNotRefreshTwice(t *testing.T) {
	refreshes := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == EndpointRefresh {
			refreshes++
			_ = json.NewEncoder(w).Encode(map[string]string{"access": "still-bad"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, &memTokens{access: "a", refresh: "r"}, nil)
	err := client.Get(context.Background(), EndpointProfile, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if refreshes != 1 {
		t.Fatalf("expected exactly one refresh, got %d", refreshes)
	}
}

func TestClientClearsTokensWhenRefreshFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &memTokens{access: "a", refresh: "expired"}
	var redirect string
	client, _ := newTestClient(t, srv, tokens, func(path string) { redirect = path })

	err := client.Post(context.Background(), EndpointTasks, map[string]string{"title": "x"}, nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized || statusErr.Path != EndpointTasks {
		t.Fatalf("expected original 401 error, got %v", err)
	}
	if !tokens.cleared {
		t.Fatal("expected tokens cleared")
	}
	if redirect != LoginPath {
		t.Fatalf("expected redirect to %q, got %q", LoginPath, redirect)
	}
	if got := testutil.ToFloat64(client.metrics.refreshes.WithLabelValues("failure")); got != 1 {
		t.Fatalf("expected 1 failed refresh, got %v", got)
	}
}

func TestClientWithoutRefreshTokenReturnsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == EndpointRefresh {
			t.Error("refresh must not be attempted without a refresh token")
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &memTokens{access: "a"}
	client, _ := newTestClient(t, srv, tokens, func(string) { t.Error("unexpected auth failure") })
	if err := client.Get(context.Background(), EndpointTasks, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if tokens.cleared {
		t.Fatal("expected tokens kept")
	}
}

func TestNewDefaultsAndSharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(Config{Registerer: reg})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if first.BaseURL() != DefaultBaseURL {
		t.Fatalf("unexpected base url %q", first.BaseURL())
	}
	if _, err := New(Config{Registerer: reg}); err != nil {
		t.Fatalf("second New() on shared registerer error = %v", err)
	}
	if TaskDetail("a b") != "/tasks/a%20b/" {
		t.Fatalf("unexpected task detail path %q", TaskDetail("a b"))
	}
}
