package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/everyio/tasktracker/internal/domain"
	context_ "github.com/everyio/tasktracker/internal/infra/context"
	"github.com/everyio/tasktracker/internal/infra/logging"
	http_ "github.com/everyio/tasktracker/internal/infra/transport/http"
)

type mockResolver struct {
	users map[string]*domain.User
	calls int
}

func (m *mockResolver) ResolveUser(_ context.Context, token string) *domain.User {
	m.calls++

	return m.users[token]
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
		wantOK bool
	}{
		{header: "Bearer abc", want: "abc", wantOK: true},
		{header: "bearer abc", want: "abc", wantOK: true},
		{header: "  Bearer   abc  ", want: "abc", wantOK: true},
		{header: "", wantOK: false},
		{header: "Bearer", wantOK: false},
		{header: "Bearer ", wantOK: false},
		{header: "Basic dXNlcjpwYXNz", wantOK: false},
		{header: "abc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()

			got, ok := http_.BearerToken(tt.header)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("BearerToken(%q) = %q, %v, want %q, %v", tt.header, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAuthenticatingMiddleware(t *testing.T) {
	t.Parallel()

	alice := &domain.User{ID: "alice-id", Username: "alice"}

	tests := []struct {
		name      string
		header    string
		wantUser  *domain.User
		wantCalls int
	}{
		{name: "valid token", header: "Bearer good", wantUser: alice, wantCalls: 1},
		{name: "unknown token", header: "Bearer bad", wantCalls: 1},
		{name: "no header"},
		{name: "other scheme", header: "Basic good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolver := &mockResolver{users: map[string]*domain.User{"good": alice}}

			var (
				called  bool
				gotUser *domain.User
			)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUser = context_.UserFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set(http_.AuthorizationHeader, tt.header)
			}

			rec := httptest.NewRecorder()
			http_.AuthenticatingMiddleware(next, resolver, logging.NewNopLogger()).ServeHTTP(rec, req)

			if !called || rec.Code != http.StatusNoContent {
				t.Fatalf("middleware rejected request: called = %v, status = %d", called, rec.Code)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %v, want %v", gotUser, tt.wantUser)
			}
			if resolver.calls != tt.wantCalls {
				t.Errorf("resolver calls = %d, want %d", resolver.calls, tt.wantCalls)
			}
		})
	}
}

func TestRescueingMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/taskAll", nil)

	http_.RescueingMiddleware(next, logging.NewNopLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	var gotTraceID string

	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotTraceID, _ = context_.TraceIDFromContext(r.Context())
	})

	handler := http_.TracingMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(http_.TraceIDHeader, "client-trace")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotTraceID != "client-trace" {
		t.Errorf("trace id = %q, want client-trace", gotTraceID)
	}
	if rec.Header().Get(http_.TraceIDHeader) != "client-trace" {
		t.Errorf("response trace id = %q", rec.Header().Get(http_.TraceIDHeader))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if gotTraceID == "" || gotTraceID == "client-trace" {
		t.Errorf("generated trace id = %q", gotTraceID)
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- http_.ListenAndServe(ctx, http.NotFoundHandler(), http_.HTTPTransportConfig{
			ServerAddr:      "127.0.0.1:0",
			ShutdownTimeout: time.Second,
		})
	}()

	cancel()

	if err := <-done; err != nil {
		t.Errorf("ListenAndServe() error = %v, want nil after cancel", err)
	}
}
