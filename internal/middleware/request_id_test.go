package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		wantReused bool
	}{
		{"missing header generates uuid", "", false},
		{"valid header reused", "req-123", true},
		{"header with spaces replaced", "req 123", false},
		{"overlong header replaced", strings.Repeat("a", maxCorrelationIDLength+1), false},
		{"control characters replaced", "req\n123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Header().Get(RequestIDHeader) != seen {
				t.Errorf("response header %q != context value %q", rec.Header().Get(RequestIDHeader), seen)
			}
			if tt.wantReused {
				if seen != tt.header {
					t.Errorf("request id = %q, want %q", seen, tt.header)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Errorf("request id %q is not a uuid", seen)
			}
		})
	}
}

func TestRequestID_TracePropagation(t *testing.T) {
	t.Parallel()

	var trace string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace = GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(TraceIDHeader, "trace-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if trace != "trace-abc" || rec.Header().Get(TraceIDHeader) != "trace-abc" {
		t.Errorf("trace id = %q, header = %q", trace, rec.Header().Get(TraceIDHeader))
	}
}
