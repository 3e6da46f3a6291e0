package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generates when missing", "", false},
		{"keeps client id", "abc-123", true},
		{"replaces oversized id", strings.Repeat("x", 200), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tc.incoming != "" {
				req.Header.Set(RequestIDHeader, tc.incoming)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Header().Get(RequestIDHeader) != seen {
				t.Errorf("Expected response header %q to match request %q", rr.Header().Get(RequestIDHeader), seen)
			}
			if tc.keep {
				if seen != tc.incoming {
					t.Errorf("Expected %q, got %q", tc.incoming, seen)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Errorf("Expected generated uuid, got %q", seen)
			}
		})
	}
}
