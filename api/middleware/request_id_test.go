package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDSelection(t *testing.T) {
	tests := []struct {
		name        string
		requestID   string
		correlation string
		want        string
	}{
		{name: "request id wins", requestID: "req-1", correlation: "corr-1", want: "req-1"},
		{name: "correlation fallback", correlation: "corr-1", want: "corr-1"},
		{name: "control chars rejected", requestID: "bad\nid", correlation: "corr-2", want: "corr-2"},
		{name: "too long minted", requestID: strings.Repeat("a", maxRequestIDLen+1)},
		{name: "missing minted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = r.Header.Get(requestIDHeader)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.requestID != "" {
				req.Header.Set(requestIDHeader, tt.requestID)
			}
			if tt.correlation != "" {
				req.Header.Set(correlationHeader, tt.correlation)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(requestIDHeader)
			assert.Equal(t, got, seen)
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
				return
			}
			_, err := uuid.Parse(got)
			assert.NoError(t, err, "expected minted uuid, got %q", got)
		})
	}
}
