package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/config"
	"clipsync/internal/app/client/syncerr"
)

func newTestHTTPClient(serverURL string) *httpClient {
	return NewHTTPClient(&config.Config{ServerURL: serverURL}, slog.Default())
}

func TestHTTPClient_LinkRedeemMapsToGenericCodeError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unknown or consumed code", http.StatusNotFound},
		{"rate limited", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/link/redeem", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			h := newTestHTTPClient(srv.URL)
			_, _, err := h.LinkRedeem(context.Background(), "a1b2")
			assert.ErrorIs(t, err, syncerr.ErrCodeInvalid)
		})
	}
}

func TestHTTPClient_UnauthorizedIsErrAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	h := newTestHTTPClient(srv.URL)
	_, err := h.GetSlots(context.Background())
	assert.ErrorIs(t, err, syncerr.ErrAuth)
}
