package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// clusterCIDRs mirrors the PPROF_ALLOWED_CIDRS default.
var clusterCIDRs = []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "127.0.0.0/8", "::1/128"}

func allowlisted(cidrs []string) http.Handler {
	mw := IPAllowlist(cidrs, discardLogger())
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func getFrom(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = remoteAddr
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIPAllowlist_ClusterRanges(t *testing.T) {
	handler := allowlisted(clusterCIDRs)

	tests := []struct {
		name   string
		remote string
		status int
	}{
		{"pod network", "10.42.0.7:52110", http.StatusOK},
		{"node network", "172.16.5.5:52110", http.StatusOK},
		{"lan", "192.168.1.1:52110", http.StatusOK},
		{"loopback", "127.0.0.1:52110", http.StatusOK},
		{"ipv6 loopback", "[::1]:52110", http.StatusOK},
		{"public internet", "8.8.8.8:52110", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, getFrom(handler, tt.remote).Code)
		})
	}
}

func TestIPAllowlist_DeniedBodyIsErrorEnvelope(t *testing.T) {
	rec := getFrom(allowlisted([]string{"10.0.0.0/8"}), "203.0.113.9:40000")

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "FORBIDDEN", body["error"]["code"])
}

func TestIPAllowlist_InvalidCIDRDropped(t *testing.T) {
	handler := allowlisted([]string{"not-a-cidr", "127.0.0.0/8"})

	assert.Equal(t, http.StatusOK, getFrom(handler, "127.0.0.1:40000").Code)
}

func TestIPAllowlist_RemoteAddrWithoutPort(t *testing.T) {
	handler := allowlisted([]string{"127.0.0.0/8"})

	assert.Equal(t, http.StatusOK, getFrom(handler, "127.0.0.1").Code)
}

func TestIPAllowlist_EmptyListDeniesAll(t *testing.T) {
	handler := allowlisted(nil)

	assert.Equal(t, http.StatusForbidden, getFrom(handler, "127.0.0.1:40000").Code)
}

func TestIPAllowlist_UnparsableRemoteDenied(t *testing.T) {
	handler := allowlisted(clusterCIDRs)

	assert.Equal(t, http.StatusForbidden, getFrom(handler, "not-an-address").Code)
}

func pprofRouter(cidrs []string) *chi.Mux {
	r := chi.NewRouter()
	RegisterPprof(r, cidrs, discardLogger())
	return r
}

func TestRegisterPprof_IndexServed(t *testing.T) {
	rec := getFrom(pprofRouter([]string{"127.0.0.0/8"}), "127.0.0.1:40000")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pprof")
}

func TestRegisterPprof_DeniedOutsideAllowlist(t *testing.T) {
	rec := getFrom(pprofRouter([]string{"10.0.0.0/8"}), "192.168.1.1:40000")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegisterPprof_ProfileRoutes(t *testing.T) {
	r := pprofRouter([]string{"127.0.0.0/8"})

	for _, path := range []string{"/debug/pprof/cmdline", "/debug/pprof/symbol", "/debug/pprof/heap"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "127.0.0.1:40000"
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
