package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))

	req := httptest.NewRequest(method, "/api/v1/search/product/query", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS_DevMode_AllowsWildcard(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"}

	rec := corsRequest(cfg, http.MethodPost, "https://anywhere.example")

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_DevMode_NoOriginStillWildcard(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"}

	rec := corsRequest(cfg, http.MethodGet, "")

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProdMode_AllowedOrigins(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com", "https://merch.example.com"},
		Environment:    "production",
	}

	for _, origin := range cfg.AllowedOrigins {
		rec := corsRequest(cfg, http.MethodGet, origin)

		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	}
}

func TestCORS_ProdMode_RejectedOrigin(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
		Environment:    "production",
	}

	rec := corsRequest(cfg, http.MethodGet, "https://evil.example")

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code, "rejection only withholds the header")
}

func TestCORS_ProdMode_NoOrigin(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
		Environment:    "production",
	}

	rec := corsRequest(cfg, http.MethodGet, "")

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProdMode_ExplicitWildcardAllowsAll(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com", "*"},
		Environment:    "production",
	}

	rec := corsRequest(cfg, http.MethodGet, "https://anywhere.example")

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightOptions_Returns204(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"}

	rec := corsRequest(cfg, http.MethodOptions, "https://shop.example.com")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String(), "preflight must not reach the handler")
}

func TestCORS_AllowedHeaders_AreSet(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"Accept", "Authorization", "X-Custom"},
		Environment:    "development",
	}

	rec := corsRequest(cfg, http.MethodGet, "")

	assert.Equal(t, "Accept, Authorization, X-Custom", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_ExposedHeaders(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"*"},
		ExposedHeaders: []string{"X-Correlation-ID", "X-Request-Duration"},
		Environment:    "development",
	}

	rec := corsRequest(cfg, http.MethodGet, "")

	assert.Equal(t, "X-Correlation-ID, X-Request-Duration", rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_MaxAge(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 7200, Environment: "development"}

	rec := corsRequest(cfg, http.MethodGet, "")

	assert.Equal(t, "7200", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_AllowCredentials(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://shop.example.com"},
		AllowCredentials: true,
		Environment:      "production",
	}

	rec := corsRequest(cfg, http.MethodGet, "https://shop.example.com")

	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_DefaultMethods(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"}

	rec := corsRequest(cfg, http.MethodGet, "")

	assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_DefaultConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.AllowedMethods, "GET")
	assert.Contains(t, cfg.AllowedMethods, "POST")
	assert.Contains(t, cfg.AllowedMethods, "DELETE")
	assert.NotContains(t, cfg.AllowedMethods, "PUT")
	assert.Equal(t, 3600, cfg.MaxAge)
	assert.Equal(t, "development", cfg.Environment)
}
