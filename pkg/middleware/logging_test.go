package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedRequest(t *testing.T, path, headerID string) (*bytes.Buffer, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	handler := RequestLogging(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if headerID != "" {
		req.Header.Set("X-Correlation-ID", headerID)
	}
	handler.ServeHTTP(rec, req)
	return &buf, rec
}

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	buf, rec := loggedRequest(t, "/api/v1/search/product/schema", "")

	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, rec.Header().Get("X-Correlation-ID"), out["correlation_id"])
}

func TestRequestLogging_PreservesCallerCorrelationID(t *testing.T) {
	buf, rec := loggedRequest(t, "/api/v1/search/product/schema", "corr-from-catalog")

	assert.Equal(t, "corr-from-catalog", rec.Header().Get("X-Correlation-ID"))
	assert.Contains(t, buf.String(), "corr-from-catalog")
}

func TestRequestLogging_RecordsStatusAndSize(t *testing.T) {
	buf, _ := loggedRequest(t, "/api/v1/search/product/schema", "")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, float64(http.StatusOK), out["status"])
	assert.Equal(t, float64(len(`{"data":{}}`)), out["bytes"])
	assert.Equal(t, http.MethodGet, out["method"])
}

func TestRequestLogging_SkipsHealthAndMetrics(t *testing.T) {
	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		buf, rec := loggedRequest(t, path, "")

		assert.Zero(t, buf.Len(), "no log line expected for %s", path)
		assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"), "correlation still assigned on %s", path)
	}
}

func TestResponseWriter_FlushDelegates(t *testing.T) {
	inner := &flushRecorder{ResponseWriter: httptest.NewRecorder()}
	rw := &responseWriter{ResponseWriter: inner}

	rw.Flush()

	assert.True(t, inner.flushed)
}

func TestResponseWriter_HijackWithoutHijacker(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}

	_, _, err := rw.Hijack()

	assert.ErrorIs(t, err, http.ErrNotSupported)
}
