package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoggingEchoesSuppliedRequestID(t *testing.T) {
	handler := Logging(zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rfqs", nil)
	req.Header.Set("X-Request-ID", "frontend-trace-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "frontend-trace-42", rec.Header().Get("X-Request-ID"))
}

func TestLoggingGeneratesRequestID(t *testing.T) {
	handler := Logging(zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
