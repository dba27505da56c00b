package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"crash-map/internal/config"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

func serve(h http.Handler) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/select", nil))
	return rec.Code
}

func TestTokenBucket(t *testing.T) {
	sec := int64(100)
	tb := NewTokenBucket(2)
	tb.now = func() int64 { return sec }
	tb.lastSec = sec
	h := Limit(tb, ok)

	assert.Equal(t, http.StatusNoContent, serve(h))
	assert.Equal(t, http.StatusNoContent, serve(h))
	assert.Equal(t, http.StatusTooManyRequests, serve(h))

	sec++
	assert.Equal(t, http.StatusNoContent, serve(h), "refilled on the next second")
}

func TestWrapDisabled(t *testing.T) {
	h := Wrap(ok, config.RateLimitConfig{Enabled: false, QPS: 0})
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusNoContent, serve(h))
	}
}
