package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenBucket(t *testing.T) {
	now := time.Unix(1000, 0)
	tb := NewTokenBucket(2)
	tb.now = func() time.Time { return now }
	tb.lastSec = now.Unix()

	h := tb.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	codes := func() int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locate", nil))
		return rec.Code
	}
	require.Equal(t, http.StatusNoContent, codes())
	require.Equal(t, http.StatusNoContent, codes())
	require.Equal(t, http.StatusTooManyRequests, codes())

	now = now.Add(time.Second)
	require.Equal(t, http.StatusNoContent, codes())
}

func TestWrapDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := Wrap(next)
	for i := 0; i < 500; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
