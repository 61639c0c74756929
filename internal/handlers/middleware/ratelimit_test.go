package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	request := func(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	t.Run("burst then limited", func(t *testing.T) {
		rl := NewRateLimiter(3)
		h := rl.Middleware(ok)

		for i := range 3 {
			require.Equal(t, http.StatusNoContent, request(h, "10.0.0.1:1234").Code, "request %d should pass", i)
		}

		w := request(h, "10.0.0.1:5555")
		require.Equal(t, http.StatusTooManyRequests, w.Code, "same ip on another port is the same client")
		require.NotEmpty(t, w.Header().Get("Retry-After"))
		require.JSONEq(t, `{
			"error": "service_error",
			"message": "Too many requests. Please try again later"
		}`, w.Body.String())
	})

	t.Run("clients limited separately", func(t *testing.T) {
		rl := NewRateLimiter(1)
		h := rl.Middleware(ok)

		require.Equal(t, http.StatusNoContent, request(h, "10.0.0.1:1").Code)
		require.Equal(t, http.StatusTooManyRequests, request(h, "10.0.0.1:1").Code)
		require.Equal(t, http.StatusNoContent, request(h, "10.0.0.2:1").Code)
	})

	t.Run("tokens come back with time", func(t *testing.T) {
		now := time.Now()
		rl := NewRateLimiter(60)
		rl.now = func() time.Time { return now }
		h := rl.Middleware(ok)

		for range 60 {
			request(h, "10.0.0.1:1")
		}
		require.Equal(t, http.StatusTooManyRequests, request(h, "10.0.0.1:1").Code)

		now = now.Add(time.Second)
		require.Equal(t, http.StatusNoContent, request(h, "10.0.0.1:1").Code, "one token per second for 60 per minute")
	})

	t.Run("retry after rounds up", func(t *testing.T) {
		now := time.Now()
		rl := NewRateLimiter(1)
		rl.now = func() time.Time { return now }
		h := rl.Middleware(ok)

		require.Equal(t, http.StatusNoContent, request(h, "10.0.0.1:1").Code)

		// Next token is 59.5s away
		now = now.Add(500 * time.Millisecond)
		w := request(h, "10.0.0.1:1")

		require.Equal(t, http.StatusTooManyRequests, w.Code)
		require.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("idle visitors forgotten", func(t *testing.T) {
		now := time.Now()
		rl := NewRateLimiter(1)
		rl.now = func() time.Time { return now }
		h := rl.Middleware(ok)

		request(h, "10.0.0.1:1")
		require.Len(t, rl.visitors, 1)

		now = now.Add(limiterIdleTTL + time.Second)
		request(h, "10.0.0.2:1")

		require.Len(t, rl.visitors, 1, "idle visitor has to be removed")
		require.Contains(t, rl.visitors, "10.0.0.2")
	})
}
