package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/govlk/citizenport/internal/log"
)

func TestRateLimiter_BurstExhaustion(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, rl.allow("10.0.0.1"), "request beyond burst")
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1, 1)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "second IP has its own bucket")
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1, 1)
	handler := rateLimitMiddleware(rl, false, log.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		xRealIP    string
		xff        string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.7:61234",
			want:       "203.0.113.7",
		},
		{
			name:       "proxy headers ignored without trust",
			remoteAddr: "10.0.0.1:1000",
			xRealIP:    "203.0.113.7",
			want:       "10.0.0.1",
		},
		{
			name:       "x-real-ip wins when trusted",
			remoteAddr: "10.0.0.1:1000",
			xRealIP:    "203.0.113.7",
			xff:        "198.51.100.2",
			trustProxy: true,
			want:       "203.0.113.7",
		},
		{
			name:       "first forwarded hop",
			remoteAddr: "10.0.0.1:1000",
			xff:        "198.51.100.2, 10.0.0.1",
			trustProxy: true,
			want:       "198.51.100.2",
		},
		{
			name:       "garbage header falls back to remote addr",
			remoteAddr: "10.0.0.1:1000",
			xRealIP:    "not-an-ip",
			xff:        "also garbage",
			trustProxy: true,
			want:       "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}

			assert.Equal(t, tt.want, clientIP(r, tt.trustProxy))
		})
	}
}
