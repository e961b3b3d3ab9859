// Package middleware provides the HTTP middleware stack for the API.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/allinbuy/api/pkg/response"
)

// visitor tracks a fixed-window request count for one client IP.
type visitor struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// allow counts one request and reports whether it stays within max. It
// returns the seconds left in the window so callers can set Retry-After.
func (v *visitor) allow(max int, window time.Duration) (bool, int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now()
	if now.After(v.resetAt) {
		v.count = 0
		v.resetAt = now.Add(window)
	}

	v.count++
	return v.count <= max, int(time.Until(v.resetAt).Seconds()) + 1
}

var (
	visitorsMu sync.Mutex
	visitors   = map[string]*visitor{}
)

func init() {
	// Evict visitors whose window has expired so long-running servers don't
	// accumulate one entry per client IP forever.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			visitorsMu.Lock()
			for ip, v := range visitors {
				v.mu.Lock()
				expired := now.After(v.resetAt)
				v.mu.Unlock()
				if expired {
					delete(visitors, ip)
				}
			}
			visitorsMu.Unlock()
		}
	}()
}

func getVisitor(ip string, window time.Duration) *visitor {
	visitorsMu.Lock()
	defer visitorsMu.Unlock()

	if v, ok := visitors[ip]; ok {
		return v
	}

	v := &visitor{resetAt: time.Now().Add(window)}
	visitors[ip] = v
	return v
}

// clientIP prefers the first X-Forwarded-For hop (the storefront sits
// behind a reverse proxy in production) and falls back to RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit returns a middleware that limits each IP to max requests per
// window. The public catalogue is the hot path, so the limit is applied
// globally rather than per route.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryIn := getVisitor(clientIP(r), window).allow(max, window)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryIn))
				response.Error(w, http.StatusTooManyRequests, "Demasiadas solicitudes")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
