package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"todoTracker/internal/logger"

	"go.uber.org/zap"
)

type clientInfo struct {
	count   int
	resetAt time.Time
}

// limiter counts requests per client in fixed windows.
// Expired clients are swept at most once per window so the map stays bounded by active clients.
type limiter struct {
	rpm    int
	window time.Duration
	now    func() time.Time

	mtx       sync.Mutex
	clients   map[string]*clientInfo
	nextSweep time.Time
}

func newLimiter(rpm int, window time.Duration, now func() time.Time) *limiter {
	return &limiter{
		rpm:     rpm,
		window:  window,
		now:     now,
		clients: make(map[string]*clientInfo),
	}
}

// allow records a request from ip. When it is over the limit, ok is false and
// resetAt tells when the window reopens.
func (l *limiter) allow(ip string) (ok bool, remaining int, resetAt time.Time, current time.Time) {
	current = l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.sweep(current)

	info, exists := l.clients[ip]
	switch {
	case !exists:
		info = &clientInfo{count: 1, resetAt: current.Add(l.window)}
		l.clients[ip] = info
	case current.After(info.resetAt):
		info.count = 1
		info.resetAt = current.Add(l.window)
	case info.count >= l.rpm:
		return false, 0, info.resetAt, current
	default:
		info.count++
	}

	remaining = l.rpm - info.count
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, info.resetAt, current
}

// sweep drops clients whose window has passed. Caller holds mtx.
func (l *limiter) sweep(current time.Time) {
	if current.Before(l.nextSweep) {
		return
	}
	for ip, info := range l.clients {
		if current.After(info.resetAt) {
			delete(l.clients, ip)
		}
	}
	l.nextSweep = current.Add(l.window)
}

func (l *limiter) size() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.clients)
}

// RateLimit allows rpm requests per client IP in a fixed one-minute window.
// A non-positive rpm disables the limit.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return rateLimit(newLimiter(rpm, time.Minute, time.Now))
}

func rateLimit(l *limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l.rpm <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIp(r)

			ok, remaining, resetAt, current := l.allow(ip)
			if !ok {
				logger.Warn("HTTP: rate limit exceeded",
					zap.String("client_ip", ip),
					zap.String("request_id", GetRequestID(r.Context())))

				w.Header().Set("Content-Type", "application/vnd.api+json")
				w.Header().Set("Retry-After", strconv.Itoa(int(resetAt.Sub(current).Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"errors": []map[string]string{{
						"code":  strconv.Itoa(http.StatusTooManyRequests),
						"title": "Too many requests",
					}},
				})
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
