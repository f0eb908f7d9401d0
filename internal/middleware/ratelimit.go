package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter считает запросы каждого IP в окне фиксированной длины.
// Окна, срок которых вышел, выбрасываются не реже одного раза за период.
type RateLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*window
	nextSweep time.Time
}

type RateLimitOption func(*RateLimiter)

func WithRateLimitClock(now func() time.Time) RateLimitOption {
	return func(l *RateLimiter) { l.now = now }
}

func WithRateLimitPeriod(period time.Duration) RateLimitOption {
	return func(l *RateLimiter) { l.period = period }
}

func NewRateLimiter(limit int, options ...RateLimitOption) *RateLimiter {
	l := &RateLimiter{
		limit:   limit,
		period:  time.Minute,
		now:     time.Now,
		clients: make(map[string]*window),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// RateLimit ограничивает число запросов с одного IP в минуту.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return NewRateLimiter(rpm).Middleware
}

// Tracked: сколько клиентов сейчас учитывается.
func (l *RateLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// take учитывает запрос и возвращает остаток и конец окна; ok=false, если лимит исчерпан.
func (l *RateLimiter) take(client string) (remaining int, resetAt time.Time, ok bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) {
		for key, w := range l.clients {
			if now.After(w.resetAt) {
				delete(l.clients, key)
			}
		}
		l.nextSweep = now.Add(l.period)
	}

	w, exists := l.clients[client]
	switch {
	case !exists || now.After(w.resetAt):
		w = &window{resetAt: now.Add(l.period)}
		l.clients[client] = w
	case w.count >= l.limit:
		return 0, w.resetAt, false
	}
	w.count++
	return max(l.limit-w.count, 0), w.resetAt, true
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining, resetAt, ok := l.take(clientIP(r))
		if !ok {
			retryAfter := int(resetAt.Sub(l.now()).Seconds())
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"success":     false,
				"message":     "Слишком много запросов. Попробуйте позже.",
				"errors":      []string{"rate_limit_exceeded"},
				"retry_after": retryAfter,
				"request_id":  GetRequestID(r.Context()),
			})
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
