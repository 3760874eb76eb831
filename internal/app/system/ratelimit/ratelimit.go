// internal/app/system/ratelimit/ratelimit.go
//
// Package ratelimit throttles login attempts with fixed per-key windows.
// Limits are keyed two ways: per client IP and per account email. The IP
// window is deliberately loose because tournament venues put whole rooms
// of players behind one NAT address; the email window is the tight one,
// since it is what a credential-stuffing run actually burns.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// One shared venue address covers many players signing in at once.
	ipLimit  = 30
	ipWindow = time.Minute

	// Per-account guessing budget.
	emailLimit  = 5
	emailWindow = 10 * time.Minute
)

// Limiter counts events per key within a fixed window. Safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a Limiter allowing limit events per duration for each key.
// A background sweep drops expired windows so idle keys do not accumulate.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
	}
	go l.sweep(2 * duration)
	return l
}

// Allow records an event for the key and reports whether it fits in the
// current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset forgets the key's window. Called after a successful sign-in so a
// typo-prone user does not stay throttled.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *Limiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP resolves the client address, preferring the proxy headers the
// deployment sets (X-Forwarded-For first entry, then X-Real-IP) and
// falling back to RemoteAddr with the port stripped.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter combines the IP and email limiters for the sign-in form.
type LoginLimiter struct {
	byIP    *Limiter
	byEmail *Limiter
}

// NewLoginLimiter builds a LoginLimiter with the package's limits.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		byIP:    New(ipLimit, ipWindow),
		byEmail: New(emailLimit, emailWindow),
	}
}

// Check records the attempt and reports whether it may proceed, with a
// user-facing reason when it may not.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "Too many sign-in attempts from this address. Please wait a minute."
	}
	if email != "" {
		if !ll.byEmail.Allow(emailKey(email)) {
			return false, "Too many sign-in attempts for this account. Please try again later."
		}
	}
	return true, ""
}

// ResetEmail clears the account's window after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if email != "" {
		ll.byEmail.Reset(emailKey(email))
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
