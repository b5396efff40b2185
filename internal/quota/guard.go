// Package quota gates anonymous generations with a counter carried in a
// client-held cookie. A client that drops the cookie resets its own count;
// the guard is a deterrent, not a security boundary.
package quota

import (
	"net/http"
	"strconv"
	"time"
)

const (
	DefaultLimit      = 3
	DefaultWindow     = 24 * time.Hour
	DefaultCookieName = "guest_generations"
)

// Decision is the outcome of checking a presented count against the limit.
type Decision struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

type Options struct {
	Limit        int
	Window       time.Duration
	CookieName   string
	CookieSecure bool
}

// Guard evaluates and re-issues the guest generation counter.
type Guard struct {
	limit  int
	window time.Duration
	cookie string
	secure bool
}

func NewGuard(opts Options) *Guard {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	return &Guard{
		limit:  opts.Limit,
		window: opts.Window,
		cookie: opts.CookieName,
		secure: opts.CookieSecure,
	}
}

func (g *Guard) Limit() int { return g.limit }

// Check reports whether one more generation is allowed for count, and how
// many would remain after it.
func (g *Guard) Check(count int) Decision {
	if count < 0 {
		count = 0
	}
	allowed := count < g.limit
	remaining := g.limit - count
	if allowed {
		remaining--
	}
	return Decision{Allowed: allowed, Remaining: max(remaining, 0)}
}

// Read returns the count presented by the client. A missing, malformed or
// negative cookie counts as zero.
func (g *Guard) Read(r *http.Request) int {
	c, err := r.Cookie(g.cookie)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(c.Value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Write hands count back to the client with a fresh window.
func (g *Guard) Write(w http.ResponseWriter, count int) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookie,
		Value:    strconv.Itoa(max(count, 0)),
		Path:     "/",
		MaxAge:   int(g.window.Seconds()),
		Expires:  time.Now().Add(g.window),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
