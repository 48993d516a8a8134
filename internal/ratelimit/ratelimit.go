package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nandasafiq/hospital-management/internal"
	"github.com/nandasafiq/hospital-management/internal/core/slidingwindow"
)

// Class is the coarse endpoint category that selects a limit policy.
type Class string

const (
	ClassLogin   Class = "login"
	ClassAPI     Class = "api"
	ClassDefault Class = "default"
)

// Limit is a count threshold over a trailing window.
type Limit struct {
	Count  int
	Window time.Duration
}

// ParseLimit parses the "N per minute|hour|day" strings from configuration.
func ParseLimit(s string) (Limit, error) {
	parts := strings.SplitN(strings.TrimSpace(s), " per ", 2)
	if len(parts) != 2 {
		return Limit{}, fmt.Errorf("invalid rate limit %q: want \"N per minute|hour|day\"", s)
	}

	count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || count < 1 {
		return Limit{}, fmt.Errorf("invalid rate limit count in %q", s)
	}

	var window time.Duration
	switch strings.TrimSpace(parts[1]) {
	case "minute":
		window = time.Minute
	case "hour":
		window = time.Hour
	case "day":
		window = 24 * time.Hour
	default:
		return Limit{}, fmt.Errorf("invalid rate limit period in %q", s)
	}

	return Limit{Count: count, Window: window}, nil
}

// Limiter applies a sliding-window request count per (source address,
// endpoint class). A request inside the limit is recorded and allowed; one at
// the limit is rejected and not recorded, so rejected requests do not extend
// the window.
type Limiter struct {
	enabled bool
	limits  map[Class]Limit
	store   slidingwindow.Store
	now     func() time.Time
}

func New(cfg internal.RateLimitConfig, store slidingwindow.Store) (*Limiter, error) {
	if store == nil {
		store = slidingwindow.NewMemoryStore()
	}

	limits := make(map[Class]Limit, 3)
	for class, raw := range map[Class]string{
		ClassDefault: cfg.Default,
		ClassLogin:   cfg.Login,
		ClassAPI:     cfg.API,
	} {
		limit, err := ParseLimit(raw)
		if err != nil {
			return nil, fmt.Errorf("rate limit for class %s: %w", class, err)
		}
		limits[class] = limit
	}

	return &Limiter{
		enabled: cfg.Enabled,
		limits:  limits,
		store:   store,
		now:     time.Now,
	}, nil
}

// WithClock replaces the clock, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow reports whether a request from address for the given class may
// proceed. When limiting is disabled every request passes.
func (l *Limiter) Allow(address string, class Class) bool {
	if !l.enabled {
		return true
	}

	limit, ok := l.limits[class]
	if !ok {
		limit = l.limits[ClassDefault]
	}

	key := address + ":" + string(class)
	return l.store.TryRecord(key, l.now(), limit.Window, limit.Count)
}

// ClassifyPath maps a request path onto an endpoint class.
func ClassifyPath(path string) Class {
	switch {
	case strings.HasSuffix(path, "/auth/login"):
		return ClassLogin
	case strings.HasPrefix(path, "/api/"):
		return ClassAPI
	default:
		return ClassDefault
	}
}
