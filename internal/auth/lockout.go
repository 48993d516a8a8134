package auth

import (
	"log/slog"
	"time"

	"github.com/nandasafiq/hospital-management/internal"
	"github.com/nandasafiq/hospital-management/internal/core/slidingwindow"
)

// FailedAttemptTracker counts failed logins per (username, source address)
// inside a sliding lockout window. The key includes the address so one
// compromised IP cannot lock out every user, at the cost of weaker protection
// against credential stuffing spread over many addresses.
//
// Pruning is lazy, on access; there is no background sweep.
type FailedAttemptTracker struct {
	store     slidingwindow.Store
	threshold int
	window    time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewFailedAttemptTracker(cfg internal.SecurityConfig, store slidingwindow.Store, logger *slog.Logger) *FailedAttemptTracker {
	if store == nil {
		store = slidingwindow.NewMemoryStore()
	}
	return &FailedAttemptTracker{
		store:     store,
		threshold: cfg.AccountLockoutThreshold,
		window:    cfg.AccountLockoutDuration,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock, for tests that advance time past the window.
func (t *FailedAttemptTracker) WithClock(now func() time.Time) *FailedAttemptTracker {
	t.now = now
	return t
}

func attemptKey(username, address string) string {
	return username + ":" + address
}

// RecordFailure registers a failed attempt and reports whether the account is
// now at or past the lockout threshold for this key.
func (t *FailedAttemptTracker) RecordFailure(username, address string) bool {
	count := t.store.RecordAndCount(attemptKey(username, address), t.now(), t.window)

	t.logger.Warn("failed login attempt",
		"username", username,
		"ip_address", address,
		"attempts_in_window", count)

	if count >= t.threshold {
		t.logger.Warn("account locked after repeated failed attempts",
			"username", username,
			"ip_address", address)
		return true
	}
	return false
}

// IsLocked reports whether the key currently sits at or past the threshold,
// without recording an attempt.
func (t *FailedAttemptTracker) IsLocked(username, address string) bool {
	count := t.store.Count(attemptKey(username, address), t.now(), t.window)
	return count >= t.threshold
}

// Clear drops the record entirely, called after a successful authentication.
func (t *FailedAttemptTracker) Clear(username, address string) {
	t.store.Clear(attemptKey(username, address))
}
