package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SecurityEvent is what the audit layer publishes: one event per
// security-relevant occurrence (login success/failure, lockout, permission
// denial, admin action).
type SecurityEvent struct {
	ID         string
	Type       string
	Detail     string
	UserID     *int64
	IPAddress  string
	UserAgent  string
	Endpoint   string
	OccurredAt time.Time
}

func NewSecurityEvent(eventType, detail string) SecurityEvent {
	return SecurityEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
}

type Handler func(ctx context.Context, event SecurityEvent) error

// Bus fans a published event out to every subscriber of its type plus the
// wildcard subscribers. Handler errors are logged and swallowed: a failing
// sink must never abort the request that produced the event.
type Bus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
	mu       sync.RWMutex
}

const Wildcard = "*"

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *Bus) Publish(ctx context.Context, event SecurityEvent) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Type])+len(b.handlers[Wildcard]))
	handlers = append(handlers, b.handlers[event.Type]...)
	handlers = append(handlers, b.handlers[Wildcard]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			b.logger.Error("security event handler failed",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err)
		}
	}
}
