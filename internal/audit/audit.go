package audit

import (
	"context"
	"log/slog"

	"github.com/nandasafiq/hospital-management/internal/core/events"
)

// Security event kinds recorded by the authentication core and the admin
// surfaces around it.
const (
	EventLoginSuccess         = "LOGIN_SUCCESS"
	EventLoginFailed          = "LOGIN_FAILED"
	EventAccountLocked        = "ACCOUNT_LOCKED"
	EventLoginDisabledAccount = "LOGIN_DISABLED_ACCOUNT"
	EventLogout               = "LOGOUT"
	EventPasswordChanged      = "PASSWORD_CHANGED"
	EventPermissionDenied     = "PERMISSION_DENIED"
	EventUserCreated          = "USER_CREATED"
	EventUserDeactivated      = "USER_DEACTIVATED"
	EventRoleCreated          = "ROLE_CREATED"
	EventRoleUpdated          = "ROLE_UPDATED"
)

// Entry is one security-relevant occurrence to append to the audit trail.
type Entry struct {
	Type      string
	Detail    string
	UserID    *int64
	IPAddress string
	UserAgent string
	Endpoint  string
}

// Recorder is what the security core depends on. Recording is best-effort:
// implementations must never let a sink failure propagate into the
// authentication flow.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Service publishes entries onto the security event bus, where the database
// sink and any other subscribers pick them up. The bus swallows handler
// errors, which gives Record its fire-and-forget contract.
type Service struct {
	enabled bool
	bus     *events.Bus
	logger  *slog.Logger
}

func NewService(enabled bool, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		enabled: enabled,
		bus:     bus,
		logger:  logger,
	}
}

func (s *Service) Record(ctx context.Context, e Entry) {
	if !s.enabled {
		return
	}

	event := events.NewSecurityEvent(e.Type, e.Detail)
	event.UserID = e.UserID
	event.IPAddress = e.IPAddress
	event.UserAgent = e.UserAgent
	event.Endpoint = e.Endpoint

	s.bus.Publish(ctx, event)
}

// Nop is a Recorder that drops everything, for wiring tests and for running
// with the audit log disabled.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
