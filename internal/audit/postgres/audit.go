package postgres

import (
	"context"
	"time"

	auditDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/audit"
	"github.com/nandasafiq/hospital-management/internal/core/events"
	"gorm.io/gorm"
)

// Repository appends security events to the activity_logs table and serves
// the log-viewing endpoint. Writes are inserts only.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SubscribeTo registers the repository as a sink for every security event on
// the bus.
func (r *Repository) SubscribeTo(bus *events.Bus) {
	bus.Subscribe(events.Wildcard, r.handleEvent)
}

func (r *Repository) handleEvent(ctx context.Context, event events.SecurityEvent) error {
	row := &auditDatamodel.ActivityLog{
		EventType: event.Type,
		Detail:    event.Detail,
		UserID:    event.UserID,
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Endpoint:  event.Endpoint,
		CreatedAt: event.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// ListRecent returns the newest entries, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]auditDatamodel.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []auditDatamodel.ActivityLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSince returns entries recorded after the given time, newest first.
func (r *Repository) ListSince(ctx context.Context, since time.Time, limit int) ([]auditDatamodel.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []auditDatamodel.ActivityLog
	err := r.db.WithContext(ctx).
		Where("created_at > ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
