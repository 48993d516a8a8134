package audit

import "time"

// ActivityLog is the append-only audit trail row. Rows are never updated or
// deleted by the application; retention is handled out of band.
type ActivityLog struct {
	ID        int64     `gorm:"primaryKey"`
	EventType string    `gorm:"column:event_type;not null"`
	Detail    string    `gorm:"column:detail"`
	UserID    *int64    `gorm:"column:user_id"`
	IPAddress string    `gorm:"column:ip_address"`
	UserAgent string    `gorm:"column:user_agent"`
	Endpoint  string    `gorm:"column:endpoint"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
