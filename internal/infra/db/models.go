package db

import "time"

type AuditEventModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	EventType   string    `gorm:"index;not null"`
	TargetID    *string   `gorm:"index"`
	Result      string    `gorm:"not null"`
	ErrorCode   *string
	PayloadJSON []byte    `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time `gorm:"index;not null"`
}

func (AuditEventModel) TableName() string {
	return "audit_events"
}
