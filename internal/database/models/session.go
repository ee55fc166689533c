package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the database fallback for server-side login sessions when Redis
// is not configured.
type Session struct {
	ID        string    `gorm:"size:64;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

func (Session) TableName() string {
	return "sessions"
}
