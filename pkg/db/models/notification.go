package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type       enums.NotificationType `gorm:"type:text;not null"`
	Title      string                 `gorm:"type:text;not null"`
	Message    string                 `gorm:"type:text;not null"`
	OrderID    *uuid.UUID             `gorm:"type:uuid"`
	SubOrderID *uuid.UUID             `gorm:"type:uuid"`
	ReadAt     *time.Time             `gorm:"type:timestamptz"`
	CreatedAt  time.Time              `gorm:"type:timestamptz;default:now()"`
}
