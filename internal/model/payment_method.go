package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment method types.
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
	PaymentQRIS     = "qris"
)

type PaymentMethod struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Type      string    `gorm:"type:varchar(20);not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
