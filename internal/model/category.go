package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products. Deletion is refused while any product references it.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
