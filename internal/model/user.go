package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is one of the fixed assignable roles. Permissions come from the static
// table in internal/rbac, never from this row.
type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is a staff account. Users are deactivated, never removed.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string    `gorm:"not null"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Role Role `gorm:"foreignKey:RoleID"`
}
