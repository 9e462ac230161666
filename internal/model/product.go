package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Inactive products stay valid targets
// for historical invoice items.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string          `gorm:"index;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description *string
	Image       *string
	Active      bool `gorm:"not null;default:true;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
}
