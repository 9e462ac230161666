package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses. Unpaid is a legacy value: accepted as payable, never produced.
const (
	InvoiceDraft  = "draft"
	InvoiceUnpaid = "unpaid"
	InvoicePaid   = "paid"
)

// Invoice is a sale header. Total == Subtotal - Discount + Tax at creation.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNumber string          `gorm:"type:varchar(40);uniqueIndex;not null"`
	CashierID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(10);not null;default:'draft';index"`
	CustomerEmail *string
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time

	Cashier  *User         `gorm:"foreignKey:CashierID"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// IsPayable reports whether a payment may still be recorded.
func (i *Invoice) IsPayable() bool {
	return i.Status == InvoiceDraft || i.Status == InvoiceUnpaid
}

// InvoiceItem is an immutable line; Price is the catalog price at sale time.
type InvoiceItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Payment records the tender that moved an invoice to paid.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MethodID  uuid.UUID       `gorm:"type:uuid;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Change    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time

	Method *PaymentMethod `gorm:"foreignKey:MethodID"`
}
