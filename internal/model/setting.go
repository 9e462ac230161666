package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Setting is the store configuration singleton. At most one row exists.
type Setting struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreName      string    `gorm:"not null"`
	StoreAddress   *string
	StorePhone     *string
	StoreEmail     *string
	StoreWhatsApp  *string `gorm:"column:store_whatsapp"`
	StoreInstagram *string
	StoreFacebook  *string
	StoreTwitter   *string
	Currency       string `gorm:"type:varchar(3);not null;default:'IDR'"`
	ReceiptFooter  *string
	TaxEnabled     bool            `gorm:"not null;default:false"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Singleton is always true; its unique index caps the table at one row.
	Singleton bool `gorm:"not null;default:true;uniqueIndex"`
}

// DefaultSetting is the row created on first read.
func DefaultSetting() Setting {
	return Setting{
		Singleton: true,
		StoreName: "Toko POS",
		Currency:  "IDR",
		TaxRate:   decimal.Zero,
	}
}

// EffectiveTaxRate is the percentage applied to invoices, zero when tax is off.
func (s *Setting) EffectiveTaxRate() decimal.Decimal {
	if !s.TaxEnabled || !s.TaxRate.IsPositive() {
		return decimal.Zero
	}
	return s.TaxRate
}
