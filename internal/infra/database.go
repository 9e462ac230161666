package infra

import (
	"fmt"

	"github.com/raw-dani/pos-only/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx and brings the schema up
// to date. TranslateError is on so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table and then applies the indexes
// AutoMigrate cannot express. Safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.PaymentMethod{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Payment{},
		&model.Setting{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// category names are unique regardless of case
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_ci ON categories (LOWER(name))`,
		// one payment per invoice
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_invoice_once ON payments (invoice_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_report ON invoices (status, created_at, id)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
