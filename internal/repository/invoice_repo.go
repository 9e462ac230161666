package repository

import (
	"context"
	"time"

	"github.com/raw-dani/pos-only/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceQuery narrows List. Nil bounds and empty Status mean no predicate.
type InvoiceQuery struct {
	From      *time.Time
	To        *time.Time // inclusive
	CashierID *uuid.UUID
	Status    string
	// Oldest orders by created_at ascending; default is newest first.
	Oldest bool
}

type InvoiceRepository interface {
	// Create inserts the header and its items. Callers pass the tx instance and
	// leave Cashier, Items[].Product and Payments unset.
	Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	// FindByID returns the invoice with items, cashier and payments loaded.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	// LockByID reads the header with SELECT ... FOR UPDATE.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error)
	// MarkPaid moves a draft or unpaid invoice to paid, recording customerEmail
	// when given. It reports false when no row matched, meaning the invoice was
	// already paid.
	MarkPaid(ctx context.Context, tx *gorm.DB, id uuid.UUID, customerEmail *string) (bool, error)
	CreatePayment(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	List(ctx context.Context, q InvoiceQuery) ([]model.Invoice, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return conn(tx, r.db).WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.hydrated(r.db.WithContext(ctx)).First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := conn(tx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) MarkPaid(ctx context.Context, tx *gorm.DB, id uuid.UUID, customerEmail *string) (bool, error) {
	updates := map[string]interface{}{"status": model.InvoicePaid}
	if customerEmail != nil {
		updates["customer_email"] = *customerEmail
	}
	res := conn(tx, r.db).WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ? AND status IN ?", id, []string{model.InvoiceDraft, model.InvoiceUnpaid}).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *invoiceRepo) CreatePayment(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return conn(tx, r.db).WithContext(ctx).Omit("Method").Create(p).Error
}

func (r *invoiceRepo) List(ctx context.Context, q InvoiceQuery) ([]model.Invoice, error) {
	var invoices []model.Invoice
	db := r.hydrated(r.db.WithContext(ctx).Model(&model.Invoice{}))

	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at <= ?", *q.To)
	}
	if q.CashierID != nil {
		db = db.Where("cashier_id = ?", *q.CashierID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}

	if q.Oldest {
		db = db.Order("created_at ASC").Order("id ASC")
	} else {
		db = db.Order("created_at DESC").Order("id DESC")
	}

	err := db.Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) hydrated(db *gorm.DB) *gorm.DB {
	return db.Preload("Items.Product").Preload("Cashier").Preload("Payments.Method")
}
