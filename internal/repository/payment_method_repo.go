package repository

import (
	"context"

	"github.com/raw-dani/pos-only/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMethodRepository interface {
	Create(ctx context.Context, m *model.PaymentMethod) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	List(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error)
	Update(ctx context.Context, m *model.PaymentMethod) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type paymentMethodRepo struct{ db *gorm.DB }

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepo{db: db}
}

func (r *paymentMethodRepo) Create(ctx context.Context, m *model.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *paymentMethodRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *paymentMethodRepo) List(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = true")
	}
	err := q.Order("name ASC").Find(&methods).Error
	return methods, err
}

func (r *paymentMethodRepo) Update(ctx context.Context, m *model.PaymentMethod) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *paymentMethodRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.PaymentMethod{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
