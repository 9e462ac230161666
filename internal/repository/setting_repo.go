package repository

import (
	"context"

	"github.com/raw-dani/pos-only/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	// Get returns the oldest setting row, or gorm.ErrRecordNotFound.
	Get(ctx context.Context) (*model.Setting, error)
	// Create inserts s unless a row already exists; callers re-read with Get.
	Create(ctx context.Context, s *model.Setting) error
	Update(ctx context.Context, s *model.Setting) error
}

type settingRepo struct{ db *gorm.DB }

func NewSettingRepository(db *gorm.DB) SettingRepository { return &settingRepo{db: db} }

func (r *settingRepo) Get(ctx context.Context) (*model.Setting, error) {
	var s model.Setting
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&s).Error
	return &s, err
}

func (r *settingRepo) Create(ctx context.Context, s *model.Setting) error {
	s.Singleton = true
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
}

func (r *settingRepo) Update(ctx context.Context, s *model.Setting) error {
	return r.db.WithContext(ctx).Save(s).Error
}
