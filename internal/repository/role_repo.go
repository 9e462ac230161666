package repository

import (
	"context"

	"github.com/raw-dani/pos-only/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	// Ensure creates the role when missing and returns the stored row.
	Ensure(ctx context.Context, name string) (*model.Role, error)
}

type roleRepo struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) RoleRepository { return &roleRepo{db: db} }

func (r *roleRepo) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	return &role, err
}

func (r *roleRepo) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Order("name").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) Ensure(ctx context.Context, name string) (*model.Role, error) {
	role := model.Role{Name: name}
	err := r.db.WithContext(ctx).Where(model.Role{Name: name}).FirstOrCreate(&role).Error
	return &role, err
}
