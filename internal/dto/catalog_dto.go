package dto

import "github.com/shopspring/decimal"

// ─── Categories ──────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ─── Products ────────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name        string           `json:"name"        validate:"required,min=1,max=120"`
	Price       *decimal.Decimal `json:"price"       validate:"required,min=0,max=9999999999.99"`
	CategoryID  string           `json:"categoryId"  validate:"required,uuid"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=120"`
	Price       *decimal.Decimal `json:"price"       validate:"omitempty,min=0,max=9999999999.99"`
	CategoryID  *string          `json:"categoryId"  validate:"omitempty,uuid"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
}

type ProductFilter struct {
	CategoryID      string `form:"categoryId" validate:"omitempty,uuid"`
	Search          string `form:"search"`
	IncludeInactive bool   `form:"includeInactive"`
}

type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Price       decimal.Decimal   `json:"price"`
	CategoryID  string            `json:"categoryId"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Description *string           `json:"description"`
	Image       *string           `json:"image"`
	Active      bool              `json:"active"`
}
