package service

import (
	"context"
	"fmt"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	// List returns active products; includeInactive is honoured only when
	// canSeeInactive is true.
	List(ctx context.Context, filter dto.ProductFilter, canSeeInactive bool) ([]dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
}

func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository) ProductService {
	return &productService{repo: repo, categories: categories}
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter, canSeeInactive bool) ([]dto.ProductResponse, error) {
	q := repository.ProductQuery{
		Search:          filter.Search,
		IncludeInactive: filter.IncludeInactive && canSeeInactive,
	}
	if filter.CategoryID != "" {
		cid, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, apierror.Field("categoryId", "categoryId must be a valid id")
		}
		q.CategoryID = &cid
	}

	products, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = toProductResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	price, err := normalizePrice(*req.Price)
	if err != nil {
		return nil, err
	}
	cat, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Price:       price,
		CategoryID:  cat.ID,
		Description: req.Description,
		Image:       req.Image,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	p.Category = cat
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		price, err := normalizePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		p.Price = price
	}
	if req.CategoryID != nil {
		cat, err := s.resolveCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = cat.ID
		p.Category = cat
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Image != nil {
		p.Image = req.Image
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *productService) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("product not found")
		}
		return fmt.Errorf("set product active=%t: %w", active, err)
	}
	return nil
}

func (s *productService) find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (s *productService) resolveCategory(ctx context.Context, raw string) (*model.Category, error) {
	cid, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierror.Field("categoryId", "categoryId must be a valid id")
	}
	cat, err := s.categories.FindByID(ctx, cid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.Field("categoryId", "category does not exist")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return cat, nil
}

func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, apierror.Field("price", "price must not be negative")
	}
	if price.Round(2).GreaterThan(maxAmount) {
		return decimal.Zero, apierror.Field("price", "price exceeds "+maxAmount.StringFixed(2))
	}
	return price.Round(2), nil
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Price:       p.Price,
		CategoryID:  p.CategoryID.String(),
		Description: p.Description,
		Image:       p.Image,
		Active:      p.Active,
	}
	if p.Category != nil {
		cat := toCategoryResponse(p.Category)
		resp.Category = &cat
	}
	return resp
}
