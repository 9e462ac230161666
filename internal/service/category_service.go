package service

import (
	"context"
	"fmt"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/google/uuid"
)

type CategoryService interface {
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	// Delete refuses while any product, active or not, references the category.
	Delete(ctx context.Context, id uuid.UUID) error
}

var errCategoryNameTaken = apierror.Conflict("a category with this name already exists")

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	resp := make([]dto.CategoryResponse, len(cats))
	for i := range cats {
		resp[i] = toCategoryResponse(&cats[i])
	}
	return resp, nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := s.ensureNameFree(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}
	cat := &model.Category{ID: uuid.New(), Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, cat); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errCategoryNameTaken
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	resp := toCategoryResponse(cat)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	cat, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("category not found")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}

	if req.Name != nil {
		if err := s.ensureNameFree(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		cat.Name = *req.Name
	}
	if req.Description != nil {
		cat.Description = req.Description
	}

	if err := s.repo.Update(ctx, cat); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errCategoryNameTaken
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	resp := toCategoryResponse(cat)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("category not found")
		}
		return fmt.Errorf("find category: %w", err)
	}

	n, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if n > 0 {
		return apierror.Conflict(fmt.Sprintf("category is still referenced by %d product(s)", n))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("category not found")
		}
		// A product was added after the count.
		if repository.IsForeignKeyViolation(err) {
			return apierror.Conflict("category is still referenced by products")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// ensureNameFree fails when another category (not self) already uses name.
func (s *categoryService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("find category by name: %w", err)
	}
	if existing.ID != self {
		return errCategoryNameTaken
	}
	return nil
}

func toCategoryResponse(c *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Description: c.Description}
}
