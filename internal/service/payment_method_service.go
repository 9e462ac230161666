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

type PaymentMethodService interface {
	ListActive(ctx context.Context) ([]dto.PaymentMethodResponse, error)
	Create(ctx context.Context, req dto.CreatePaymentMethodRequest) (*dto.PaymentMethodResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePaymentMethodRequest) (*dto.PaymentMethodResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

var errPaymentMethodNameTaken = apierror.Conflict("a payment method with this name already exists")

type paymentMethodService struct {
	repo repository.PaymentMethodRepository
}

func NewPaymentMethodService(repo repository.PaymentMethodRepository) PaymentMethodService {
	return &paymentMethodService{repo: repo}
}

func (s *paymentMethodService) ListActive(ctx context.Context) ([]dto.PaymentMethodResponse, error) {
	methods, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	resp := make([]dto.PaymentMethodResponse, len(methods))
	for i := range methods {
		resp[i] = toPaymentMethodResponse(&methods[i])
	}
	return resp, nil
}

func (s *paymentMethodService) Create(ctx context.Context, req dto.CreatePaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	m := &model.PaymentMethod{ID: uuid.New(), Name: req.Name, Type: req.Type, Active: true}
	if err := s.repo.Create(ctx, m); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errPaymentMethodNameTaken
		}
		return nil, fmt.Errorf("create payment method: %w", err)
	}
	resp := toPaymentMethodResponse(m)
	return &resp, nil
}

func (s *paymentMethodService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("payment method not found")
		}
		return nil, fmt.Errorf("find payment method: %w", err)
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Type != nil {
		m.Type = *req.Type
	}
	if req.Active != nil {
		m.Active = *req.Active
	}
	if err := s.repo.Update(ctx, m); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errPaymentMethodNameTaken
		}
		return nil, fmt.Errorf("update payment method: %w", err)
	}
	resp := toPaymentMethodResponse(m)
	return &resp, nil
}

func (s *paymentMethodService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("payment method not found")
		}
		return fmt.Errorf("deactivate payment method: %w", err)
	}
	return nil
}

func toPaymentMethodResponse(m *model.PaymentMethod) dto.PaymentMethodResponse {
	return dto.PaymentMethodResponse{ID: m.ID.String(), Name: m.Name, Type: m.Type, Active: m.Active}
}
