package service

import (
	"context"
	"fmt"

	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SettingCache is a read-through cache for the settings singleton.
// Get returns (nil, nil) on a miss.
type SettingCache interface {
	Get(ctx context.Context) (*model.Setting, error)
	Set(ctx context.Context, s *model.Setting) error
	Invalidate(ctx context.Context) error
}

type SettingService interface {
	Get(ctx context.Context) (*dto.SettingResponse, error)
	// Current returns the stored row, creating the default one on first use.
	Current(ctx context.Context) (*model.Setting, error)
	Update(ctx context.Context, req dto.UpdateSettingRequest) (*dto.SettingResponse, error)
}

type settingService struct {
	repo  repository.SettingRepository
	cache SettingCache // nil disables caching
}

func NewSettingService(repo repository.SettingRepository, cache SettingCache) SettingService {
	return &settingService{repo: repo, cache: cache}
}

func (s *settingService) Get(ctx context.Context) (*dto.SettingResponse, error) {
	st, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	resp := toSettingResponse(st)
	return &resp, nil
}

func (s *settingService) Current(ctx context.Context) (*model.Setting, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("settings cache read failed, falling back to database")
		} else if cached != nil {
			return cached, nil
		}
	}

	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, st)
	return st, nil
}

func (s *settingService) Update(ctx context.Context, req dto.UpdateSettingRequest) (*dto.SettingResponse, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if req.StoreName != nil {
		st.StoreName = *req.StoreName
	}
	assign := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	assign(&st.StoreAddress, req.StoreAddress)
	assign(&st.StorePhone, req.StorePhone)
	assign(&st.StoreEmail, req.StoreEmail)
	assign(&st.StoreWhatsApp, req.StoreWhatsApp)
	assign(&st.StoreInstagram, req.StoreInstagram)
	assign(&st.StoreFacebook, req.StoreFacebook)
	assign(&st.StoreTwitter, req.StoreTwitter)
	assign(&st.ReceiptFooter, req.ReceiptFooter)
	if req.Currency != nil {
		st.Currency = *req.Currency
	}
	if req.TaxEnabled != nil {
		st.TaxEnabled = *req.TaxEnabled
	}
	if req.TaxRate != nil {
		st.TaxRate = req.TaxRate.Round(2)
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, fmt.Errorf("update setting: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("settings cache invalidation failed")
		}
	}

	resp := toSettingResponse(st)
	return &resp, nil
}

// load reads the row from the database, bypassing the cache, so updates
// never start from a stale copy.
func (s *settingService) load(ctx context.Context) (*model.Setting, error) {
	st, err := s.repo.Get(ctx)
	if repository.IsNotFound(err) {
		def := model.DefaultSetting()
		def.ID = uuid.New()
		if err := s.repo.Create(ctx, &def); err != nil {
			return nil, fmt.Errorf("create default setting: %w", err)
		}
		// A concurrent first read may have won the insert.
		st, err = s.repo.Get(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load setting: %w", err)
	}
	return st, nil
}

func (s *settingService) store(ctx context.Context, st *model.Setting) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, st); err != nil {
		log.Warn().Err(err).Msg("settings cache write failed")
	}
}

func toSettingResponse(s *model.Setting) dto.SettingResponse {
	return dto.SettingResponse{
		ID:             s.ID.String(),
		StoreName:      s.StoreName,
		StoreAddress:   s.StoreAddress,
		StorePhone:     s.StorePhone,
		StoreEmail:     s.StoreEmail,
		StoreWhatsApp:  s.StoreWhatsApp,
		StoreInstagram: s.StoreInstagram,
		StoreFacebook:  s.StoreFacebook,
		StoreTwitter:   s.StoreTwitter,
		Currency:       s.Currency,
		ReceiptFooter:  s.ReceiptFooter,
		TaxEnabled:     s.TaxEnabled,
		TaxRate:        s.TaxRate,
	}
}
