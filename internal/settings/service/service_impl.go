package service

import (
	"context"
	"time"

	"github.com/neocommerce/storefront/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("settings.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context) (*domain.Response, error) {
	settings, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, domain.ErrNotFound
	}
	return toResponse(settings), nil
}

func (s *Service) Public(ctx context.Context) (*domain.PublicResponse, error) {
	settings, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, domain.ErrNotFound
	}
	return &domain.PublicResponse{
		PaymentEnabled:   settings.PaymentEnabled,
		CryptomusEnabled: settings.CryptomusEnabled,
		PayPalEnabled:    settings.PayPalEnabled,
	}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	settings, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, domain.ErrNotFound
	}

	if req.PaymentEnabled != nil {
		settings.PaymentEnabled = *req.PaymentEnabled
	}
	if req.CryptomusEnabled != nil {
		settings.CryptomusEnabled = *req.CryptomusEnabled
	}
	if req.PayPalEnabled != nil {
		settings.PayPalEnabled = *req.PayPalEnabled
	}

	settings.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, settings); err != nil {
		return nil, err
	}

	s.log.Info("settings updated",
		zap.Bool("payment_enabled", settings.PaymentEnabled),
		zap.Bool("cryptomus_enabled", settings.CryptomusEnabled),
		zap.Bool("paypal_enabled", settings.PayPalEnabled),
	)
	return toResponse(settings), nil
}

func toResponse(s *domain.Settings) *domain.Response {
	return &domain.Response{
		PaymentEnabled:   s.PaymentEnabled,
		CryptomusEnabled: s.CryptomusEnabled,
		PayPalEnabled:    s.PayPalEnabled,
		UpdatedAt:        s.UpdatedAt,
	}
}
