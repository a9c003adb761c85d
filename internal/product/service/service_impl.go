package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/product/domain"
	"github.com/neocommerce/storefront/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	original, discounted, err := parsePrices(req.OriginalPrice, req.DiscountedPrice)
	if err != nil {
		return nil, err
	}

	var categoryID *int64
	if raw := strings.TrimSpace(req.CategoryID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		value := parsed.Int64()
		categoryID = &value
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:                   s.genID.Generate().Int64(),
		Title:                title,
		Description:          strings.TrimSpace(req.Description),
		OriginalPriceCents:   original,
		DiscountedPriceCents: discounted,
		CategoryID:           categoryID,
		CoverImageURL:        strings.TrimSpace(req.CoverImageURL),
		FileURL:              strings.TrimSpace(req.FileURL),
		Active:               active,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	resp := toResponse(p, false)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	return s.get(ctx, id, false)
}

func (s *Service) PublicGet(ctx context.Context, id string) (*domain.Response, error) {
	resp, err := s.get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !resp.Active {
		return nil, domain.ErrNotFound
	}
	return resp, nil
}

func (s *Service) get(ctx context.Context, id string, public bool) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item, public)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	return s.list(ctx, req, false)
}

func (s *Service) PublicList(ctx context.Context) ([]domain.Response, error) {
	return s.list(ctx, domain.ListRequest{ActiveOnly: true}, true)
}

func (s *Service) list(ctx context.Context, req domain.ListRequest, public bool) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item, public))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.OriginalPrice != nil {
		cents, err := money.ParseCents(*req.OriginalPrice)
		if err != nil || cents < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.OriginalPriceCents = cents
	}
	if req.DiscountedPrice != nil {
		cents, err := money.ParseCents(*req.DiscountedPrice)
		if err != nil || cents < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.DiscountedPriceCents = cents
	}
	if item.DiscountedPriceCents > item.OriginalPriceCents {
		return nil, domain.ErrInvalidPrice
	}
	if req.CategoryID != nil {
		raw := strings.TrimSpace(*req.CategoryID)
		if raw == "" {
			item.CategoryID = nil
		} else {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				return nil, domain.ErrInvalidID
			}
			value := parsed.Int64()
			item.CategoryID = &value
		}
	}
	if req.CoverImageURL != nil {
		item.CoverImageURL = strings.TrimSpace(*req.CoverImageURL)
	}
	if req.FileURL != nil {
		item.FileURL = strings.TrimSpace(*req.FileURL)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item, false)
	return &resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item, false)
	return &resp, nil
}

func parsePrices(originalRaw, discountedRaw string) (int64, int64, error) {
	original, err := money.ParseCents(originalRaw)
	if err != nil || original < 0 {
		return 0, 0, domain.ErrInvalidPrice
	}

	discounted := original
	if strings.TrimSpace(discountedRaw) != "" {
		discounted, err = money.ParseCents(discountedRaw)
		if err != nil || discounted < 0 || discounted > original {
			return 0, 0, domain.ErrInvalidPrice
		}
	}
	return original, discounted, nil
}

func toResponse(p *domain.Product, public bool) domain.Response {
	resp := domain.Response{
		ID:              snowflake.ID(p.ID).String(),
		Title:           p.Title,
		Description:     p.Description,
		OriginalPrice:   money.FormatCents(p.OriginalPriceCents),
		DiscountedPrice: money.FormatCents(p.DiscountedPriceCents),
		CoverImageURL:   p.CoverImageURL,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.CategoryID != nil {
		resp.CategoryID = snowflake.ID(*p.CategoryID).String()
	}
	// The deliverable reference never leaves the admin surface.
	if !public {
		resp.FileURL = p.FileURL
	}
	return resp
}
