package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/order/domain"
	"github.com/neocommerce/storefront/pkg/db/pagination"
	"github.com/neocommerce/storefront/pkg/money"
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
		log:  p.Log.Named("order.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	status := strings.TrimSpace(req.PaymentStatus)
	switch status {
	case "", domain.StatusPending, domain.StatusCompleted, domain.StatusFailed:
	default:
		return nil, domain.ErrInvalidStatus
	}

	filter := domain.ListFilter{
		PaymentStatus: status,
		Limit:         req.Pagination.PageSize,
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if token := strings.TrimSpace(req.Pagination.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		parsed, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		filter.CursorID = parsed.Int64()
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, filter.Limit, func(o domain.Order) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: snowflake.ID(o.ID).String()})
		return token
	})

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}

	return &domain.ListResponse{Orders: resp, PageInfo: pageInfo}, nil
}

func toResponse(o *domain.Order) domain.Response {
	resp := domain.Response{
		ID:            snowflake.ID(o.ID).String(),
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		AmountPaid:    money.FormatCents(o.AmountPaidCents),
		Currency:      o.Currency,
		PaymentStatus: o.PaymentStatus,
		Gateway:       o.Gateway,
		DownloadedAt:  o.DownloadedAt,
		CreatedAt:     o.CreatedAt,
	}
	if o.GatewayPaymentID != nil {
		resp.GatewayPaymentID = *o.GatewayPaymentID
	}
	return resp
}
