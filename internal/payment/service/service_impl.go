package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/observability/metrics"
	orderdomain "github.com/neocommerce/storefront/internal/order/domain"
	"github.com/neocommerce/storefront/internal/payment/domain"
	"github.com/neocommerce/storefront/internal/payment/gateways"
	"github.com/neocommerce/storefront/internal/payment/gateways/paypal"
	"github.com/neocommerce/storefront/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Cfg       config.Config
	Creds     *config.GatewayConfigHolder
	Registry  *gateways.Registry
	Repo      domain.Repository
	OrderRepo orderdomain.Repository
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	cfg       config.Config
	creds     *config.GatewayConfigHolder
	registry  *gateways.Registry
	repo      domain.Repository
	orderRepo orderdomain.Repository
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		genID:     p.GenID,
		cfg:       p.Cfg,
		creds:     p.Creds,
		registry:  p.Registry,
		repo:      p.Repo,
		orderRepo: p.OrderRepo,
		metrics:   p.Metrics,
	}
}

// HandleWebhook verifies, classifies and commits one gateway delivery.
// Classification errors are sentinels so the transport layer can map them to
// the right status codes.
func (s *Service) HandleWebhook(ctx context.Context, gateway string, payload []byte, headers http.Header) error {
	gateway = strings.ToLower(strings.TrimSpace(gateway))
	if !s.registry.Exists(gateway) {
		return domain.ErrGatewayNotFound
	}
	if !json.Valid(payload) {
		return domain.ErrInvalidPayload
	}

	creds := s.creds.Current()
	g, err := s.registry.New(gateway, creds)
	if err != nil {
		return err
	}

	if gateway == paypal.Name && creds.PayPal.WebhookID == "" {
		s.log.Warn("webhook signature verification skipped, no webhook id configured",
			zap.String("gateway", gateway),
		)
	}

	if err := g.Verify(ctx, payload, headers); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			s.log.Warn("webhook signature rejected", zap.String("gateway", gateway))
		}
		return err
	}

	event, err := g.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrEventIgnored) {
			s.log.Debug("webhook event ignored", zap.String("gateway", gateway))
		}
		return err
	}

	s.metrics.RecordPaymentEvent(ctx, gateway, event.EventType)
	return s.commit(ctx, event)
}

func (s *Service) commit(ctx context.Context, event *domain.CaptureEvent) error {
	orderCtx := event.Context
	if strings.TrimSpace(orderCtx.OrderNumber) == "" ||
		strings.TrimSpace(orderCtx.DownloadToken) == "" ||
		len(orderCtx.Items) == 0 {
		return domain.ErrMalformedMetadata
	}

	items, recomputed, err := buildItems(orderCtx.Items)
	if err != nil {
		return err
	}

	// The gateway-captured amount is a sanity check only. The recomputed
	// item sum is what gets recorded.
	if !money.WithinOneCent(recomputed, event.AmountCents) {
		s.log.Warn("captured amount does not match item sum",
			zap.String("gateway", event.Gateway),
			zap.String("order_number", orderCtx.OrderNumber),
			zap.Int64("recomputed_cents", recomputed),
			zap.Int64("captured_cents", event.AmountCents),
		)
		return domain.ErrAmountMismatch
	}

	now := time.Now().UTC()
	gatewayPaymentID := event.GatewayPaymentID
	order := &orderdomain.Order{
		ID:                s.genID.Generate().Int64(),
		OrderNumber:       orderCtx.OrderNumber,
		CustomerName:      strings.TrimSpace(orderCtx.CustomerName),
		CustomerEmail:     strings.TrimSpace(orderCtx.CustomerEmail),
		AmountPaidCents:   recomputed,
		Currency:          event.Currency,
		PaymentStatus:     orderdomain.StatusCompleted,
		Gateway:           event.Gateway,
		GatewayPaymentID:  &gatewayPaymentID,
		DownloadToken:     orderCtx.DownloadToken,
		DownloadExpiresAt: now.Add(s.cfg.DownloadTTL),
		CreatedAt:         now,
	}

	for i := range items {
		items[i].ID = s.genID.Generate().Int64()
	}

	inserted, err := s.orderRepo.InsertIfAbsent(ctx, s.db, order, items)
	if err != nil {
		return err
	}
	if !inserted {
		return domain.ErrDuplicateDelivery
	}

	s.log.Info("order committed",
		zap.String("gateway", event.Gateway),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("amount_cents", order.AmountPaidCents),
	)
	s.metrics.RecordOrderCommitted(ctx, event.Gateway)

	if err := s.repo.UpdateIntentStatus(ctx, s.db, order.OrderNumber, domain.IntentStatusCompleted, now); err != nil {
		s.log.Warn("payment intent status update failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
	return nil
}

func buildItems(contextItems []domain.ContextItem) ([]orderdomain.OrderItem, int64, error) {
	items := make([]orderdomain.OrderItem, 0, len(contextItems))
	var total int64
	for i, item := range contextItems {
		productID, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, 0, domain.ErrMalformedMetadata
		}
		if item.Quantity <= 0 {
			return nil, 0, domain.ErrMalformedMetadata
		}
		unitPrice, err := money.ParseCents(item.Price)
		if err != nil || unitPrice < 0 {
			return nil, 0, domain.ErrMalformedMetadata
		}

		total += unitPrice * item.Quantity
		items = append(items, orderdomain.OrderItem{
			ProductID:      productID.Int64(),
			Title:          item.Title,
			UnitPriceCents: unitPrice,
			Quantity:       item.Quantity,
			Position:       int64(i),
		})
	}
	return items, total, nil
}
