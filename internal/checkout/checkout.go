// Package checkout turns a client cart into a gateway payment intent, or
// directly into a completed order when payments are disabled.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/observability/metrics"
	orderdomain "github.com/neocommerce/storefront/internal/order/domain"
	paymentdomain "github.com/neocommerce/storefront/internal/payment/domain"
	"github.com/neocommerce/storefront/internal/payment/gateways"
	"github.com/neocommerce/storefront/internal/payment/gateways/cryptomus"
	"github.com/neocommerce/storefront/internal/payment/gateways/paypal"
	productdomain "github.com/neocommerce/storefront/internal/product/domain"
	settingsdomain "github.com/neocommerce/storefront/internal/settings/domain"
	"github.com/neocommerce/storefront/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart          = errors.New("empty_cart")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrMissingEmail       = errors.New("missing_email")
	ErrInvalidTotal       = errors.New("invalid_total")
	ErrTotalMismatch      = errors.New("total_mismatch")
	ErrProductUnavailable = errors.New("product_unavailable")
)

type ItemRequest struct {
	ProductID string      `json:"productId"`
	Quantity  int64       `json:"quantity"`
	Title     string      `json:"title"`
	Price     json.Number `json:"price"`
}

type CreateIntentRequest struct {
	Gateway       string        `json:"-"`
	Items         []ItemRequest `json:"items"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	TotalAmount   json.Number   `json:"totalAmount"`
}

type CreateIntentResponse struct {
	PaymentURL    string `json:"paymentUrl"`
	OrderNumber   string `json:"orderId"`
	PaymentID     string `json:"paymentId"`
	DownloadToken string `json:"-"`
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Cfg         config.Config
	Creds       *config.GatewayConfigHolder
	Registry    *gateways.Registry
	SettingsSvc settingsdomain.Service
	ProductRepo productdomain.Repository
	OrderRepo   orderdomain.Repository
	PaymentRepo paymentdomain.Repository
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	cfg         config.Config
	creds       *config.GatewayConfigHolder
	registry    *gateways.Registry
	settingsSvc settingsdomain.Service
	productRepo productdomain.Repository
	orderRepo   orderdomain.Repository
	paymentRepo paymentdomain.Repository
	metrics     *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("checkout.service"),
		genID:       p.GenID,
		cfg:         p.Cfg,
		creds:       p.Creds,
		registry:    p.Registry,
		settingsSvc: p.SettingsSvc,
		productRepo: p.ProductRepo,
		orderRepo:   p.OrderRepo,
		paymentRepo: p.PaymentRepo,
		metrics:     p.Metrics,
	}
}

type snapshot struct {
	contextItems []paymentdomain.ContextItem
	orderItems   []orderdomain.OrderItem
	totalCents   int64
}

func (s *Service) CreateIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error) {
	gateway := strings.ToLower(strings.TrimSpace(req.Gateway))
	if !s.registry.Exists(gateway) {
		return nil, paymentdomain.ErrGatewayNotFound
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, ErrMissingEmail
	}
	clientTotal, err := money.ParseCents(req.TotalAmount.String())
	if err != nil || clientTotal <= 0 {
		return nil, ErrInvalidTotal
	}

	snap, err := s.snapshotCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if !money.WithinOneCent(snap.totalCents, clientTotal) {
		return nil, ErrTotalMismatch
	}

	// Both credentials are generated before any network or storage call so
	// the metadata blob is complete from the start.
	orderNumber := newOrderNumber()
	downloadToken := uuid.NewString()

	public, err := s.settingsSvc.Public(ctx)
	if err != nil {
		return nil, err
	}

	if !public.PaymentEnabled {
		return s.createTestModeOrder(ctx, gateway, req, snap, orderNumber, downloadToken)
	}

	switch gateway {
	case cryptomus.Name:
		if !public.CryptomusEnabled {
			return nil, paymentdomain.ErrGatewayDisabled
		}
	case paypal.Name:
		if !public.PayPalEnabled {
			return nil, paymentdomain.ErrGatewayDisabled
		}
	}

	orderCtx := paymentdomain.OrderContext{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Items:         snap.contextItems,
		DownloadToken: downloadToken,
		OrderNumber:   orderNumber,
	}

	if err := s.persistIntent(ctx, gateway, orderCtx, snap.totalCents); err != nil {
		return nil, err
	}

	g, err := s.registry.New(gateway, s.creds.Current())
	if err != nil {
		s.failIntent(ctx, orderNumber)
		s.recordIntent(ctx, gateway, "unavailable")
		return nil, paymentdomain.ErrGatewayUnavailable
	}

	resp, err := g.CreatePayment(ctx, paymentdomain.CreatePaymentRequest{
		OrderNumber: orderNumber,
		AmountCents: snap.totalCents,
		Currency:    s.cfg.Currency,
		Description: describeItems(snap.orderItems),
		Context:     orderCtx,
		ReturnURL:   s.cfg.PublicBaseURL + "/download?token=" + downloadToken,
		CancelURL:   s.cfg.PublicBaseURL + "/checkout",
		CallbackURL: s.cfg.APIBaseURL + "/api/payments/webhooks/" + gateway,
	})
	if err != nil {
		s.log.Error("gateway payment creation failed",
			zap.String("gateway", gateway),
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
		s.failIntent(ctx, orderNumber)
		s.recordIntent(ctx, gateway, "failed")
		return nil, paymentdomain.ErrGatewayUnavailable
	}

	s.recordIntent(ctx, gateway, "created")
	return &CreateIntentResponse{
		PaymentURL:    resp.PaymentURL,
		OrderNumber:   orderNumber,
		PaymentID:     resp.GatewayPaymentID,
		DownloadToken: downloadToken,
	}, nil
}

// snapshotCart resolves every cart line against the catalog. Prices are
// snapshotted from the catalog, never taken from the client.
func (s *Service) snapshotCart(ctx context.Context, items []ItemRequest) (*snapshot, error) {
	snap := &snapshot{
		contextItems: make([]paymentdomain.ContextItem, 0, len(items)),
		orderItems:   make([]orderdomain.OrderItem, 0, len(items)),
	}

	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		productID, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, ErrProductUnavailable
		}

		product, err := s.productRepo.FindByID(ctx, s.db, productID.Int64())
		if err != nil {
			return nil, err
		}
		if product == nil || !product.Active {
			return nil, ErrProductUnavailable
		}

		unitPrice := product.Price()
		snap.totalCents += unitPrice * item.Quantity
		snap.contextItems = append(snap.contextItems, paymentdomain.ContextItem{
			ProductID: snowflake.ID(product.ID).String(),
			Quantity:  item.Quantity,
			Title:     product.Title,
			Price:     money.FormatCents(unitPrice),
		})
		snap.orderItems = append(snap.orderItems, orderdomain.OrderItem{
			ProductID:      product.ID,
			Title:          product.Title,
			UnitPriceCents: unitPrice,
			Quantity:       item.Quantity,
			Position:       int64(i),
		})
	}
	return snap, nil
}

func (s *Service) createTestModeOrder(ctx context.Context, gateway string, req CreateIntentRequest, snap *snapshot, orderNumber, downloadToken string) (*CreateIntentResponse, error) {
	now := time.Now().UTC()
	gatewayPaymentID := orderdomain.GatewayTestMode
	order := &orderdomain.Order{
		ID:                s.genID.Generate().Int64(),
		OrderNumber:       orderNumber,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		AmountPaidCents:   snap.totalCents,
		Currency:          s.cfg.Currency,
		PaymentStatus:     orderdomain.StatusCompleted,
		Gateway:           orderdomain.GatewayTestMode,
		GatewayPaymentID:  &gatewayPaymentID,
		DownloadToken:     downloadToken,
		DownloadExpiresAt: now.Add(s.cfg.DownloadTTL),
		CreatedAt:         now,
	}

	items := snap.orderItems
	for i := range items {
		items[i].ID = s.genID.Generate().Int64()
	}

	if _, err := s.orderRepo.InsertIfAbsent(ctx, s.db, order, items); err != nil {
		return nil, err
	}

	s.log.Info("test mode order created",
		zap.String("gateway", gateway),
		zap.String("order_number", orderNumber),
	)
	s.recordIntent(ctx, gateway, "test_mode")

	return &CreateIntentResponse{
		PaymentURL:    s.cfg.PublicBaseURL + "/download?token=" + downloadToken,
		OrderNumber:   orderNumber,
		PaymentID:     orderdomain.GatewayTestMode,
		DownloadToken: downloadToken,
	}, nil
}

func (s *Service) persistIntent(ctx context.Context, gateway string, orderCtx paymentdomain.OrderContext, totalCents int64) error {
	itemsBlob, err := json.Marshal(orderCtx.Items)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.paymentRepo.CreateIntent(ctx, s.db, &paymentdomain.PaymentIntent{
		ID:            s.genID.Generate().Int64(),
		OrderNumber:   orderCtx.OrderNumber,
		Gateway:       gateway,
		DownloadToken: orderCtx.DownloadToken,
		CustomerName:  orderCtx.CustomerName,
		CustomerEmail: orderCtx.CustomerEmail,
		AmountCents:   totalCents,
		Currency:      s.cfg.Currency,
		Items:         itemsBlob,
		Status:        paymentdomain.IntentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (s *Service) failIntent(ctx context.Context, orderNumber string) {
	if err := s.paymentRepo.UpdateIntentStatus(ctx, s.db, orderNumber, paymentdomain.IntentStatusFailed, time.Now().UTC()); err != nil {
		s.log.Warn("payment intent status update failed",
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
	}
}

func (s *Service) recordIntent(ctx context.Context, gateway, outcome string) {
	s.metrics.RecordCheckoutIntent(ctx, gateway, outcome)
}

func describeItems(items []orderdomain.OrderItem) string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return strings.Join(titles, ", ")
}

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newOrderNumber builds a human-readable unique order identifier,
// ORD-<unix millis>-<9 random base36 chars>.
func newOrderNumber() string {
	buf := make([]byte, 9)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), string(buf))
}
