// Package download redeems single-use order credentials and proxies the
// deliverable files.
package download

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/observability/metrics"
	orderdomain "github.com/neocommerce/storefront/internal/order/domain"
	productdomain "github.com/neocommerce/storefront/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFoundOrExpired is deliberately uniform: callers cannot distinguish
// an unknown token from an expired or uncommitted one.
var (
	ErrNotFoundOrExpired = errors.New("not_found_or_expired")
	ErrFileUnavailable   = errors.New("file_unavailable")
)

type ResolvedProduct struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	Quantity      int64  `json:"quantity"`
}

type Resolution struct {
	OrderNumber  string            `json:"order_number"`
	CustomerName string            `json:"customer_name"`
	ExpiresAt    time.Time         `json:"expires_at"`
	Products     []ResolvedProduct `json:"products"`
}

type FileStream struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	OrderRepo   orderdomain.Repository
	ProductRepo productdomain.Repository
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	orderRepo   orderdomain.Repository
	productRepo productdomain.Repository
	metrics     *metrics.Metrics
	client      *http.Client
}

func New(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("download.service"),
		orderRepo:   p.OrderRepo,
		productRepo: p.ProductRepo,
		metrics:     p.Metrics,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Service) Resolve(ctx context.Context, token string) (*Resolution, error) {
	order, items, err := s.redeem(ctx, token)
	if err != nil {
		s.metrics.RecordDownload(ctx, "rejected")
		return nil, err
	}

	products := make([]ResolvedProduct, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, s.db, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			// A removed product must not break the rest of the order.
			s.log.Warn("purchased product no longer exists",
				zap.String("order_number", order.OrderNumber),
				zap.Int64("product_id", item.ProductID),
			)
			continue
		}
		products = append(products, ResolvedProduct{
			ID:            snowflake.ID(product.ID).String(),
			Title:         product.Title,
			CoverImageURL: product.CoverImageURL,
			Quantity:      item.Quantity,
		})
	}

	if order.DownloadedAt == nil {
		if err := s.orderRepo.MarkDownloaded(ctx, s.db, order.ID, time.Now().UTC()); err != nil {
			s.log.Warn("downloaded_at update failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		}
	}

	s.metrics.RecordDownload(ctx, "resolved")
	return &Resolution{
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		ExpiresAt:    order.DownloadExpiresAt,
		Products:     products,
	}, nil
}

// FetchFile streams one purchased deliverable after re-checking the token.
func (s *Service) FetchFile(ctx context.Context, token, productID string) (*FileStream, error) {
	order, items, err := s.redeem(ctx, token)
	if err != nil {
		return nil, err
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil {
		return nil, ErrNotFoundOrExpired
	}

	purchased := false
	for _, item := range items {
		if item.ProductID == parsed.Int64() {
			purchased = true
			break
		}
	}
	if !purchased {
		return nil, ErrNotFoundOrExpired
	}

	product, err := s.productRepo.FindByID(ctx, s.db, parsed.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil || strings.TrimSpace(product.FileURL) == "" {
		return nil, ErrFileUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, product.FileURL, nil)
	if err != nil {
		return nil, ErrFileUnavailable
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("deliverable fetch failed",
			zap.String("order_number", order.OrderNumber),
			zap.Int64("product_id", parsed.Int64()),
			zap.Error(err),
		)
		return nil, ErrFileUnavailable
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		s.log.Error("deliverable fetch rejected upstream",
			zap.String("order_number", order.OrderNumber),
			zap.Int64("product_id", parsed.Int64()),
			zap.Int("status", resp.StatusCode),
		)
		return nil, ErrFileUnavailable
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	s.metrics.RecordDownload(ctx, "streamed")
	return &FileStream{
		Body:        resp.Body,
		ContentType: contentType,
		Filename:    product.Title,
	}, nil
}

func (s *Service) redeem(ctx context.Context, token string) (*orderdomain.Order, []orderdomain.OrderItem, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil, ErrNotFoundOrExpired
	}

	order, err := s.orderRepo.FindCompletedByToken(ctx, s.db, token)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrNotFoundOrExpired
	}
	if time.Now().UTC().After(order.DownloadExpiresAt) {
		s.log.Debug("download token expired", zap.String("order_number", order.OrderNumber))
		return nil, nil, ErrNotFoundOrExpired
	}

	items, err := s.orderRepo.FindItems(ctx, s.db, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}
