package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/order/domain"
	orderrepo "github.com/neocommerce/storefront/internal/order/repository"
	orderservice "github.com/neocommerce/storefront/internal/order/service"
	"github.com/neocommerce/storefront/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestListOrdersPaginates(t *testing.T) {
	ctx := context.Background()
	db := setupOrderDB(t)
	svc := setupOrderService(t, db)
	node, _ := snowflake.NewNode(17)

	for i := 0; i < 5; i++ {
		seedOrder(t, db, node, fmt.Sprintf("ORD-%d", i), domain.StatusCompleted)
	}

	first, err := svc.List(ctx, domain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(first.Orders))
	}
	if !first.PageInfo.HasMore || first.PageInfo.NextPageToken == "" {
		t.Fatalf("expected more pages, got %+v", first.PageInfo)
	}
	if first.Orders[0].AmountPaid != "19.98" {
		t.Fatalf("expected formatted amount, got %s", first.Orders[0].AmountPaid)
	}

	second, err := svc.List(ctx, domain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: first.PageInfo.NextPageToken},
	})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Orders) != 2 {
		t.Fatalf("expected 2 orders on second page, got %d", len(second.Orders))
	}
	for _, o := range second.Orders {
		for _, seen := range first.Orders {
			if o.ID == seen.ID {
				t.Fatalf("order %s appeared on both pages", o.ID)
			}
		}
	}

	third, err := svc.List(ctx, domain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: second.PageInfo.NextPageToken},
	})
	if err != nil {
		t.Fatalf("list third page: %v", err)
	}
	if len(third.Orders) != 1 || third.PageInfo.HasMore {
		t.Fatalf("expected final page with 1 order, got %d (%+v)", len(third.Orders), third.PageInfo)
	}
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	db := setupOrderDB(t)
	svc := setupOrderService(t, db)
	node, _ := snowflake.NewNode(17)

	seedOrder(t, db, node, "ORD-C", domain.StatusCompleted)
	seedOrder(t, db, node, "ORD-P", domain.StatusPending)

	resp, err := svc.List(ctx, domain.ListRequest{PaymentStatus: domain.StatusCompleted})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Orders) != 1 || resp.Orders[0].OrderNumber != "ORD-C" {
		t.Fatalf("unexpected orders %+v", resp.Orders)
	}
}

func TestListOrdersRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	db := setupOrderDB(t)
	svc := setupOrderService(t, db)

	if _, err := svc.List(ctx, domain.ListRequest{PaymentStatus: "refunded"}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.List(ctx, domain.ListRequest{
		Pagination: pagination.Pagination{PageToken: "!!not-base64!!"},
	}); !errors.Is(err, domain.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func setupOrderService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()

	return orderservice.New(orderservice.Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: orderrepo.Provide(),
	})
}

func seedOrder(t *testing.T, db *gorm.DB, node *snowflake.Node, orderNumber, status string) {
	t.Helper()

	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO orders (id, order_number, customer_name, customer_email, amount_paid_cents, currency,
		                     payment_status, gateway, gateway_payment_id, download_token, download_expires_at,
		                     downloaded_at, created_at)
		 VALUES (?, ?, 'Buyer', 'buyer@example.com', 1998, 'USD', ?, 'cryptomus', 'uuid-1', ?, ?, NULL, ?)`,
		node.Generate().Int64(), orderNumber, status, "token-"+orderNumber, now.Add(24*time.Hour), now,
	).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func setupOrderDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_orderlist_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.Exec(`CREATE TABLE orders (
		id BIGINT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		customer_name TEXT,
		customer_email TEXT NOT NULL,
		amount_paid_cents BIGINT NOT NULL DEFAULT 0,
		currency TEXT NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		gateway TEXT NOT NULL,
		gateway_payment_id TEXT,
		download_token TEXT NOT NULL,
		download_expires_at TIMESTAMP NOT NULL,
		downloaded_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`).Error; err != nil {
		t.Fatalf("schema exec failed: %v", err)
	}

	return db
}
