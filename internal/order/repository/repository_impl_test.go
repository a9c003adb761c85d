package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/order/domain"
	"github.com/neocommerce/storefront/internal/order/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestInsertIfAbsentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupOrderDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(14)

	order := newOrder(node, "ORD-1", "token-1")
	items := []domain.OrderItem{
		{ID: node.Generate().Int64(), ProductID: 1001, Title: "Go Basics", UnitPriceCents: 999, Quantity: 1, Position: 0},
		{ID: node.Generate().Int64(), ProductID: 1002, Title: "Advanced Go", UnitPriceCents: 999, Quantity: 1, Position: 1},
	}

	inserted, err := repo.InsertIfAbsent(ctx, db, order, items)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !inserted {
		t.Fatalf("expected first insert to report true")
	}

	// Same order number, different ids: a concurrent redelivery.
	dup := newOrder(node, "ORD-1", "token-other")
	inserted, err = repo.InsertIfAbsent(ctx, db, dup, items)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Fatalf("expected duplicate insert to report false")
	}

	var orderCount, itemCount int64
	if err := db.Raw("SELECT COUNT(1) FROM orders").Scan(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := db.Raw("SELECT COUNT(1) FROM order_items").Scan(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if orderCount != 1 || itemCount != 2 {
		t.Fatalf("expected 1 order with 2 items, got %d/%d", orderCount, itemCount)
	}
}

func TestFindCompletedByTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupOrderDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(14)

	order := newOrder(node, "ORD-RT", "token-rt")
	if _, err := repo.InsertIfAbsent(ctx, db, order, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := repo.FindCompletedByToken(ctx, db, "token-rt")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil {
		t.Fatalf("expected order for token")
	}
	if found.OrderNumber != "ORD-RT" || found.AmountPaidCents != 1998 {
		t.Fatalf("unexpected order %+v", found)
	}
	// Timestamp columns must scan back as time.Time on the sqlite dialect.
	if found.DownloadExpiresAt.IsZero() || found.CreatedAt.IsZero() {
		t.Fatalf("timestamp columns did not scan: %+v", found)
	}
	if found.DownloadedAt != nil {
		t.Fatalf("fresh order must not be marked downloaded")
	}
}

func TestFindCompletedByTokenIgnoresPending(t *testing.T) {
	ctx := context.Background()
	db := setupOrderDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(14)

	pending := newOrder(node, "ORD-2", "token-2")
	pending.PaymentStatus = domain.StatusPending
	if _, err := repo.InsertIfAbsent(ctx, db, pending, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := repo.FindCompletedByToken(ctx, db, "token-2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != nil {
		t.Fatalf("pending order must not be redeemable")
	}
}

func TestListPagesByDescendingID(t *testing.T) {
	ctx := context.Background()
	db := setupOrderDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(14)

	for i := 0; i < 5; i++ {
		order := newOrder(node, fmt.Sprintf("ORD-L%d", i), fmt.Sprintf("token-l%d", i))
		if _, err := repo.InsertIfAbsent(ctx, db, order, nil); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	page, err := repo.List(ctx, db, domain.ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Limit+1 overfetch for cursor detection.
	if len(page) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page))
	}
	if page[0].ID < page[1].ID {
		t.Fatalf("expected descending ids")
	}

	next, err := repo.List(ctx, db, domain.ListFilter{Limit: 2, CursorID: page[1].ID})
	if err != nil {
		t.Fatalf("list next: %v", err)
	}
	for _, o := range next {
		if o.ID >= page[1].ID {
			t.Fatalf("cursor not applied, got id %d", o.ID)
		}
	}
}

func newOrder(node *snowflake.Node, orderNumber, token string) *domain.Order {
	paymentID := "uuid-1"
	return &domain.Order{
		ID:                node.Generate().Int64(),
		OrderNumber:       orderNumber,
		CustomerName:      "Buyer",
		CustomerEmail:     "buyer@example.com",
		AmountPaidCents:   1998,
		Currency:          "USD",
		PaymentStatus:     domain.StatusCompleted,
		Gateway:           "cryptomus",
		GatewayPaymentID:  &paymentID,
		DownloadToken:     token,
		DownloadExpiresAt: time.Now().Add(24 * time.Hour).UTC(),
		CreatedAt:         time.Now().UTC(),
	}
}

func setupOrderDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_order_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			order_number TEXT NOT NULL,
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
		)`,
		`CREATE UNIQUE INDEX ux_orders_order_number ON orders(order_number)`,
		`CREATE UNIQUE INDEX ux_orders_download_token ON orders(download_token)`,
		`CREATE TABLE order_items (
			id BIGINT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			title TEXT,
			unit_price_cents BIGINT NOT NULL DEFAULT 0,
			quantity BIGINT NOT NULL DEFAULT 1,
			position BIGINT NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}
