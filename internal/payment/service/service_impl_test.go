package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/config"
	orderrepo "github.com/neocommerce/storefront/internal/order/repository"
	paymentdomain "github.com/neocommerce/storefront/internal/payment/domain"
	"github.com/neocommerce/storefront/internal/payment/gateways"
	"github.com/neocommerce/storefront/internal/payment/gateways/cryptomus"
	"github.com/neocommerce/storefront/internal/payment/gateways/paypal"
	paymentrepo "github.com/neocommerce/storefront/internal/payment/repository"
	paymentservice "github.com/neocommerce/storefront/internal/payment/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testAPIKey = "api_key_test"

func TestHandleWebhookCommitsOrder(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := setupPaymentService(t, db)

	payload := signedCryptomusPayload(t, "ORD-1", "token-1", "19.98")
	headers := http.Header{}
	headers.Set("sign", cryptomus.Sign(payload, testAPIKey))

	if err := svc.HandleWebhook(ctx, "cryptomus", payload, headers); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM orders", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM order_items", 2)

	var status string
	if err := db.Raw("SELECT payment_status FROM orders LIMIT 1").Scan(&status).Error; err != nil {
		t.Fatalf("scan status: %v", err)
	}
	if status != "completed" {
		t.Fatalf("expected completed, got %s", status)
	}

	var amount int64
	if err := db.Raw("SELECT amount_paid_cents FROM orders LIMIT 1").Scan(&amount).Error; err != nil {
		t.Fatalf("scan amount: %v", err)
	}
	if amount != 1998 {
		t.Fatalf("expected recomputed 1998 cents, got %d", amount)
	}
}

func TestHandleWebhookDuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := setupPaymentService(t, db)

	payload := signedCryptomusPayload(t, "ORD-2", "token-2", "19.98")
	headers := http.Header{}
	headers.Set("sign", cryptomus.Sign(payload, testAPIKey))

	if err := svc.HandleWebhook(ctx, "cryptomus", payload, headers); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	for i := 0; i < 3; i++ {
		err := svc.HandleWebhook(ctx, "cryptomus", payload, headers)
		if !errors.Is(err, paymentdomain.ErrDuplicateDelivery) {
			t.Fatalf("redelivery %d: expected ErrDuplicateDelivery, got %v", i, err)
		}
	}

	assertCount(t, db, "SELECT COUNT(1) FROM orders", 1)
	assertCount(t, db, "SELECT COUNT(1) FROM order_items", 2)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := setupPaymentService(t, db)

	payload := signedCryptomusPayload(t, "ORD-3", "token-3", "19.98")
	headers := http.Header{}
	headers.Set("sign", cryptomus.Sign(payload, "wrong_key"))

	err := svc.HandleWebhook(ctx, "cryptomus", payload, headers)
	if !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	assertCount(t, db, "SELECT COUNT(1) FROM orders", 0)
}

func TestHandleWebhookAmountMismatchDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := setupPaymentService(t, db)

	// Items sum to 19.98 but the gateway claims 5.00 was captured.
	payload := signedCryptomusPayload(t, "ORD-4", "token-4", "5.00")
	headers := http.Header{}
	headers.Set("sign", cryptomus.Sign(payload, testAPIKey))

	err := svc.HandleWebhook(ctx, "cryptomus", payload, headers)
	if !errors.Is(err, paymentdomain.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	assertCount(t, db, "SELECT COUNT(1) FROM orders", 0)
}

func TestHandleWebhookIgnoresIntermediateStatus(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := setupPaymentService(t, db)

	payload := []byte(`{"order_id":"ORD-5","status":"check","payment_amount":"19.98","uuid":"u","additional_data":"{}"}`)
	headers := http.Header{}
	headers.Set("sign", cryptomus.Sign(payload, testAPIKey))

	err := svc.HandleWebhook(ctx, "cryptomus", payload, headers)
	if !errors.Is(err, paymentdomain.ErrEventIgnored) {
		t.Fatalf("expected ErrEventIgnored, got %v", err)
	}
	assertCount(t, db, "SELECT COUNT(1) FROM orders", 0)
}

func TestHandleWebhookMalformedMetadata(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := setupPaymentService(t, db)

	payload := []byte(`{"order_id":"ORD-6","status":"paid","payment_amount":"19.98","uuid":"u","additional_data":"{}"}`)
	headers := http.Header{}
	headers.Set("sign", cryptomus.Sign(payload, testAPIKey))

	err := svc.HandleWebhook(ctx, "cryptomus", payload, headers)
	if !errors.Is(err, paymentdomain.ErrMalformedMetadata) {
		t.Fatalf("expected ErrMalformedMetadata, got %v", err)
	}
	assertCount(t, db, "SELECT COUNT(1) FROM orders", 0)
}

func TestHandleWebhookUnknownGateway(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := setupPaymentService(t, db)

	err := svc.HandleWebhook(ctx, "stripe", []byte(`{}`), http.Header{})
	if !errors.Is(err, paymentdomain.ErrGatewayNotFound) {
		t.Fatalf("expected ErrGatewayNotFound, got %v", err)
	}
}

func TestHandleWebhookMarksIntentCompleted(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := setupPaymentService(t, db)

	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO payment_intents (id, order_number, gateway, download_token, customer_name, customer_email,
		                              amount_cents, currency, items, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1, "ORD-7", "cryptomus", "token-7", "Buyer", "buyer@example.com",
		1998, "USD", `[]`, "pending", now, now,
	).Error; err != nil {
		t.Fatalf("seed intent: %v", err)
	}

	payload := signedCryptomusPayload(t, "ORD-7", "token-7", "19.98")
	headers := http.Header{}
	headers.Set("sign", cryptomus.Sign(payload, testAPIKey))

	if err := svc.HandleWebhook(ctx, "cryptomus", payload, headers); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}

	var status string
	if err := db.Raw("SELECT status FROM payment_intents WHERE order_number = ?", "ORD-7").Scan(&status).Error; err != nil {
		t.Fatalf("scan intent status: %v", err)
	}
	if status != "completed" {
		t.Fatalf("expected intent completed, got %s", status)
	}
}

func setupPaymentService(t *testing.T, db *gorm.DB) paymentdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(10)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	cfg := config.Config{
		Currency:    "USD",
		DownloadTTL: 24 * time.Hour,
		Cryptomus: config.CryptomusConfig{
			APIKey:     testAPIKey,
			MerchantID: "merchant_1",
		},
	}
	holder, err := config.NewGatewayConfigHolder(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("gateway config holder: %v", err)
	}

	return paymentservice.New(paymentservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Cfg:       cfg,
		Creds:     holder,
		Registry:  gateways.NewRegistry(cryptomus.NewFactory(), paypal.NewFactory("Shop")),
		Repo:      paymentrepo.Provide(),
		OrderRepo: orderrepo.Provide(),
	})
}

func signedCryptomusPayload(t *testing.T, orderNumber, token, amount string) []byte {
	t.Helper()

	blob, err := json.Marshal(paymentdomain.OrderContext{
		CustomerName:  "Buyer",
		CustomerEmail: "buyer@example.com",
		Items: []paymentdomain.ContextItem{
			{ProductID: "1001", Quantity: 1, Title: "Go Basics", Price: "9.99"},
			{ProductID: "1002", Quantity: 1, Title: "Advanced Go", Price: "9.99"},
		},
		DownloadToken: token,
		OrderNumber:   orderNumber,
	})
	if err != nil {
		t.Fatalf("marshal context: %v", err)
	}
	quoted, err := json.Marshal(string(blob))
	if err != nil {
		t.Fatalf("quote blob: %v", err)
	}

	return []byte(fmt.Sprintf(
		`{"order_id":%q,"status":"paid","payment_amount":%q,"uuid":"uuid-%s","additional_data":%s}`,
		orderNumber, amount, orderNumber, quoted,
	))
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_payment_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		`CREATE TABLE payment_intents (
			id BIGINT PRIMARY KEY,
			order_number TEXT NOT NULL,
			gateway TEXT NOT NULL,
			download_token TEXT NOT NULL,
			customer_name TEXT,
			customer_email TEXT,
			amount_cents BIGINT NOT NULL DEFAULT 0,
			currency TEXT NOT NULL,
			items TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_payment_intents_order_number ON payment_intents(order_number)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

func assertCount(t *testing.T, db *gorm.DB, query string, expected int64) {
	t.Helper()

	var count int64
	if err := db.Raw(query).Scan(&count).Error; err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != expected {
		t.Fatalf("expected %d, got %d", expected, count)
	}
}
