package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/product/domain"
	productrepo "github.com/neocommerce/storefront/internal/product/repository"
	productservice "github.com/neocommerce/storefront/internal/product/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateAndGetProduct(t *testing.T) {
	ctx := context.Background()
	svc := setupProductService(t)

	created, err := svc.Create(ctx, domain.CreateRequest{
		Title:           "Go Basics",
		Description:     "An ebook",
		OriginalPrice:   "12.00",
		DiscountedPrice: "9.99",
		FileURL:         "https://files.example.com/book.epub",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.OriginalPrice != "12.00" || created.DiscountedPrice != "9.99" {
		t.Fatalf("unexpected prices %s/%s", created.OriginalPrice, created.DiscountedPrice)
	}
	if created.FileURL == "" {
		t.Fatalf("admin response must carry the file url")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Go Basics" {
		t.Fatalf("unexpected title %s", got.Title)
	}
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc := setupProductService(t)

	if _, err := svc.Create(ctx, domain.CreateRequest{Title: "  ", OriginalPrice: "9.99"}); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Title: "X", OriginalPrice: "abc"}); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Title: "X", OriginalPrice: "9.99", DiscountedPrice: "19.99"}); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("discount above original: expected ErrInvalidPrice, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Title: "X", OriginalPrice: "9.999"}); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("sub-cent price: expected ErrInvalidPrice, got %v", err)
	}
}

func TestPublicSurfaceHidesFileURLAndInactive(t *testing.T) {
	ctx := context.Background()
	svc := setupProductService(t)

	created, err := svc.Create(ctx, domain.CreateRequest{
		Title:         "Go Basics",
		OriginalPrice: "9.99",
		FileURL:       "https://files.example.com/book.epub",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	public, err := svc.PublicGet(ctx, created.ID)
	if err != nil {
		t.Fatalf("public get: %v", err)
	}
	if public.FileURL != "" {
		t.Fatalf("file url leaked to public surface: %s", public.FileURL)
	}

	if _, err := svc.Archive(ctx, created.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	if _, err := svc.PublicGet(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("archived product should 404 publicly, got %v", err)
	}

	// The admin surface still sees it.
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("admin get after archive: %v", err)
	}
	if got.Active {
		t.Fatalf("expected archived product to be inactive")
	}
}

func TestPublicListFiltersInactive(t *testing.T) {
	ctx := context.Background()
	svc := setupProductService(t)

	active, err := svc.Create(ctx, domain.CreateRequest{Title: "Active", OriginalPrice: "9.99"})
	if err != nil {
		t.Fatalf("create active: %v", err)
	}
	archived, err := svc.Create(ctx, domain.CreateRequest{Title: "Archived", OriginalPrice: "9.99"})
	if err != nil {
		t.Fatalf("create archived: %v", err)
	}
	if _, err := svc.Archive(ctx, archived.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	public, err := svc.PublicList(ctx)
	if err != nil {
		t.Fatalf("public list: %v", err)
	}
	if len(public) != 1 || public[0].ID != active.ID {
		t.Fatalf("expected only the active product, got %+v", public)
	}

	all, err := svc.List(ctx, domain.ListRequest{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both products on admin list, got %d", len(all))
	}
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc := setupProductService(t)

	created, err := svc.Create(ctx, domain.CreateRequest{Title: "Go Basics", OriginalPrice: "12.00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Go Basics, 2nd Edition"
	discounted := "8.00"
	updated, err := svc.Update(ctx, domain.UpdateRequest{
		ID:              created.ID,
		Title:           &title,
		DiscountedPrice: &discounted,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("unexpected title %s", updated.Title)
	}
	if updated.DiscountedPrice != "8.00" {
		t.Fatalf("unexpected discounted price %s", updated.DiscountedPrice)
	}

	bad := "99.00"
	if _, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, DiscountedPrice: &bad}); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("discount above original: expected ErrInvalidPrice, got %v", err)
	}
}

func TestGetUnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc := setupProductService(t)

	if _, err := svc.Get(ctx, "999999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, "not-a-number"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func setupProductService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_product_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.Exec(`CREATE TABLE products (
		id BIGINT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		original_price_cents BIGINT NOT NULL DEFAULT 0,
		discounted_price_cents BIGINT NOT NULL DEFAULT 0,
		category_id BIGINT,
		cover_image_url TEXT,
		file_url TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`).Error; err != nil {
		t.Fatalf("schema exec failed: %v", err)
	}

	node, err := snowflake.NewNode(15)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	return productservice.New(productservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  productrepo.Provide(),
	})
}
