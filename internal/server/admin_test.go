package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neocommerce/storefront/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func newAdminRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)

	srv := &Server{cfg: cfg}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/admin/ping", srv.AdminRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func doAdminRequest(router *gin.Engine, authorization string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp.Code
}

func TestAdminRequiredHashedToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	router := newAdminRouter(config.Config{
		Environment:    "production",
		AdminTokenHash: string(hash),
	})

	if code := doAdminRequest(router, "Bearer s3cret"); code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", code)
	}
	if code := doAdminRequest(router, "Bearer wrong"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", code)
	}
	if code := doAdminRequest(router, ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", code)
	}
	if code := doAdminRequest(router, "Basic s3cret"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with non-bearer scheme, got %d", code)
	}
}

func TestAdminRequiredPlainTokenOutsideProduction(t *testing.T) {
	router := newAdminRouter(config.Config{
		Environment: "development",
		AdminToken:  "dev-token",
	})

	if code := doAdminRequest(router, "Bearer dev-token"); code != http.StatusOK {
		t.Fatalf("expected 200 with dev token, got %d", code)
	}
	if code := doAdminRequest(router, "Bearer wrong"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", code)
	}
}

func TestAdminRequiredPlainTokenRejectedInProduction(t *testing.T) {
	router := newAdminRouter(config.Config{
		Environment: "production",
		AdminToken:  "dev-token",
	})

	if code := doAdminRequest(router, "Bearer dev-token"); code != http.StatusUnauthorized {
		t.Fatalf("plaintext admin token must not work in production, got %d", code)
	}
}

func TestAdminRequiredNoTokenConfigured(t *testing.T) {
	router := newAdminRouter(config.Config{Environment: "development"})

	if code := doAdminRequest(router, "Bearer anything"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no admin token configured, got %d", code)
	}
}
