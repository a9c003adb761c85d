package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/neocommerce/storefront/internal/payment/domain"
)

type fakePaymentService struct {
	err         error
	gateway     string
	lastPayload []byte
}

func (f *fakePaymentService) HandleWebhook(ctx context.Context, gateway string, payload []byte, headers http.Header) error {
	_ = ctx
	_ = headers
	f.gateway = gateway
	f.lastPayload = payload
	return f.err
}

func newWebhookRouter(svc paymentdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	srv := &Server{paymentSvc: svc}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/payments/webhooks/:gateway", srv.HandlePaymentWebhook)
	return router
}

func TestWebhookHandlerAcknowledgesCommit(t *testing.T) {
	svc := &fakePaymentService{}
	router := newWebhookRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/cryptomus", bytes.NewBufferString(`{"status":"paid"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.gateway != "cryptomus" {
		t.Fatalf("expected gateway param forwarded, got %q", svc.gateway)
	}
	if string(svc.lastPayload) != `{"status":"paid"}` {
		t.Fatalf("expected raw payload forwarded, got %q", svc.lastPayload)
	}
}

func TestWebhookHandlerAcknowledgesTerminalOutcomes(t *testing.T) {
	// The gateway must stop retrying deliveries we can classify but will
	// never commit.
	for _, err := range []error{
		paymentdomain.ErrDuplicateDelivery,
		paymentdomain.ErrEventIgnored,
		paymentdomain.ErrMalformedMetadata,
		paymentdomain.ErrAmountMismatch,
	} {
		router := newWebhookRouter(&fakePaymentService{err: err})

		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/cryptomus", bytes.NewBufferString(`{}`))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("%v: expected 200, got %d", err, resp.Code)
		}
	}
}

func TestWebhookHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{paymentdomain.ErrInvalidSignature, http.StatusForbidden},
		{paymentdomain.ErrGatewayNotFound, http.StatusNotFound},
		{paymentdomain.ErrInvalidPayload, http.StatusBadRequest},
		{paymentdomain.ErrGatewayUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		router := newWebhookRouter(&fakePaymentService{err: tc.err})

		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/cryptomus", bytes.NewBufferString(`{}`))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, resp.Code)
		}
	}
}
