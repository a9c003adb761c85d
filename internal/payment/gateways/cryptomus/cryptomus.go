// Package cryptomus integrates the Cryptomus-style crypto payment
// processor. The md5 request signature is a wire-compat requirement of the
// processor and is confined to this package.
package cryptomus

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/payment/domain"
	"github.com/neocommerce/storefront/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	Name           = "cryptomus"
	defaultBaseURL = "https://api.cryptomus.com"

	StatusPaid     = "paid"
	StatusPaidOver = "paid_over"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Name() string {
	return Name
}

func (f *Factory) New(creds config.GatewayCredentials) (domain.Gateway, error) {
	apiKey := strings.TrimSpace(creds.Cryptomus.APIKey)
	merchantID := strings.TrimSpace(creds.Cryptomus.MerchantID)
	if apiKey == "" || merchantID == "" {
		return nil, domain.ErrGatewayUnavailable
	}
	return newGateway(apiKey, merchantID, defaultBaseURL, nil), nil
}

type Gateway struct {
	apiKey     string
	merchantID string
	baseURL    string
	client     *http.Client
}

func newGateway(apiKey, merchantID, baseURL string, client *http.Client) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{
		apiKey:     apiKey,
		merchantID: merchantID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     client,
	}
}

func (g *Gateway) Name() string { return Name }

type createPaymentPayload struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	OrderID           string `json:"order_id"`
	URLReturn         string `json:"url_return"`
	URLCallback       string `json:"url_callback"`
	IsPaymentMultiple bool   `json:"is_payment_multiple"`
	Lifetime          int    `json:"lifetime"`
	AdditionalData    string `json:"additional_data"`
}

type createPaymentResult struct {
	State  int    `json:"state"`
	Result struct {
		URL  string `json:"url"`
		UUID string `json:"uuid"`
	} `json:"result"`
	Message string `json:"message"`
}

func (g *Gateway) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.CreatePaymentResponse, error) {
	blob, err := json.Marshal(req.Context)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(createPaymentPayload{
		Amount:            money.FormatCents(req.AmountCents),
		Currency:          req.Currency,
		OrderID:           req.OrderNumber,
		URLReturn:         req.ReturnURL,
		URLCallback:       req.CallbackURL,
		IsPaymentMultiple: false,
		Lifetime:          3600,
		AdditionalData:    string(blob),
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payment", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("merchant", g.merchantID)
	httpReq.Header.Set("sign", Sign(body, g.apiKey))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, domain.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.ErrGatewayUnavailable
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.ErrGatewayUnavailable
	}

	var result createPaymentResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, domain.ErrGatewayUnavailable
	}
	if result.State != 0 || result.Result.URL == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrGatewayUnavailable, result.Message)
	}

	return &domain.CreatePaymentResponse{
		PaymentURL:       result.Result.URL,
		GatewayPaymentID: result.Result.UUID,
	}, nil
}

// Verify recomputes the webhook signature over the raw body and compares it
// to the sign header in constant time.
func (g *Gateway) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	_ = ctx
	signature := strings.TrimSpace(headers.Get("sign"))
	if signature == "" {
		return domain.ErrInvalidSignature
	}

	expected := Sign(payload, g.apiKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) != 1 {
		return domain.ErrInvalidSignature
	}
	return nil
}

type webhookPayload struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	PaymentAmount  string `json:"payment_amount"`
	UUID           string `json:"uuid"`
	AdditionalData string `json:"additional_data"`
}

func (g *Gateway) Parse(ctx context.Context, payload []byte) (*domain.CaptureEvent, error) {
	_ = ctx
	var event webhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	status := strings.TrimSpace(event.Status)
	switch status {
	case StatusPaid, StatusPaidOver:
	default:
		return nil, domain.ErrEventIgnored
	}

	amount, err := parseAmount(event.PaymentAmount)
	if err != nil {
		return nil, domain.ErrInvalidPayload
	}

	var orderCtx domain.OrderContext
	if err := json.Unmarshal([]byte(event.AdditionalData), &orderCtx); err != nil {
		return nil, domain.ErrMalformedMetadata
	}
	if orderCtx.OrderNumber == "" {
		orderCtx.OrderNumber = event.OrderID
	}

	return &domain.CaptureEvent{
		Gateway:          Name,
		EventType:        status,
		GatewayPaymentID: event.UUID,
		AmountCents:      amount,
		Currency:         "USD",
		Context:          orderCtx,
	}, nil
}

// Sign computes the legacy md5(body + apiKey) hex digest.
func Sign(body []byte, apiKey string) string {
	sum := md5.Sum(append(append([]byte{}, body...), []byte(apiKey)...))
	return hex.EncodeToString(sum[:])
}

// parseAmount tolerates crypto settlement amounts with sub-cent precision by
// rounding to the nearest cent.
func parseAmount(raw string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
