// Package paypal integrates the PayPal REST checkout and webhook APIs.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/payment/domain"
	"github.com/neocommerce/storefront/pkg/money"
)

const (
	Name = "paypal"

	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"

	// customIDLimit is PayPal's cap on the purchase unit custom_id field.
	customIDLimit = 255
)

type Factory struct {
	brandName string
}

func NewFactory(brandName string) *Factory {
	return &Factory{brandName: brandName}
}

func (f *Factory) Name() string {
	return Name
}

func (f *Factory) New(creds config.GatewayCredentials) (domain.Gateway, error) {
	clientID := strings.TrimSpace(creds.PayPal.ClientID)
	secret := strings.TrimSpace(creds.PayPal.Secret)
	if clientID == "" || secret == "" {
		return nil, domain.ErrGatewayUnavailable
	}

	baseURL := sandboxBaseURL
	if strings.EqualFold(creds.PayPal.Mode, "live") {
		baseURL = liveBaseURL
	}

	return newGateway(clientID, secret, strings.TrimSpace(creds.PayPal.WebhookID), f.brandName, baseURL, nil), nil
}

type Gateway struct {
	clientID  string
	secret    string
	webhookID string
	brandName string
	baseURL   string
	client    *http.Client
}

func newGateway(clientID, secret, webhookID, brandName, baseURL string, client *http.Client) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{
		clientID:  clientID,
		secret:    secret,
		webhookID: webhookID,
		brandName: brandName,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    client,
	}
}

func (g *Gateway) Name() string { return Name }

// VerificationConfigured reports whether inbound webhook signatures can be
// checked. Without a webhook id the processor offers no verification API.
func (g *Gateway) VerificationConfigured() bool {
	return g.webhookID != ""
}

func (g *Gateway) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.clientID, g.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", domain.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.ErrGatewayUnavailable
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&token); err != nil {
		return "", domain.ErrGatewayUnavailable
	}
	if token.AccessToken == "" {
		return "", domain.ErrGatewayUnavailable
	}
	return token.AccessToken, nil
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	Amount      struct {
		CurrencyCode string `json:"currency_code"`
		Value        string `json:"value"`
	} `json:"amount"`
	Description string `json:"description,omitempty"`
	CustomID    string `json:"custom_id"`
}

type createOrderPayload struct {
	Intent             string         `json:"intent"`
	PurchaseUnits      []purchaseUnit `json:"purchase_units"`
	ApplicationContext struct {
		ReturnURL  string `json:"return_url"`
		CancelURL  string `json:"cancel_url"`
		BrandName  string `json:"brand_name,omitempty"`
		UserAction string `json:"user_action"`
	} `json:"application_context"`
}

func (g *Gateway) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest) (*domain.CreatePaymentResponse, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	customID, err := encodeCustomID(req.Context)
	if err != nil {
		return nil, err
	}

	var unit purchaseUnit
	unit.ReferenceID = req.OrderNumber
	unit.Amount.CurrencyCode = req.Currency
	unit.Amount.Value = money.FormatCents(req.AmountCents)
	unit.Description = req.Description
	unit.CustomID = customID

	payload := createOrderPayload{
		Intent:        "CAPTURE",
		PurchaseUnits: []purchaseUnit{unit},
	}
	payload.ApplicationContext.ReturnURL = req.ReturnURL
	payload.ApplicationContext.CancelURL = req.CancelURL
	payload.ApplicationContext.BrandName = g.brandName
	payload.ApplicationContext.UserAction = "PAY_NOW"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, domain.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.ErrGatewayUnavailable
	}

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return nil, domain.ErrGatewayUnavailable
	}

	for _, link := range result.Links {
		if link.Rel == "approve" {
			return &domain.CreatePaymentResponse{
				PaymentURL:       link.Href,
				GatewayPaymentID: result.ID,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: approve link missing", domain.ErrGatewayUnavailable)
}

// Verify calls the processor's verify-webhook-signature endpoint with the
// transmission headers. Callers must not invoke it when no webhook id is
// configured.
func (g *Gateway) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if g.webhookID == "" {
		return nil
	}

	transmissionID := headers.Get("Paypal-Transmission-Id")
	transmissionTime := headers.Get("Paypal-Transmission-Time")
	certURL := headers.Get("Paypal-Cert-Url")
	authAlgo := headers.Get("Paypal-Auth-Algo")
	transmissionSig := headers.Get("Paypal-Transmission-Sig")
	if transmissionID == "" || transmissionTime == "" || certURL == "" || authAlgo == "" || transmissionSig == "" {
		return domain.ErrInvalidSignature
	}

	token, err := g.accessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"transmission_id":   transmissionID,
		"transmission_time": transmissionTime,
		"cert_url":          certURL,
		"auth_algo":         authAlgo,
		"transmission_sig":  transmissionSig,
		"webhook_id":        g.webhookID,
		"webhook_event":     json.RawMessage(payload),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/notifications/verify-webhook-signature", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ErrInvalidSignature
	}

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return domain.ErrInvalidSignature
	}
	if result.VerificationStatus != "SUCCESS" {
		return domain.ErrInvalidSignature
	}
	return nil
}

type webhookEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID            string `json:"id"`
		PurchaseUnits []struct {
			ReferenceID string `json:"reference_id"`
			Amount      struct {
				CurrencyCode string `json:"currency_code"`
				Value        string `json:"value"`
			} `json:"amount"`
			CustomID string `json:"custom_id"`
		} `json:"purchase_units"`
	} `json:"resource"`
}

func (g *Gateway) Parse(ctx context.Context, payload []byte) (*domain.CaptureEvent, error) {
	_ = ctx
	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	if event.EventType != EventCaptureCompleted {
		return nil, domain.ErrEventIgnored
	}
	if len(event.Resource.PurchaseUnits) == 0 {
		return nil, domain.ErrInvalidPayload
	}
	unit := event.Resource.PurchaseUnits[0]

	amount, err := money.ParseCents(unit.Amount.Value)
	if err != nil {
		return nil, domain.ErrInvalidPayload
	}

	var orderCtx domain.OrderContext
	if err := json.Unmarshal([]byte(unit.CustomID), &orderCtx); err != nil {
		return nil, domain.ErrMalformedMetadata
	}
	if orderCtx.OrderNumber == "" {
		orderCtx.OrderNumber = unit.ReferenceID
	}

	currency := unit.Amount.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	return &domain.CaptureEvent{
		Gateway:          Name,
		EventType:        event.EventType,
		GatewayPaymentID: event.Resource.ID,
		AmountCents:      amount,
		Currency:         currency,
		Context:          orderCtx,
	}, nil
}

// encodeCustomID marshals the order context into the custom_id field. When
// the blob would exceed the processor's 255 byte cap, item titles are
// dropped; ids and prices are always kept.
func encodeCustomID(orderCtx domain.OrderContext) (string, error) {
	blob, err := json.Marshal(orderCtx)
	if err != nil {
		return "", err
	}
	if len(blob) <= customIDLimit {
		return string(blob), nil
	}

	trimmed := orderCtx
	trimmed.Items = make([]domain.ContextItem, len(orderCtx.Items))
	for i, item := range orderCtx.Items {
		item.Title = ""
		trimmed.Items[i] = item
	}

	blob, err = json.Marshal(trimmed)
	if err != nil {
		return "", err
	}
	return string(blob), nil
}
