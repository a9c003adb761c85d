package server

import (
	"errors"
	"net/http"

	categorydomain "github.com/neocommerce/storefront/internal/category/domain"
	"github.com/neocommerce/storefront/internal/checkout"
	"github.com/neocommerce/storefront/internal/download"
	orderdomain "github.com/neocommerce/storefront/internal/order/domain"
	paymentdomain "github.com/neocommerce/storefront/internal/payment/domain"
	productdomain "github.com/neocommerce/storefront/internal/product/domain"
	settingsdomain "github.com/neocommerce/storefront/internal/settings/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTooManyRequest = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

var validationFields = map[string]string{
	"empty_cart":          "items",
	"invalid_quantity":    "items",
	"product_unavailable": "items",
	"missing_email":       "customerEmail",
	"invalid_total":       "totalAmount",
	"total_mismatch":      "totalAmount",
	"invalid_title":       "title",
	"invalid_price":       "price",
	"invalid_name":        "name",
	"invalid_id":          "id",
	"invalid_status":      "status",
	"invalid_page_token":  "page_token",
	"gateway_disabled":    "gateway",
}

func asValidationErrors(err error) *ValidationErrors {
	var single *ValidationErrors
	if errors.As(err, &single) {
		return single
	}
	var value ValidationErrors
	if errors.As(err, &value) {
		return &value
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrProductUnavailable),
		errors.Is(err, checkout.ErrMissingEmail),
		errors.Is(err, checkout.ErrInvalidTotal),
		errors.Is(err, checkout.ErrTotalMismatch),
		errors.Is(err, productdomain.ErrInvalidTitle),
		errors.Is(err, productdomain.ErrInvalidPrice),
		errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, categorydomain.ErrInvalidName),
		errors.Is(err, categorydomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrInvalidPageToken),
		errors.Is(err, paymentdomain.ErrGatewayDisabled),
		errors.Is(err, paymentdomain.ErrInvalidPayload):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, settingsdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrGatewayNotFound),
		errors.Is(err, download.ErrNotFoundOrExpired),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationFields[code],
					Code:    code,
					Message: "validation error",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "invalid signature",
		}
	case errors.Is(err, categorydomain.ErrSlugTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequest):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, download.ErrFileUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "file_unavailable",
			Message: "file unavailable",
		}
	case errors.Is(err, paymentdomain.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "payment unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog buckets an error for the request log without leaking
// its message.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status == http.StatusTooManyRequests:
		return "rate_limited", payload.Type
	default:
		return "client_error", payload.Type
	}
}
