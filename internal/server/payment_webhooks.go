package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/neocommerce/storefront/internal/payment/domain"
)

// maxWebhookBody caps gateway callback payloads at 1 MiB.
const maxWebhookBody = 1 << 20

// HandlePaymentWebhook ingests a gateway callback. Deliveries that were
// already committed, ignored event types, and payloads the gateway signed
// but we cannot commit are all acknowledged with 200 so the gateway stops
// retrying them.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.paymentSvc.HandleWebhook(c.Request.Context(), c.Param("gateway"), payload, c.Request.Header)
	if err != nil && !acknowledgeable(err) {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func acknowledgeable(err error) bool {
	switch {
	case errors.Is(err, paymentdomain.ErrDuplicateDelivery),
		errors.Is(err, paymentdomain.ErrEventIgnored),
		errors.Is(err, paymentdomain.ErrMalformedMetadata),
		errors.Is(err, paymentdomain.ErrAmountMismatch):
		return true
	default:
		return false
	}
}
