package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neocommerce/storefront/internal/checkout"
)

func (s *Server) CreateCheckout(c *gin.Context) {
	var req checkout.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Gateway = c.Param("gateway")

	resp, err := s.checkoutSvc.CreateIntent(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"paymentUrl": resp.PaymentURL,
		"orderId":    resp.OrderNumber,
		"paymentId":  resp.PaymentID,
	})
}
