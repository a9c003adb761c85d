package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/neocommerce/storefront/internal/order/domain"
	"github.com/neocommerce/storefront/pkg/db/pagination"
)

func (s *Server) AdminListOrders(c *gin.Context) {
	pageSize := 0
	if raw := c.Query("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("page_size", "invalid_page_size", "validation error"))
			return
		}
		pageSize = parsed
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListRequest{
		PaymentStatus: c.Query("status"),
		Pagination: pagination.Pagination{
			PageToken: c.Query("page_token"),
			PageSize:  pageSize,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
