package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type resolveDownloadRequest struct {
	Token string `json:"token"`
}

func (s *Server) ResolveDownload(c *gin.Context) {
	var req resolveDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resolution, err := s.downloadSvc.Resolve(c.Request.Context(), req.Token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resolution)
}

func (s *Server) DownloadFile(c *gin.Context) {
	token := c.Query("token")
	productID := c.Query("product_id")

	stream, err := s.downloadSvc.FetchFile(c.Request.Context(), token, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer stream.Body.Close()

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(stream.Filename))
	c.DataFromReader(http.StatusOK, -1, stream.ContentType, stream.Body, nil)
}
