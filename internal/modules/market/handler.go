package market

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/market-indices", h.indices)
}

// indices GET /market-indices. The body is a bare array.
func (h *Handler) indices(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Indices(c.Request.Context()))
}
