package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
)

// RegisterOrdersRoutes registers GET /orders/:id.
func RegisterOrdersRoutes(r gin.IRouter, cfg HandlerConfig) {
	cfg = cfg.withDefaults()

	r.GET("/orders/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_order_id"})
			return
		}

		order, err := cfg.Finder.Get(c.Request.Context(), uint32(id))
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		if err != nil {
			cfg.Logger.Error("order lookup failed", zap.Uint64("order_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed", "detail": err.Error()})
			return
		}

		c.JSON(http.StatusOK, order)
	})
}
