package cache

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tender-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the cache store.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches cache routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cache/stats", h.getStats)
	rg.POST("/cache/clear", h.clear)
}

func (h *Handler) getStats(c *gin.Context) {
	respond.OK(c, gin.H{"stats": h.Store.Stats()})
}

func (h *Handler) clear(c *gin.Context) {
	var req struct {
		CacheType string `json:"cache_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CacheType == "" {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "cache_type is required")
		return
	}

	removed := h.Store.Clear(c.Request.Context(), req.CacheType)
	respond.OK(c, gin.H{"removed": removed})
}
