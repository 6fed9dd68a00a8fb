package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tender-backend/internal/shared/server/respond"
	"tender-backend/internal/shared/telemetry"
)

// Handler wires the cookie-update endpoint to the session store.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/update-cookies", h.updateCookies)
}

func (h *Handler) updateCookies(c *gin.Context) {
	var req struct {
		Cookies map[string]string `json:"cookies"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Cookies) == 0 {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "cookies object is required")
		return
	}

	h.Store.Update(req.Cookies)
	telemetry.Info("session.cookies_updated", map[string]any{
		"num_cookies": len(req.Cookies),
	})

	respond.OK(c, gin.H{"message": "cookies updated"})
}
