package classification

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tender-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the classification resolver.
type Handler struct {
	Resolver Resolver
}

// NewHandler constructs a Handler.
func NewHandler(resolver Resolver) *Handler {
	return &Handler{Resolver: resolver}
}

// RegisterRoutes attaches classification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tender/:id/classification", h.getClassification)
}

func (h *Handler) getClassification(c *gin.Context) {
	result, err := h.Resolver.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Fail(c, http.StatusNotFound, "not_found", "tender not found")
		case errors.Is(err, ErrUpstreamUnavailable):
			respond.Fail(c, http.StatusBadGateway, "upstream_unavailable", "failed to fetch classification")
		default:
			respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to fetch classification")
		}
		return
	}

	respond.OK(c, gin.H{
		"classification":          result.Label,
		"requires_classification": result.RequiresClassification,
		"bundles":                 result.Bundles,
	})
}
