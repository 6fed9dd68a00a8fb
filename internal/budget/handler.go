package budget

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tender-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the budget service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches cost routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/costs/summary", h.getSummary)
	rg.GET("/costs/recent", h.getRecent)
	rg.POST("/costs/budget", h.setBudget)
}

func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.Svc.Summary(c.Request.Context(), c.Query("month"))
	if err != nil {
		respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to fetch cost summary")
		return
	}

	respond.OK(c, gin.H{
		"summary": gin.H{
			"current_month": summary,
		},
	})
}

func (h *Handler) getRecent(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.Svc.Recent(c.Request.Context(), limit)
	if err != nil {
		respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to list recent charges")
		return
	}

	analyses := make([]gin.H, 0, len(events))
	for _, e := range events {
		analyses = append(analyses, gin.H{
			"tender_id": e.TenderID,
			"costs":     e.Costs,
			"timestamp": e.Timestamp,
		})
	}

	respond.OK(c, gin.H{"analyses": analyses})
}

func (h *Handler) setBudget(c *gin.Context) {
	var req struct {
		BudgetLimit float64 `json:"budget_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "budget_limit is required")
		return
	}

	if err := h.Svc.SetLimit(c.Request.Context(), req.BudgetLimit); err != nil {
		switch {
		case errors.Is(err, ErrInvalidLimit):
			respond.Fail(c, http.StatusBadRequest, "validation_error", "budget limit must be greater than zero")
		default:
			respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to set budget limit")
		}
		return
	}

	respond.OK(c, gin.H{"budget_limit": req.BudgetLimit})
}
