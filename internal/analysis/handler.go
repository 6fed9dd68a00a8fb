package analysis

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tender-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tender/:id/analyze", h.startAnalysis)
	rg.GET("/tender/:id/analysis-status", h.getStatus)
	rg.GET("/tender/:id/analysis-result", h.getResult)
	rg.POST("/batch-analyze", h.startBatch)
}

type startRequest struct {
	TenderName      string `json:"tenderName"`
	ReferenceNumber string `json:"referenceNumber"`
}

type batchRequest struct {
	TenderIDs []string `json:"tender_ids"`
}

func (h *Handler) startAnalysis(c *gin.Context) {
	var req startRequest
	// The body is optional metadata; an absent or empty body is fine.
	_ = c.ShouldBindJSON(&req)

	tenderID := c.Param("id")
	err := h.Service.Start(c.Request.Context(), tenderID, StartContext{
		TenderName:      req.TenderName,
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Fail(c, http.StatusNotFound, "not_found", "tender id is required")
		case errors.Is(err, ErrAlreadyRunning):
			respond.Fail(c, http.StatusConflict, "already_running", "analysis already in progress for this tender")
		default:
			respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to start analysis")
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"success":   true,
		"message":   "analysis started",
		"tender_id": tenderID,
		"status":    StatusQueued,
	})
}

func (h *Handler) getStatus(c *gin.Context) {
	job, err := h.Service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Fail(c, http.StatusNotFound, "not_found", "no analysis found for this tender")
			return
		}
		respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to load analysis status")
		return
	}

	body := gin.H{
		"tender_id": job.TenderID,
		"status":    job.Status,
		"progress":  job.Progress,
		"step":      job.Step,
	}
	if job.Status == StatusError {
		body["error_code"] = job.ErrorCode
		body["error"] = job.ErrorMessage
	}
	respond.OK(c, body)
}

func (h *Handler) getResult(c *gin.Context) {
	result, err := h.Service.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Fail(c, http.StatusNotFound, "not_found", "no analysis found for this tender")
		case errors.Is(err, ErrNotReady):
			respond.Fail(c, http.StatusConflict, "not_ready", "analysis has not completed yet")
		default:
			respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to load analysis result")
		}
		return
	}

	respond.OK(c, gin.H{"result": result})
}

func (h *Handler) startBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, "invalid_request", "tender_ids is required")
		return
	}
	if len(req.TenderIDs) == 0 {
		respond.Fail(c, http.StatusBadRequest, "invalid_request", "tender_ids is required")
		return
	}

	started, failed, err := h.Service.StartBatch(c.Request.Context(), req.TenderIDs)
	if err != nil {
		if errors.Is(err, ErrTooManyTenders) {
			respond.Fail(c, http.StatusBadRequest, "too_many_tenders",
				fmt.Sprintf("batch size exceeds the maximum of %d tenders", maxBatchSize))
			return
		}
		respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to start batch analysis")
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"success": true,
		"message": fmt.Sprintf("batch analysis started for %d tenders", len(started)),
		"started": started,
		"failed":  failed,
	})
}
