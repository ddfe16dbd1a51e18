// Package api exposes the pipeline trigger and alert read endpoints.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
	"newsdigest/internal/usecase"
)

// Handler serves the HTTP surface of the pipeline.
type Handler struct {
	pipeline *usecase.Pipeline
	store    ports.AlertStore
	logger   *slog.Logger
}

// NewHandler wires the pipeline and the alert store.
func NewHandler(pipeline *usecase.Pipeline, store ports.AlertStore, logger *slog.Logger) *Handler {
	return &Handler{pipeline: pipeline, store: store, logger: logger}
}

// RegisterRoutes attaches all endpoints to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/news")
	{
		api.POST("/run", h.RunPipeline)
		api.GET("/alerts", h.ListAlerts)
		api.POST("/alerts/:id/read", h.MarkAlertRead)
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "newsdigest"})
}

// RunPipeline triggers one pipeline run and returns its summary. The caller
// always receives a structured result; only a whole-run failure (client
// directory unreachable) maps to an error response.
func (h *Handler) RunPipeline(c *gin.Context) {
	summary, err := h.pipeline.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("pipeline run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListAlerts returns persisted alerts narrowed by query parameters.
func (h *Handler) ListAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	filter := ports.AlertFilter{
		ClientID:   c.Query("clientId"),
		Category:   c.Query("category"),
		OnlyUnread: c.Query("unread") == "true",
		Limit:      limit,
	}
	if p := c.Query("priority"); p != "" && p != "all" {
		filter.Priority = domain.ParsePriority(p)
	}

	alerts, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list alerts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// MarkAlertRead flips the read flag on a single alert.
func (h *Handler) MarkAlertRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert id is required"})
		return
	}

	if err := h.store.MarkRead(c.Request.Context(), id); err != nil {
		h.logger.Error("mark read failed", "alert", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
