package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/services"
)

// ReportsHandler exposes report generation, retrieval and distribution.
type ReportsHandler struct {
	reports *services.ReportService
	logger  *logrus.Logger
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(reports *services.ReportService, logger *logrus.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, logger: logger}
}

// CreateReport handles POST /api/v1/reports
func (h *ReportsHandler) CreateReport(c *gin.Context) {
	var req services.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	report, err := h.reports.Generate(c.Request.Context(), req)
	if err != nil {
		var genErr *services.ReportGenerationError
		if errors.As(err, &genErr) {
			// The failed report was persisted; surface it with the error.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "report": report})
			return
		}
		h.logger.Errorf("report generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, report)
}

// GetReport handles GET /api/v1/reports/:id
func (h *ReportsHandler) GetReport(c *gin.Context) {
	report, err := h.reports.LoadReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// DistributeReport handles POST /api/v1/reports/:id/distribute
func (h *ReportsHandler) DistributeReport(c *gin.Context) {
	report, err := h.reports.LoadReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	if err := h.reports.Distribute(c.Request.Context(), report); err != nil {
		var distErr *services.DistributionError
		if errors.As(err, &distErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "report": report})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteReport handles DELETE /api/v1/reports/:id
func (h *ReportsHandler) DeleteReport(c *gin.Context) {
	deleted, err := h.reports.DeleteReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Errorf("report delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
