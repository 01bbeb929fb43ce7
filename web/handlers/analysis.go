package handlers

import (
	"net/http"

	"evidence-agent/analysis"
	"evidence-agent/database"
	"evidence-agent/web/format"
	"evidence-agent/web/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AnalysisHandler struct {
	service *services.AnalysisService
	store   *database.PostgresStore
	logger  *zap.Logger
}

func NewAnalysisHandler(service *services.AnalysisService, store *database.PostgresStore, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

type runAnalysisRequest struct {
	Name string `json:"name"`
}

// Run executes a full analysis and returns the saved report.
func (h *AnalysisHandler) Run(c *gin.Context) {
	var req runAnalysisRequest
	_ = c.ShouldBindJSON(&req)

	report, err := h.service.Run(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *AnalysisHandler) List(c *gin.Context) {
	reports, err := h.store.ListReports(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export renders the report as Markdown (default) or HTML.
func (h *AnalysisHandler) Export(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	if c.Query("format") == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(format.ReportHTML(report)))
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(format.ReportMarkdown(report)))
}

type updateReportRequest struct {
	Name              *string                  `json:"name"`
	GeneralConclusion *string                  `json:"generalConclusion"`
	Results           *[]analysis.FactAnalysis `json:"results"`
}

// Update applies user edits: rename, conclusion edit, or result edits.
func (h *AnalysisHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	if req.Name != nil {
		if err := h.store.RenameReport(ctx, id, *req.Name); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}
	if req.GeneralConclusion != nil {
		if err := h.store.UpdateReportConclusion(ctx, id, *req.GeneralConclusion); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}
	if req.Results != nil {
		if err := h.store.UpdateReportResults(ctx, id, *req.Results); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *AnalysisHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	if err := h.store.DeleteReport(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AnalysisHandler) loadReport(c *gin.Context) (analysis.AnalysisReport, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return analysis.AnalysisReport{}, false
	}
	report, err := h.store.GetReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return analysis.AnalysisReport{}, false
	}
	return report, true
}
