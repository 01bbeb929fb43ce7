package handlers

import (
	"net/http"

	"evidence-agent/database"
	"evidence-agent/web/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EvidenceHandler struct {
	service *services.EvidenceService
	store   *database.PostgresStore
	logger  *zap.Logger
}

func NewEvidenceHandler(service *services.EvidenceService, store *database.PostgresStore, logger *zap.Logger) *EvidenceHandler {
	return &EvidenceHandler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// Upload accepts one evidence file as multipart form data.
func (h *EvidenceHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	record, err := h.service.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *EvidenceHandler) List(c *gin.Context) {
	files, err := h.store.ListEvidenceFiles(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *EvidenceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	if err := h.store.DeleteEvidenceFile(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Transcript returns the sanitized segments of one processed file.
func (h *EvidenceHandler) Transcript(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	content, err := h.store.GetProcessedContent(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

type processRequest struct {
	FileIDs []uuid.UUID `json:"fileIds"`
}

// Process queues files for transcription/sanitization. With an empty body
// every pending or failed file is queued.
func (h *EvidenceHandler) Process(c *gin.Context) {
	var req processRequest
	_ = c.ShouldBindJSON(&req)

	queued, err := h.service.StartProcessing(c.Request.Context(), req.FileIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": queued})
}

// StopProcessing halts the pipeline after the file currently in flight.
func (h *EvidenceHandler) StopProcessing(c *gin.Context) {
	h.service.StopProcessing()
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}
