package handlers

import (
	"net/http"
	"strings"
	"time"

	"evidence-agent/analysis"
	"evidence-agent/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FactsHandler struct {
	store  *database.PostgresStore
	logger *zap.Logger
}

func NewFactsHandler(store *database.PostgresStore, logger *zap.Logger) *FactsHandler {
	return &FactsHandler{store: store, logger: logger}
}

type factRequest struct {
	Text string `json:"text"`
}

func (h *FactsHandler) Create(c *gin.Context) {
	var req factRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fact text is required"})
		return
	}

	fact := analysis.Fact{
		ID:        uuid.New().String(),
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: time.Now(),
	}
	if err := h.store.CreateFact(c.Request.Context(), fact); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, fact)
}

func (h *FactsHandler) List(c *gin.Context) {
	facts, err := h.store.ListFacts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, facts)
}

func (h *FactsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fact id"})
		return
	}
	var req factRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fact text is required"})
		return
	}
	if err := h.store.UpdateFact(c.Request.Context(), id, strings.TrimSpace(req.Text)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FactsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fact id"})
		return
	}
	if err := h.store.DeleteFact(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
