package handlers

import (
	"net/http"
	"strings"

	"evidence-agent/llmclient"
	"evidence-agent/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	service *services.ChatService
	logger  *zap.Logger
}

func NewChatHandler(service *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

type chatRequest struct {
	Question string              `json:"question"`
	History  []llmclient.Message `json:"history"`
}

// Send answers one evidence-grounded question. The reply carries resolved
// citations for every "[arquivo @ posição]" marker in the answer.
func (h *ChatHandler) Send(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	reply, err := h.service.Ask(c.Request.Context(), req.History, req.Question)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
