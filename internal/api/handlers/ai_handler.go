package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teja-0311/Kisanmarket/internal/ai"
)

// AIHandler proxies farming questions to the assistant.
type AIHandler struct {
	assistant ai.IAssistant
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(assistant ai.IAssistant) *AIHandler {
	return &AIHandler{assistant: assistant}
}

// Ask handles POST /api/ai
func (h *AIHandler) Ask(c *gin.Context) {
	var req struct {
		Query    string `json:"query" binding:"required"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	reply, err := h.assistant.Ask(c.Request.Context(), req.Query, req.Language)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
