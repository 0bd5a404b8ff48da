package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageSuggester produces a cover message for a document and never fails
type MessageSuggester interface {
	SuggestOrDefault(ctx context.Context, documentName string) string
}

type SuggestionHandler struct {
	suggester MessageSuggester
}

func NewSuggestionHandler(suggester MessageSuggester) *SuggestionHandler {
	return &SuggestionHandler{suggester: suggester}
}

type SuggestionRequest struct {
	DocumentName string `json:"document_name" binding:"required"`
}

// Suggest returns a suggested message, falling back to the default when the service is unavailable
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_name is required", "field": "document_name"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": h.suggester.SuggestOrDefault(c.Request.Context(), req.DocumentName),
	})
}
