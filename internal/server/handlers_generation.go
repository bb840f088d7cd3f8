package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ytza/ytza/internal/content"
	"github.com/ytza/ytza/internal/generation"
)

type generateThumbnailRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateThumbnail runs the raw-prompt image path: debit, generate, refund on
// failure. Prompt assembly is the caller's business here.
func (s *Server) GenerateThumbnail(c *gin.Context) {
	var req generateThumbnailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	imageURL, err := s.thumbnailSvc.Generate(c.Request.Context(), s.userID(c), sanitizeText(req.Prompt))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imageUrl": imageURL})
}

type generateContentRequest struct {
	VideoDescription string `json:"videoDescription"`
	Style            string `json:"style"`
	ContentType      string `json:"contentType"`
}

func (s *Server) GenerateContent(c *gin.Context) {
	var req generateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.contentSvc.Generate(c.Request.Context(), content.Request{
		VideoDescription: sanitizeText(req.VideoDescription),
		Style:            sanitizeText(req.Style),
		ContentType:      req.ContentType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type analyzePromptRequest struct {
	Description string `json:"description"`
	Style       string `json:"style"`
	AIChatInput string `json:"aiChatInput"`
}

func (s *Server) AnalyzePrompt(c *gin.Context) {
	var req analyzePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	structured, err := s.promptBuilder.AnalyzePrompt(c.Request.Context(),
		sanitizeText(req.Description), sanitizeText(req.Style), sanitizeText(req.AIChatInput))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if structured == "" {
		c.JSON(http.StatusOK, gin.H{"structuredPrompt": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"structuredPrompt": structured})
}

type studioRequest struct {
	Description  string `json:"description"`
	Style        string `json:"style"`
	OverlayText  string `json:"overlayText"`
	OverlayStyle string `json:"overlayStyle"`
	AIChatInput  string `json:"aiChatInput"`
	ContentType  string `json:"contentType"`
}

func (r studioRequest) toSubmit(userID string) generation.SubmitRequest {
	return generation.SubmitRequest{
		UserID:       userID,
		Description:  sanitizeText(r.Description),
		Style:        sanitizeText(r.Style),
		OverlayText:  sanitizeText(r.OverlayText),
		OverlayStyle: sanitizeText(r.OverlayStyle),
		AIChatInput:  sanitizeText(r.AIChatInput),
	}
}

func (s *Server) StudioGenerate(c *gin.Context) {
	var req studioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.orchestrator.Submit(c.Request.Context(), req.toSubmit(s.userID(c)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) StudioRegenerateImage(c *gin.Context) {
	var req studioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.orchestrator.RegenerateImage(c.Request.Context(), req.toSubmit(s.userID(c)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) StudioRegenerateContent(c *gin.Context) {
	var req studioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	meta, err := s.orchestrator.RegenerateContent(c.Request.Context(),
		s.userID(c), sanitizeText(req.Style), sanitizeText(req.Description), req.ContentType)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}
