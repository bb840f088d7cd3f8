package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	newsletterdomain "github.com/ytza/ytza/internal/newsletter/domain"
	"go.uber.org/zap"
)

type healthResponse struct {
	Status      string          `json:"status"`
	ConfigValid bool            `json:"configValid"`
	Missing     []string        `json:"missingConfig,omitempty"`
	Features    map[string]bool `json:"features"`
	Version     string          `json:"version"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (s *Server) Health(c *gin.Context) {
	resp := healthResponse{
		Status:      "ok",
		ConfigValid: s.cfg.Valid(),
		Missing:     s.cfg.MissingRequired(),
		Features: map[string]bool{
			"thumbnails": s.cfg.ThumbnailsEnabled(),
			"content":    s.cfg.ContentEnabled(),
			"billing":    s.cfg.BillingEnabled(),
			"newsletter": s.cfg.NewsletterEnabled(),
		},
		Version:   s.cfg.AppVersion,
		Timestamp: time.Now().UTC(),
	}
	if !resp.ConfigValid {
		resp.Status = "degraded"
	}

	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type newsletterRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

func (s *Server) Newsletter(c *gin.Context) {
	var req newsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err := s.newsletterSvc.Subscribe(c.Request.Context(), newsletterdomain.SubscribeRequest{
		Email:  sanitizeText(req.Email),
		Source: sanitizeText(req.Source),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// StripeWebhook verifies and dispatches Stripe events. The raw body is needed
// for signature verification, so this handler skips JSON binding.
func (s *Server) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.billingSvc.HandleWebhook(c.Request.Context(), payload, c.Request.Header); err != nil {
		s.log.Warn("stripe webhook rejected", zap.Error(err))
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
