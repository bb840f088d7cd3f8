package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
)

func (s *Server) Credits(c *gin.Context) {
	ctx := c.Request.Context()
	userID := s.userID(c)

	balance, err := s.creditsSvc.Balance(ctx, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	tier, err := s.creditsSvc.Tier(ctx, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance, "tier": tier})
}

func (s *Server) PurchaseHistory(c *gin.Context) {
	purchases, err := s.purchaseSvc.ListByUser(c.Request.Context(), s.userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

type selectPlanRequest struct {
	PlanName string `json:"planName"`
}

func (s *Server) SelectPlan(c *gin.Context) {
	var req selectPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.creditsSvc.SelectPlan(c.Request.Context(), creditsdomain.SelectPlanRequest{
		UserID:   s.userID(c),
		PlanName: sanitizeText(req.PlanName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type checkoutRequest struct {
	PlanName string `json:"planName"`
}

func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.billingSvc.CreateCheckout(c.Request.Context(),
		s.userID(c), s.userEmail(c), sanitizeText(req.PlanName))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": result.SessionID, "url": result.URL})
}

type verifyPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || sanitizeText(req.SessionID) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.billingSvc.VerifyPayment(c.Request.Context(),
		s.userID(c), s.userEmail(c), sanitizeText(req.SessionID))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
