package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ytza/ytza/internal/billing"
	contentsvc "github.com/ytza/ytza/internal/content"
	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
	"github.com/ytza/ytza/internal/generation"
	newsletterdomain "github.com/ytza/ytza/internal/newsletter/domain"
	projectdomain "github.com/ytza/ytza/internal/project/domain"
	"github.com/ytza/ytza/internal/prompt"
	"github.com/ytza/ytza/internal/providers/stripe"
	"github.com/ytza/ytza/internal/thumbnail"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

type errorPayload struct {
	Error          string `json:"error"`
	Message        string `json:"message"`
	CreditRefunded *bool  `json:"creditRefunded,omitempty"`
	RetryAfter     *int   `json:"retryAfter,omitempty"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	// Thumbnail failures carry the discriminator and refund flag through.
	var thumbErr *thumbnail.Error
	if errors.As(err, &thumbErr) {
		refunded := thumbErr.CreditRefunded
		status := http.StatusInternalServerError
		if thumbErr.Code == thumbnail.CodeContentPolicy {
			status = http.StatusBadRequest
		}
		return status, errorPayload{
			Error:          thumbErr.Code,
			Message:        thumbErr.Message,
			CreditRefunded: &refunded,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Error: "unauthorized", Message: "authentication required"}

	case errors.Is(err, ErrForbidden),
		errors.Is(err, billing.ErrEmailMismatch):
		return http.StatusForbidden, errorPayload{Error: "forbidden", Message: "you do not have access to this resource"}

	case errors.Is(err, ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{Error: "not_found", Message: "resource not found"}

	case errors.Is(err, creditsdomain.ErrInsufficientCredits):
		return http.StatusBadRequest, errorPayload{Error: "insufficient_credits", Message: "not enough credits for this operation"}

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, generation.ErrMissingInput),
		errors.Is(err, prompt.ErrInvalidStyle),
		errors.Is(err, thumbnail.ErrEmptyPrompt),
		errors.Is(err, contentsvc.ErrMissingDescription),
		errors.Is(err, contentsvc.ErrInvalidContentType),
		errors.Is(err, projectdomain.ErrInvalidInput),
		errors.Is(err, creditsdomain.ErrUnknownPlan),
		errors.Is(err, creditsdomain.ErrPaidPlan),
		errors.Is(err, billing.ErrUnknownPlan),
		errors.Is(err, billing.ErrPaymentIncomplete),
		errors.Is(err, newsletterdomain.ErrInvalidEmail):
		return http.StatusBadRequest, errorPayload{Error: "invalid_request", Message: err.Error()}

	case errors.Is(err, stripe.ErrInvalidSignature),
		errors.Is(err, stripe.ErrInvalidPayload):
		return http.StatusBadRequest, errorPayload{Error: "invalid_webhook", Message: "webhook could not be verified"}

	case errors.Is(err, billing.ErrBillingDisabled):
		return http.StatusInternalServerError, errorPayload{Error: "provider_not_configured", Message: "billing is not configured"}

	default:
		return http.StatusInternalServerError, errorPayload{Error: "internal_error", Message: "internal server error"}
	}
}
