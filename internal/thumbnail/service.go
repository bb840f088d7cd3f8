package thumbnail

import (
	"context"
	"errors"
	"strings"

	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
	"github.com/ytza/ytza/internal/observability/logger"
	"github.com/ytza/ytza/internal/observability/metrics"
	"github.com/ytza/ytza/internal/providers/openaiimg"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Error discriminators surfaced to clients.
const (
	CodeContentPolicy  = "CONTENT_POLICY_VIOLATION"
	CodeOpenAIAPI      = "OPENAI_API_ERROR"
	CodeGenerationFail = "IMAGE_GENERATION_FAILED"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

var (
	ErrEmptyPrompt         = errors.New("empty_prompt")
	ErrInsufficientCredits = creditsdomain.ErrInsufficientCredits
)

// Error is a classified generation failure. CreditRefunded tells the client
// whether the debit taken for this attempt was compensated.
type Error struct {
	Code           string
	Message        string
	CreditRefunded bool
	cause          error
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Credits creditsdomain.Service
	Images  openaiimg.ImageGenerator
	Metrics *metrics.Metrics `optional:"true"`
}

// Service owns the debit, generate, refund-on-failure sequence. The debit is
// a conditional UPDATE, so concurrent submissions cannot overspend even when
// both passed the caller's pre-flight balance check.
type Service struct {
	log     *zap.Logger
	credits creditsdomain.Service
	images  openaiimg.ImageGenerator
	metrics *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:     p.Log.Named("thumbnail"),
		credits: p.Credits,
		images:  p.Images,
		metrics: p.Metrics,
	}
}

// Generate debits one credit, renders the image, and returns it as a data
// URL. Any provider failure refunds the debit before the error is returned.
func (s *Service) Generate(ctx context.Context, userID, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	if err := s.credits.Debit(ctx, userID); err != nil {
		if errors.Is(err, creditsdomain.ErrInsufficientCredits) {
			return "", err
		}
		return "", &Error{Code: CodeInternal, Message: "could not reserve a credit", cause: err}
	}

	b64, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		refunded := s.refund(ctx, userID)
		return "", classify(err, refunded)
	}

	return "data:image/png;base64," + b64, nil
}

func (s *Service) refund(ctx context.Context, userID string) bool {
	if err := s.credits.Refund(ctx, userID); err != nil {
		// The user has lost a credit with nothing to show. Loud log so
		// support can re-credit manually.
		logger.FromContext(ctx).Error("credit refund failed after generation error",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	s.metrics.RecordCreditRefund()
	return true
}

func classify(err error, refunded bool) *Error {
	switch {
	case errors.Is(err, openaiimg.ErrContentPolicy):
		return &Error{
			Code:           CodeContentPolicy,
			Message:        "the prompt was rejected by the image provider's safety system",
			CreditRefunded: refunded,
			cause:          err,
		}
	case errors.Is(err, openaiimg.ErrNoImage):
		return &Error{
			Code:           CodeGenerationFail,
			Message:        "the image provider returned no image",
			CreditRefunded: refunded,
			cause:          err,
		}
	default:
		var apiErr *openaiimg.APIError
		if errors.As(err, &apiErr) {
			return &Error{
				Code:           CodeOpenAIAPI,
				Message:        "the image provider returned an error",
				CreditRefunded: refunded,
				cause:          err,
			}
		}
		return &Error{
			Code:           CodeInternal,
			Message:        "image generation failed unexpectedly",
			CreditRefunded: refunded,
			cause:          err,
		}
	}
}
