package openaiimg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/ytza/ytza/internal/config"
	"github.com/ytza/ytza/internal/observability/logger"
	"go.uber.org/zap"
)

var (
	// ErrContentPolicy marks prompts the provider refused on safety grounds.
	// These debits are refunded but the request is not retried.
	ErrContentPolicy = errors.New("openai_content_policy_violation")
	ErrNoImage       = errors.New("openai_no_image_returned")
	ErrMissingAPIKey = errors.New("openai_api_key_missing")
)

// APIError wraps upstream failures that are neither policy refusals nor
// missing output.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: HTTP %d: %s", e.StatusCode, e.Message)
}

// ImageGenerator is what the thumbnail service depends on.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	api     openai.Client
	enabled bool
}

func New(cfg config.Config) *Client {
	return &Client{
		api:     openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		enabled: strings.TrimSpace(cfg.OpenAIAPIKey) != "",
	}
}

// GenerateImage renders a single 1536x1024 thumbnail and returns it as a
// base64-encoded PNG.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", ErrMissingAPIKey
	}

	resp, err := c.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModelGPTImage1,
		Size:   openai.ImageGenerateParamsSize1536x1024,
	})
	if err != nil {
		return "", classify(ctx, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", ErrNoImage
	}
	return resp.Data[0].B64JSON, nil
}

func classify(ctx context.Context, err error) error {
	var apierr *openai.Error
	if !errors.As(err, &apierr) {
		return err
	}

	code := strings.ToLower(apierr.Code)
	message := strings.ToLower(apierr.Message)
	if strings.Contains(code, "content_policy") ||
		strings.Contains(code, "moderation") ||
		strings.Contains(message, "content policy") ||
		strings.Contains(message, "safety system") {
		logger.FromContext(ctx).Warn("image prompt rejected by safety system",
			zap.String("code", apierr.Code),
		)
		return ErrContentPolicy
	}

	return &APIError{StatusCode: apierr.StatusCode, Message: apierr.Message}
}
