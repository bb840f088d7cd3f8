package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ytza/ytza/internal/config"
	"github.com/ytza/ytza/internal/observability/logger"
	"github.com/ytza/ytza/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Retry only transient overload responses. Quota and auth failures are
// deterministic and retrying them just burns latency.
const maxAttempts = 3

var (
	ErrMissingAPIKey = errors.New("gemini_api_key_missing")
	ErrOverloaded    = errors.New("gemini_overloaded")
	ErrEmptyResponse = errors.New("gemini_empty_response")
)

// APIError carries the upstream status for non-retryable failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: HTTP %d", e.StatusCode)
}

type Params struct {
	fx.In

	Config  config.Config
	Metrics *metrics.Metrics `optional:"true"`
}

// Client wraps the generateContent REST endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	metrics *metrics.Metrics
	sleep   func(context.Context, time.Duration) error
}

func New(p Params) *Client {
	return &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: defaultBaseURL,
		apiKey:  p.Config.GeminiAPIKey,
		model:   p.Config.GeminiModel,
		metrics: p.Metrics,
		sleep:   sleepContext,
	}
}

// Enabled reports whether an API key is configured. Callers fall back to
// local templates when it is not.
func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateText sends a single-turn prompt and returns the first candidate's
// text. HTTP 503 is retried with 1s, 2s, 4s backoff; every other status
// fails immediately.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	backoff := time.Second
	for attempt := 1; ; attempt++ {
		text, retryable, err := c.generateOnce(ctx, body)
		if err == nil {
			return text, nil
		}
		if !retryable || attempt >= maxAttempts {
			return "", err
		}

		c.metrics.RecordProviderRetry("gemini")
		logger.FromContext(ctx).Warn("gemini overloaded, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)
		if err := c.sleep(ctx, backoff); err != nil {
			return "", err
		}
		backoff *= 2
	}
}

func (c *Client) generateOnce(ctx context.Context, body []byte) (string, bool, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", true, ErrOverloaded
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed generateResponse
		if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.Error != nil {
			apiErr.Message = parsed.Error.Message
		}
		return "", false, apiErr
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", false, ErrEmptyResponse
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", false, ErrEmptyResponse
	}
	return text, false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
