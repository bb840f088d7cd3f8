package beehiiv

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
)

const defaultBaseURL = "https://api.beehiiv.com/v2"

var ErrNotConfigured = errors.New("beehiiv_not_configured")

// APIError is a non-2xx response from the Beehiiv API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("beehiiv: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client creates subscriptions in a Beehiiv publication.
type Client struct {
	http          *http.Client
	baseURL       string
	apiKey        string
	publicationID string
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		http:          &http.Client{Timeout: 15 * time.Second},
		baseURL:       defaultBaseURL,
		apiKey:        cfg.BeehiivAPIKey,
		publicationID: cfg.BeehiivPublicationID,
	}
}

// SetAPIBaseForTest points the client at a local test server.
func SetAPIBaseForTest(c *Client, base string) {
	c.baseURL = base
}

func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.apiKey) != "" && strings.TrimSpace(c.publicationID) != ""
}

// Subscribe adds an email to the publication. Beehiiv treats an existing
// subscriber as success, so callers do not need their own dedupe.
func (c *Client) Subscribe(ctx context.Context, email, source string) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(map[string]any{
		"email":              email,
		"utm_source":         source,
		"send_welcome_email": true,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/publications/%s/subscriptions", c.baseURL, c.publicationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &parsed); err == nil && len(parsed.Errors) > 0 {
		apiErr.Message = parsed.Errors[0].Message
	}
	return apiErr
}
