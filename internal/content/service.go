package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ytza/ytza/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	TypeTitles       = "titles"
	TypeDescriptions = "descriptions"
	TypeTags         = "tags"
	TypeAll          = ""
)

var (
	ErrMissingDescription = errors.New("missing_video_description")
	ErrInvalidContentType = errors.New("invalid_content_type")
)

type Request struct {
	VideoDescription string
	Style            string
	// ContentType narrows regeneration to one field. Empty means all.
	ContentType string
}

type Result struct {
	Success         bool     `json:"success"`
	Titles          []string `json:"titles,omitempty"`
	Descriptions    []string `json:"descriptions,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	BestTitle       string   `json:"bestTitle,omitempty"`
	BestDescription string   `json:"bestDescription,omitempty"`
	// Fallback marks locally synthesized content after a provider failure.
	Fallback bool `json:"fallback,omitempty"`
}

// TextGenerator is satisfied by the Gemini client.
type TextGenerator interface {
	Enabled() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Service generates YouTube metadata. Provider failures never propagate:
// the caller always gets usable (if lower quality) content.
type Service struct {
	llm TextGenerator
}

func NewService(llm TextGenerator) *Service {
	return &Service{llm: llm}
}

func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	description := strings.TrimSpace(req.VideoDescription)
	if description == "" {
		return Result{}, ErrMissingDescription
	}
	switch req.ContentType {
	case TypeAll, TypeTitles, TypeDescriptions, TypeTags:
	default:
		return Result{}, ErrInvalidContentType
	}

	if !s.llm.Enabled() {
		return synthesize(description, req.ContentType), nil
	}

	raw, err := s.llm.GenerateText(ctx, contentInstruction(description, req.Style, req.ContentType))
	if err != nil {
		logger.FromContext(ctx).Warn("content generation failed, synthesizing locally",
			zap.String("content_type", req.ContentType),
			zap.Error(err),
		)
		return synthesize(description, req.ContentType), nil
	}

	result, err := parseProviderJSON(raw, req.ContentType)
	if err != nil {
		logger.FromContext(ctx).Warn("content response unparseable, synthesizing locally",
			zap.Error(err),
		)
		return synthesize(description, req.ContentType), nil
	}
	return result, nil
}

func contentInstruction(description, style, contentType string) string {
	var sb strings.Builder
	sb.WriteString("You write YouTube metadata. Given a video description, respond with a single JSON object and nothing else.\n\n")
	sb.WriteString("VIDEO DESCRIPTION: " + description + "\n")
	if style != "" {
		sb.WriteString("THUMBNAIL STYLE: " + style + "\n")
	}
	sb.WriteString("\nJSON shape: {")
	switch contentType {
	case TypeTitles:
		sb.WriteString(`"titles": [5 click-worthy titles under 70 characters]`)
	case TypeDescriptions:
		sb.WriteString(`"descriptions": [3 SEO-friendly descriptions, 2-3 sentences each]`)
	case TypeTags:
		sb.WriteString(`"tags": [15 lowercase search tags]`)
	default:
		sb.WriteString(`"titles": [5 click-worthy titles under 70 characters], `)
		sb.WriteString(`"descriptions": [3 SEO-friendly descriptions, 2-3 sentences each], `)
		sb.WriteString(`"tags": [15 lowercase search tags]`)
	}
	sb.WriteString("}")
	return sb.String()
}

type providerPayload struct {
	Titles       []string `json:"titles"`
	Descriptions []string `json:"descriptions"`
	Tags         []string `json:"tags"`
}

func parseProviderJSON(raw, contentType string) (Result, error) {
	cleaned := stripCodeFence(raw)

	var payload providerPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Result{}, err
	}

	result := Result{Success: true}
	switch contentType {
	case TypeTitles:
		result.Titles = payload.Titles
	case TypeDescriptions:
		result.Descriptions = payload.Descriptions
	case TypeTags:
		result.Tags = payload.Tags
	default:
		result.Titles = payload.Titles
		result.Descriptions = payload.Descriptions
		result.Tags = payload.Tags
	}

	if contentType == TypeAll && (len(result.Titles) == 0 || len(result.Tags) == 0) {
		return Result{}, errors.New("provider returned empty content")
	}
	if contentType != TypeAll && len(result.Titles)+len(result.Descriptions)+len(result.Tags) == 0 {
		return Result{}, errors.New("provider returned empty content")
	}

	if len(result.Titles) > 0 {
		result.BestTitle = result.Titles[0]
	}
	if len(result.Descriptions) > 0 {
		result.BestDescription = result.Descriptions[0]
	}
	return result, nil
}

// LLMs often wrap JSON in markdown fences despite instructions.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
