package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ytza/ytza/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	StyleBeast      = "beast-style"
	StyleMinimalist = "minimalist-style"
	StyleCinematic  = "cinematic-style"
	StyleClickbait  = "clickbait-style"
)

var ErrInvalidStyle = errors.New("invalid_style")

// ValidStyle reports whether the identifier names a supported style.
func ValidStyle(style string) bool {
	switch style {
	case StyleBeast, StyleMinimalist, StyleCinematic, StyleClickbait:
		return true
	}
	return false
}

// TextGenerator is the LLM dependency for the non-beast styles.
type TextGenerator interface {
	Enabled() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Request struct {
	Description  string
	Style        string
	OverlayText  string
	OverlayStyle string
	AIChatInput  string
}

// Builder assembles image-generation prompts per style. The beast style is
// built entirely from local templates; the other three delegate to the LLM
// and fall back to a template when the call fails.
type Builder struct {
	llm TextGenerator
}

func NewBuilder(llm TextGenerator) *Builder {
	return &Builder{llm: llm}
}

// GenerateThumbnailPrompt produces the full prompt, overlay block included.
// It never returns an error for provider failures; those degrade to the
// local fallback so generation can proceed.
func (b *Builder) GenerateThumbnailPrompt(ctx context.Context, req Request) (string, error) {
	if !ValidStyle(req.Style) {
		return "", ErrInvalidStyle
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return "", ErrInvalidStyle
	}

	var body string
	if req.Style == StyleBeast {
		body = buildBeastPrompt(description)
	} else {
		body = b.buildLLMStyledPrompt(ctx, description, req.Style, req.AIChatInput)
	}

	return AppendOverlay(body, req.OverlayText, req.OverlayStyle), nil
}

// AnalyzePrompt is the LLM round trip behind the non-beast styles, exposed
// separately so it can be called as its own endpoint. Returns empty string
// when no provider key is configured.
func (b *Builder) AnalyzePrompt(ctx context.Context, description, style, aiChatInput string) (string, error) {
	if !ValidStyle(style) {
		return "", ErrInvalidStyle
	}
	if !b.llm.Enabled() {
		return "", nil
	}

	instruction := analyzeInstruction(description, style, aiChatInput)
	return b.llm.GenerateText(ctx, instruction)
}

func (b *Builder) buildLLMStyledPrompt(ctx context.Context, description, style, aiChatInput string) string {
	if b.llm.Enabled() {
		structured, err := b.llm.GenerateText(ctx, analyzeInstruction(description, style, aiChatInput))
		if err == nil && structured != "" {
			return structured
		}
		if err != nil {
			logger.FromContext(ctx).Warn("prompt analysis failed, using template fallback",
				zap.String("style", style),
				zap.Error(err),
			)
		}
	}
	return buildFallbackPrompt(description, style)
}

func analyzeInstruction(description, style, aiChatInput string) string {
	var sb strings.Builder
	sb.WriteString("You are a YouTube thumbnail art director. Write a detailed image-generation prompt for a 16:9 thumbnail.\n\n")
	sb.WriteString("VIDEO DESCRIPTION: " + description + "\n")
	sb.WriteString("STYLE: " + styleDirection(style) + "\n")
	if input := strings.TrimSpace(aiChatInput); input != "" {
		sb.WriteString("CREATOR NOTES: " + input + "\n")
	}
	sb.WriteString("\nRespond with the prompt text only. No preamble, no markdown, no explanations.")
	return sb.String()
}

func styleDirection(style string) string {
	switch style {
	case StyleMinimalist:
		return "minimalist: one clear subject, flat or softly gradiented background, generous negative space, restrained palette of 2-3 colors"
	case StyleCinematic:
		return "cinematic: dramatic film lighting, shallow depth of field, rich color grading, widescreen movie-poster framing"
	case StyleClickbait:
		return "clickbait: exaggerated facial expression, high saturation, arrows or circles highlighting the subject, urgent high-energy composition"
	default:
		return style
	}
}

// buildBeastPrompt fills the multi-section template from locally extracted
// themes. The literal description always appears in the storytelling block.
func buildBeastPrompt(description string) string {
	themes := ExtractThemes(description)

	mood := "bold and energetic"
	switch themes.Sentiment {
	case SentimentPositive:
		mood = "triumphant, celebratory, bursting with excitement"
	case SentimentNegative:
		mood = "tense, dramatic, high-stakes"
	}

	scale := ""
	if themes.PriceComparison {
		scale = "\n- Emphasize the extreme contrast between the cheap and expensive versions side by side."
	}

	return fmt.Sprintf(`COMPOSITION:
- 16:9 YouTube thumbnail, subject filling the left two-thirds of the frame.
- Extreme wide-angle perspective with exaggerated depth.
- Saturated complementary colors, MrBeast-style visual punch.

SUBJECTS:
- Main focus: %s.
- Action: %s.%s

VISUAL TREATMENT:
- %s descriptors drive the styling: %s.
- Setting: %s.
- Hyper-saturated colors, crisp rim lighting, exaggerated scale.

STORYTELLING:
- The scene depicts: %s.
- Mood: %s.
- One instantly readable story beat, no clutter.

TECHNICAL:
- Photorealistic render, ultra-sharp focus on the main subject.
- High dynamic range, punchy contrast, vibrant but clean.

KEY ELEMENTS:
- A single shocked or delighted human expression as the emotional anchor.
- Strong silhouette readable at 10%% zoom.`,
		joinOr(themes.Subjects, "the main subject from the description"),
		joinOr(themes.Actions, "the central activity from the description"),
		scale,
		capitalize(themes.Sentiment),
		joinOr(themes.Descriptors, "larger-than-life"),
		joinOr(themes.Places, "a vivid high-contrast environment"),
		description,
		mood,
	)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// buildFallbackPrompt is the low-fidelity template used when the LLM call
// fails or no key is configured. It always embeds the raw description.
func buildFallbackPrompt(description, style string) string {
	return fmt.Sprintf(`Create a 16:9 YouTube thumbnail.
STYLE: %s
SCENE: %s
REQUIREMENTS:
- Eye-catching composition readable at small sizes.
- Strong focal subject, clean background separation.
- Professional lighting and color grading.`, styleDirection(style), description)
}
