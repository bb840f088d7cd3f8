package prompt

import (
	"fmt"
	"strings"
)

// NoTextDirective is appended whenever overlay text or its style is absent.
// The image model tends to hallucinate captions without it.
const NoTextDirective = `TEXT POLICY: Do not render any text at all.
- No words, letters, numbers, captions, watermarks, or logos anywhere in the image.
- The thumbnail communicates purely through imagery.`

var overlayStyles = map[string]string{
	"bold-white":  "large bold white sans-serif letters with a heavy black outline, high contrast against the scene",
	"bold-yellow": "thick bold yellow letters with a dark drop shadow, MrBeast-style impact text",
	"minimalist":  "thin clean white lettering, generous letter spacing, understated and modern",
	"pixel":       "retro pixel-art lettering, 8-bit video game style, blocky and vibrant",
	"calligraphy": "elegant flowing calligraphy script, high-end editorial feel",
	"cute":        "rounded bubbly letters in soft pastel colors, playful and friendly",
}

// OverlayStyleNames lists the accepted textStyle identifiers.
func OverlayStyleNames() []string {
	names := make([]string, 0, len(overlayStyles))
	for name := range overlayStyles {
		names = append(names, name)
	}
	return names
}

// AppendOverlay finishes a prompt body with either explicit text-overlay
// instructions or the no-text directive. Exactly one of the two is added.
func AppendOverlay(body, overlayText, overlayStyle string) string {
	overlayText = strings.TrimSpace(overlayText)
	styleDesc, knownStyle := overlayStyles[normalizeOverlayStyle(overlayStyle)]

	if overlayText == "" || !knownStyle {
		return body + "\n\n" + NoTextDirective
	}

	return body + "\n\n" + fmt.Sprintf(`TEXT OVERLAY:
- Render the exact text "%s" prominently in the thumbnail.
- Typography: %s.
- Position the text where it does not cover the main subject's face.
- Text must be large enough to read at small thumbnail sizes.`, overlayText, styleDesc)
}

func normalizeOverlayStyle(style string) string {
	style = strings.ToLower(strings.TrimSpace(style))
	style = strings.ReplaceAll(style, " ", "-")
	return style
}
