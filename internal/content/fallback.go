package content

import (
	"strings"

	"github.com/gosimple/slug"
)

const fallbackTitleLimit = 40

// synthesize derives minimal metadata from the description alone: the title
// is its first 40 characters and the tags are its words longer than three
// characters, slug-cased.
func synthesize(description, contentType string) Result {
	result := Result{Success: true, Fallback: true}

	switch contentType {
	case TypeTitles:
		result.Titles = []string{fallbackTitle(description)}
		result.BestTitle = result.Titles[0]
	case TypeDescriptions:
		result.Descriptions = []string{description}
		result.BestDescription = description
	case TypeTags:
		result.Tags = fallbackTags(description)
	default:
		result.Titles = []string{fallbackTitle(description)}
		result.Descriptions = []string{description}
		result.Tags = fallbackTags(description)
		result.BestTitle = result.Titles[0]
		result.BestDescription = description
	}
	return result
}

func fallbackTitle(description string) string {
	title := strings.TrimSpace(description)
	if len(title) > fallbackTitleLimit {
		title = strings.TrimSpace(title[:fallbackTitleLimit])
	}
	return title
}

func fallbackTags(description string) []string {
	var tags []string
	seen := map[string]struct{}{}
	for _, word := range strings.Fields(description) {
		if len(word) <= 3 {
			continue
		}
		tag := slug.Make(word)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
