package prompt

import (
	"regexp"
	"strings"
)

// Themes is the fixed-shape record the beast-style template is filled from.
// Extraction is heuristic; the only requirement is plausible placeholders.
type Themes struct {
	Subjects        []string
	Actions         []string
	Descriptors     []string
	Places          []string
	Sentiment       string
	PriceComparison bool
}

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var subjectLexicon = map[string]struct{}{
	"chef": {}, "car": {}, "house": {}, "phone": {}, "laptop": {}, "game": {},
	"money": {}, "food": {}, "pasta": {}, "pizza": {}, "burger": {}, "cake": {},
	"dog": {}, "cat": {}, "robot": {}, "drone": {}, "camera": {}, "guitar": {},
	"island": {}, "boat": {}, "plane": {}, "train": {}, "bike": {}, "truck": {},
	"computer": {}, "keyboard": {}, "watch": {}, "shoe": {}, "sneaker": {},
	"gold": {}, "diamond": {}, "mansion": {}, "castle": {}, "pool": {},
	"teacher": {}, "doctor": {}, "gamer": {}, "student": {}, "millionaire": {},
	"friend": {}, "stranger": {}, "family": {}, "team": {}, "crowd": {},
}

var actionLexicon = map[string]struct{}{
	"cooking": {}, "eating": {}, "running": {}, "jumping": {}, "building": {},
	"buying": {}, "selling": {}, "racing": {}, "flying": {}, "swimming": {},
	"exploring": {}, "testing": {}, "trying": {}, "winning": {}, "losing": {},
	"breaking": {}, "fixing": {}, "making": {}, "creating": {}, "destroying": {},
	"hiding": {}, "finding": {}, "surviving": {}, "escaping": {}, "challenging": {},
	"cook": {}, "eat": {}, "run": {}, "build": {}, "buy": {}, "sell": {},
	"race": {}, "fly": {}, "swim": {}, "explore": {}, "test": {}, "try": {},
	"win": {}, "lose": {}, "break": {}, "fix": {}, "make": {}, "survive": {},
}

var descriptorLexicon = map[string]struct{}{
	"giant": {}, "tiny": {}, "huge": {}, "massive": {}, "epic": {}, "insane": {},
	"crazy": {}, "amazing": {}, "incredible": {}, "secret": {}, "hidden": {},
	"expensive": {}, "cheap": {}, "free": {}, "luxury": {}, "budget": {},
	"fast": {}, "slow": {}, "new": {}, "old": {}, "rare": {}, "famous": {},
	"delicious": {}, "spicy": {}, "frozen": {}, "golden": {}, "ultimate": {},
	"extreme": {}, "impossible": {}, "mystery": {}, "viral": {}, "best": {},
	"worst": {}, "first": {}, "last": {}, "biggest": {}, "smallest": {},
}

var placeLexicon = map[string]struct{}{
	"kitchen": {}, "desert": {}, "ocean": {}, "forest": {}, "mountain": {},
	"city": {}, "island": {}, "beach": {}, "jungle": {}, "arctic": {},
	"space": {}, "underwater": {}, "underground": {}, "rooftop": {},
	"stadium": {}, "warehouse": {}, "garage": {}, "restaurant": {},
	"school": {}, "hotel": {}, "airport": {}, "store": {}, "mall": {},
}

var positiveLexicon = map[string]struct{}{
	"amazing": {}, "awesome": {}, "best": {}, "delicious": {}, "epic": {},
	"fun": {}, "great": {}, "happy": {}, "incredible": {}, "love": {},
	"perfect": {}, "win": {}, "winning": {}, "beautiful": {}, "luxury": {},
}

var negativeLexicon = map[string]struct{}{
	"worst": {}, "terrible": {}, "awful": {}, "fail": {}, "failing": {},
	"broken": {}, "losing": {}, "lose": {}, "disaster": {}, "scary": {},
	"dangerous": {}, "horrible": {}, "bad": {}, "sad": {}, "angry": {},
}

// Matches "$1 vs $1,000,000" style comparisons popular in challenge videos.
var priceComparisonRe = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d+)?[^$]{0,40}\b(?:vs\.?|versus|or)\b[^$]{0,40}\$[\d,]+(?:\.\d+)?`)

var wordRe = regexp.MustCompile(`[a-zA-Z']+`)

// ExtractThemes tags description words against small fixed lexicons.
func ExtractThemes(description string) Themes {
	themes := Themes{
		Sentiment:       SentimentNeutral,
		PriceComparison: priceComparisonRe.MatchString(description),
	}

	score := 0
	seen := map[string]struct{}{}
	for _, raw := range wordRe.FindAllString(description, -1) {
		word := strings.ToLower(raw)
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}

		if _, ok := subjectLexicon[word]; ok {
			themes.Subjects = append(themes.Subjects, word)
		}
		if _, ok := actionLexicon[word]; ok {
			themes.Actions = append(themes.Actions, word)
		}
		if _, ok := descriptorLexicon[word]; ok {
			themes.Descriptors = append(themes.Descriptors, word)
		}
		if _, ok := placeLexicon[word]; ok {
			themes.Places = append(themes.Places, word)
		}
		if _, ok := positiveLexicon[word]; ok {
			score++
		}
		if _, ok := negativeLexicon[word]; ok {
			score--
		}
	}

	if score > 0 {
		themes.Sentiment = SentimentPositive
	} else if score < 0 {
		themes.Sentiment = SentimentNegative
	}
	return themes
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}
