package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"dealseek-core/internal/domain/entity"
)

// productSearchThreshold is a strict lower bound: a confidence of exactly
// 0.6 does not qualify.
const productSearchThreshold = 0.6

var stopWords = map[string]struct{}{
	"find": {}, "search": {}, "looking": {}, "for": {}, "want": {},
	"need": {}, "buy": {}, "get": {}, "show": {}, "me": {},
	"under": {}, "below": {}, "above": {}, "around": {}, "about": {},
	"over": {}, "less": {}, "more": {}, "than": {}, "the": {},
	"and": {}, "with": {}, "some": {}, "any": {}, "please": {},
	"what": {}, "whats": {}, "what's": {}, "where": {}, "when": {},
	"how": {}, "why": {}, "can": {}, "you": {}, "give": {},
	"cheap": {}, "good": {}, "best": {},
}

var searchIndicators = []string{
	"find", "search", "looking for", "want", "need", "buy", "show me",
}

// categoryPatterns is deliberately an ordered slice: the first category
// whose keyword substring-matches the message wins.
var categoryPatterns = []struct {
	Name     string
	Keywords []string
}{
	{"electronics", []string{"phone", "laptop", "computer", "headphone", "earbud", "speaker", "camera", "tablet", "charger", "cable", "wireless", "bluetooth", "electronic", "gadget", "smartwatch"}},
	{"clothing", []string{"shirt", "dress", "pants", "jacket", "shoes", "sneaker", "hoodie", "jeans", "clothing", "clothes", "wear", "fashion"}},
	{"home", []string{"kitchen", "furniture", "lamp", "pillow", "curtain", "decor", "bedding", "home", "garden", "organizer"}},
	{"beauty", []string{"makeup", "skincare", "lipstick", "beauty", "cosmetic", "perfume", "shampoo", "nail"}},
	{"sports", []string{"fitness", "yoga", "gym", "running", "sports", "bicycle", "workout", "dumbbell", "camping"}},
	{"toys", []string{"toy", "lego", "puzzle", "doll", "game", "kids", "plush"}},
	{"automotive", []string{"car", "motorcycle", "automotive", "tire", "dashboard", "vehicle"}},
}

// priceRe matches one or two money-like tokens ("$20", "15 to 30",
// "12.50-19.99"). The bounded edges keep arithmetic-looking text such as
// "2+2" from reading as a price.
var priceRe = regexp.MustCompile(`(?:^|\s)\$?(\d+(?:\.\d{1,2})?)(?:\s*(?:to|-)\s*\$?(\d+(?:\.\d{1,2})?))?[.,!?]*(?:\s|$)`)

// context words are matched on word boundaries so that product terms
// embedding them ("thunderbolt", "pullover") don't flip the bound
var (
	maxContextRe = regexp.MustCompile(`\b(?:under|below|less than)\b`)
	minContextRe = regexp.MustCompile(`\b(?:above|over|more than)\b`)
)

// ParseIntent reads a free-text message into a structured search intent
// using single-pass heuristics. Pure function.
func ParseIntent(message string) *entity.SearchIntent {
	normalized := strings.ToLower(strings.TrimSpace(message))

	keywords := extractKeywords(normalized)
	priceRange := extractPriceRange(normalized)
	category := detectCategory(normalized)

	confidence := 0.5
	for _, indicator := range searchIndicators {
		if strings.Contains(normalized, indicator) {
			confidence += 0.2
			break
		}
	}
	if len(keywords) >= 2 {
		confidence += 0.1
	}
	if priceRange != nil {
		confidence += 0.1
	}
	if category != "" {
		confidence += 0.1
	}
	if len(normalized) < 10 || len(keywords) == 0 {
		confidence -= 0.2
	}
	// two-decimal rounding keeps the additive score exact, so the strict
	// >0.6 threshold behaves as documented
	confidence = clamp(math.Round(confidence*100)/100, 0, 1)

	return &entity.SearchIntent{
		Keywords:   keywords,
		Category:   category,
		PriceRange: priceRange,
		Confidence: confidence,
	}
}

// IsProductSearchIntent reports whether the message should be treated as
// a product search.
func IsProductSearchIntent(message string) bool {
	return ParseIntent(message).Confidence > productSearchThreshold
}

// BuildSuggestions produces clarifying prompts for ambiguous messages.
// The checks are independent; several suggestions can apply at once.
func BuildSuggestions(intent *entity.SearchIntent) []string {
	var suggestions []string
	if len(intent.Keywords) == 0 {
		suggestions = append(suggestions, "Could you be more specific about what you're looking for?")
	}
	if intent.PriceRange == nil {
		suggestions = append(suggestions, "What's your budget? I can filter results by price.")
	}
	if intent.Category == "" {
		suggestions = append(suggestions, "What category of product are you interested in?")
	}
	if len(intent.Keywords) == 1 {
		suggestions = append(suggestions, "Any specific style or brand you prefer?")
	}
	return suggestions
}

func extractKeywords(normalized string) []string {
	var keywords []string
	for _, token := range strings.Fields(normalized) {
		token = strings.Trim(token, `.,!?;:"'()[]`)
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		// price-like and digit-leading tokens are handled by the price pass
		bare := strings.TrimPrefix(token, "$")
		if bare == "" || unicode.IsDigit(rune(bare[0])) {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

func extractPriceRange(normalized string) *entity.PriceRange {
	match := priceRe.FindStringSubmatch(normalized)
	if match == nil {
		return nil
	}

	first, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}

	if match[2] != "" {
		second, err := strconv.ParseFloat(match[2], 64)
		if err == nil {
			lo, hi := first, second
			if lo > hi {
				lo, hi = hi, lo
			}
			return &entity.PriceRange{Min: &lo, Max: &hi}
		}
	}

	switch {
	case maxContextRe.MatchString(normalized):
		return &entity.PriceRange{Max: &first}
	case minContextRe.MatchString(normalized):
		return &entity.PriceRange{Min: &first}
	default:
		// ambiguous context ("around $50") defaults to a max bound
		return &entity.PriceRange{Max: &first}
	}
}

func detectCategory(normalized string) string {
	for _, c := range categoryPatterns {
		for _, kw := range c.Keywords {
			if strings.Contains(normalized, kw) {
				return c.Name
			}
		}
	}
	return ""
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
