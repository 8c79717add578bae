package score

import (
	"strings"
	"unicode"

	"trendscope/internal/domain/trend"
)

// Fixed polarity lexicon. Deliberately small; topic text in this domain
// is short-form and the signal comes from a handful of strong words.
var positiveWords = map[string]struct{}{
	"great": {}, "amazing": {}, "excellent": {}, "fantastic": {},
	"awesome": {}, "love": {}, "best": {}, "perfect": {}, "wonderful": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "hate": {}, "worst": {},
	"horrible": {}, "disappointing": {}, "failed": {},
}

// sentiment averages per-item lexicon polarity over a topic's items.
// Each item scores (positive - negative) / matched, so the result stays
// in [-1, 1]. Items with no lexicon hits count as neutral.
func sentiment(items []trend.ContentItem) float64 {
	if len(items) == 0 {
		return 0
	}

	total := 0.0
	for _, item := range items {
		total += itemPolarity(item.Title + " " + item.BodyText)
	}
	return total / float64(len(items))
}

func itemPolarity(text string) float64 {
	positive, negative := 0, 0
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if _, ok := positiveWords[word]; ok {
			positive++
		} else if _, ok := negativeWords[word]; ok {
			negative++
		}
	}

	matched := positive + negative
	if matched == 0 {
		return 0
	}
	return float64(positive-negative) / float64(matched)
}
