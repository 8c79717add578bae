package cluster

import (
	"strings"

	"trendscope/internal/domain/trend"
)

// categoryKeywords maps each category to the lexical cues that assign a
// cluster to it. First category with a hit wins; order matters.
var categoryOrder = []trend.Category{
	trend.CategoryAIAutomation,
	trend.CategoryEcommerce,
	trend.CategoryContentCreation,
	trend.CategoryFreelancing,
	trend.CategoryInvestment,
	trend.CategoryDigitalProducts,
	trend.CategoryAffiliateMarketing,
	trend.CategoryRealEstate,
}

var categoryKeywords = map[trend.Category][]string{
	trend.CategoryAIAutomation: {
		"ai", "artificial intelligence", "automation", "chatgpt", "gpt",
		"machine learning", "chatbot", "automated", "llm",
	},
	trend.CategoryEcommerce: {
		"ecommerce", "e-commerce", "dropshipping", "shopify", "amazon fba",
		"online store", "print on demand", "etsy",
	},
	trend.CategoryContentCreation: {
		"youtube", "content creation", "tiktok", "instagram", "podcast",
		"blogging", "newsletter", "creator", "influencer",
	},
	trend.CategoryFreelancing: {
		"freelance", "freelancing", "upwork", "fiverr", "consulting",
		"remote work", "side hustle", "gig",
	},
	trend.CategoryInvestment: {
		"invest", "investing", "stocks", "crypto", "bitcoin", "dividend",
		"trading", "portfolio", "etf",
	},
	trend.CategoryDigitalProducts: {
		"digital product", "online course", "ebook", "template", "saas",
		"software", "app", "membership",
	},
	trend.CategoryAffiliateMarketing: {
		"affiliate", "commission", "referral", "affiliate marketing",
	},
	trend.CategoryRealEstate: {
		"real estate", "rental", "property", "airbnb", "landlord",
		"house flipping",
	},
}

// Categorize assigns a category from the cluster key and member text.
// Single-word cues match whole tokens only; multi-word cues match as
// substrings. Returns CategoryOther when nothing matches.
func Categorize(key string, members []trend.ContentItem) trend.Category {
	var text strings.Builder
	text.WriteString(strings.ToLower(key))
	for _, m := range members {
		text.WriteByte(' ')
		text.WriteString(strings.ToLower(m.Title))
		for _, kw := range m.Keywords {
			text.WriteByte(' ')
			text.WriteString(kw)
		}
	}
	haystack := text.String()

	tokens := map[string]struct{}{}
	for _, tok := range strings.FieldsFunc(haystack, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		tokens[tok] = struct{}{}
	}

	for _, category := range categoryOrder {
		for _, cue := range categoryKeywords[category] {
			if strings.Contains(cue, " ") || strings.Contains(cue, "-") {
				if strings.Contains(haystack, cue) {
					return category
				}
				continue
			}
			if _, ok := tokens[cue]; ok {
				return category
			}
		}
	}
	return trend.CategoryOther
}
