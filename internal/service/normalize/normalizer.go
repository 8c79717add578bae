package normalize

import (
	"strings"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

// metricMapping routes a platform's raw counters onto the canonical
// engagement schema. The slots are ordered by increasing
// cost-of-engagement: primary is the cheapest signal the platform
// reports, comments the costliest.
//
//	platform   primary    secondary  comment
//	search     views      likes      comments
//	video      views      likes      comments
//	forum      upvotes    -          comments
//	microblog  likes      retweets   replies
func metricMapping(p platform.Platform, m platform.RawMetrics) trend.EngagementMetrics {
	switch p {
	case platform.Forum:
		return trend.EngagementMetrics{
			PrimaryCount: m.Upvotes,
			CommentCount: m.Comments,
		}
	case platform.Microblog:
		return trend.EngagementMetrics{
			PrimaryCount:   m.Likes,
			SecondaryCount: m.Retweets,
			CommentCount:   m.Replies,
		}
	default:
		return trend.EngagementMetrics{
			PrimaryCount:   m.Views,
			SecondaryCount: m.Likes,
			CommentCount:   m.Comments,
		}
	}
}

// structureMarkers suggest the body is an organized guide rather than
// free-flowing prose.
var structureMarkers = []string{"1.", "2.", "•", "- ", "step", "Step"}

// qualityKeywords indicate instructional content.
var qualityKeywords = []string{"tutorial", "guide", "step", "how to", "strategy", "tips", "method"}

// Normalizer converts raw platform items into the canonical content
// schema.
type Normalizer struct {
	topKeywords int
}

// NewNormalizer creates a normalizer keeping the topK highest-ranked
// keywords per item.
func NewNormalizer(topKeywords int) *Normalizer {
	if topKeywords <= 0 {
		topKeywords = 8
	}
	return &Normalizer{topKeywords: topKeywords}
}

// Normalize maps raw onto the canonical schema. It returns false only
// when the item has an empty body and an empty title, which leaves
// nothing to cluster on. Malformed or missing timestamps are tolerated
// by leaving PublishedAt nil.
func (n *Normalizer) Normalize(raw platform.RawItem) (trend.ContentItem, bool) {
	title := strings.TrimSpace(raw.Title)
	body := strings.TrimSpace(raw.Body)

	if title == "" && body == "" {
		return trend.ContentItem{}, false
	}

	item := trend.ContentItem{
		Platform:     raw.Platform,
		URL:          raw.URL,
		Title:        title,
		Author:       strings.TrimSpace(raw.Author),
		PublishedAt:  raw.PublishedAt,
		BodyText:     body,
		Engagement:   metricMapping(raw.Platform, raw.Metrics),
		Keywords:     ExtractKeywords(title+" "+body, n.topKeywords),
		QualityScore: qualityScore(body),
	}

	return item, true
}

// qualityScore is a heuristic blend of text length, structure and
// keyword density, clamped to [0, 1].
func qualityScore(body string) float64 {
	if body == "" {
		return 0.2
	}

	score := 0.5

	switch {
	case len(body) > 500:
		score += 0.2
	case len(body) > 200:
		score += 0.1
	}

	lower := strings.ToLower(body)
	keywordHits := 0
	for _, kw := range qualityKeywords {
		keywordHits += strings.Count(lower, kw)
	}
	if bonus := float64(keywordHits) * 0.05; bonus > 0.2 {
		score += 0.2
	} else {
		score += bonus
	}

	for _, marker := range structureMarkers {
		if strings.Contains(body, marker) {
			score += 0.1
			break
		}
	}

	if score > 1 {
		return 1
	}
	return score
}
