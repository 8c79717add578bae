package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

func TestNormalizeMapsForumMetrics(t *testing.T) {
	n := NewNormalizer(8)
	published := time.Now()

	item, ok := n.Normalize(platform.RawItem{
		Platform:    platform.Forum,
		URL:         "https://example.com/post",
		Title:       "  How I built a newsletter business  ",
		Author:      "writer",
		PublishedAt: &published,
		Body:        "It took two years of consistent publishing.",
		Metrics:     platform.RawMetrics{Upvotes: 120, Comments: 45, Views: 9999},
	})

	require.True(t, ok)
	assert.Equal(t, "How I built a newsletter business", item.Title)
	assert.Equal(t, trend.EngagementMetrics{PrimaryCount: 120, CommentCount: 45}, item.Engagement)
	assert.NotNil(t, item.PublishedAt)
	assert.NotEmpty(t, item.Keywords)
}

func TestNormalizeMapsMicroblogMetrics(t *testing.T) {
	n := NewNormalizer(8)

	item, ok := n.Normalize(platform.RawItem{
		Platform: platform.Microblog,
		Title:    "quick thread on pricing digital products",
		Metrics:  platform.RawMetrics{Likes: 300, Retweets: 40, Replies: 12},
	})

	require.True(t, ok)
	assert.Equal(t, trend.EngagementMetrics{PrimaryCount: 300, SecondaryCount: 40, CommentCount: 12}, item.Engagement)
}

func TestNormalizeMapsVideoMetrics(t *testing.T) {
	n := NewNormalizer(8)

	item, ok := n.Normalize(platform.RawItem{
		Platform: platform.Video,
		Title:    "channel growth breakdown",
		Metrics:  platform.RawMetrics{Views: 15000, Likes: 900, Comments: 70},
	})

	require.True(t, ok)
	assert.Equal(t, trend.EngagementMetrics{PrimaryCount: 15000, SecondaryCount: 900, CommentCount: 70}, item.Engagement)
}

func TestNormalizeDiscardsEmptyItems(t *testing.T) {
	n := NewNormalizer(8)

	_, ok := n.Normalize(platform.RawItem{
		Platform: platform.Search,
		URL:      "https://example.com",
		Title:    "   ",
		Body:     "",
	})
	assert.False(t, ok)

	// Title alone is enough.
	_, ok = n.Normalize(platform.RawItem{
		Platform: platform.Search,
		Title:    "a headline",
	})
	assert.True(t, ok)

	// Missing timestamp is tolerated.
	item, ok := n.Normalize(platform.RawItem{
		Platform: platform.Search,
		Title:    "undated result",
	})
	require.True(t, ok)
	assert.Nil(t, item.PublishedAt)
}

func TestQualityScoreBounds(t *testing.T) {
	assert.InDelta(t, 0.2, qualityScore(""), 1e-9)

	short := qualityScore("plain text with no markers")
	assert.GreaterOrEqual(t, short, 0.5)

	rich := "Step 1. A complete guide with a tutorial and strategy tips. " +
		"This method walks through every step in detail with examples and " +
		"screenshots so anyone can follow along from scratch. " +
		"It keeps going well past the long-form threshold with more context, " +
		"more examples, caveats, common pitfalls, tooling suggestions, and a " +
		"closing summary that recaps the strategy from the top. The goal is " +
		"a body comfortably longer than five hundred characters so the " +
		"length bonus applies together with the keyword and structure bonuses."
	assert.InDelta(t, 1.0, qualityScore(rich), 1e-9)

	for _, body := range []string{"", "short", rich} {
		score := qualityScore(body)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestExtractKeywordsPrefersRepeatedPhrases(t *testing.T) {
	text := "passive income ideas. passive income takes patience. real passive income needs systems."

	keywords := ExtractKeywords(text, 8)
	require.NotEmpty(t, keywords)
	assert.Equal(t, "passive income", keywords[0])
}

func TestExtractKeywordsDropsOneOffNgrams(t *testing.T) {
	keywords := ExtractKeywords("unique phrase appears once here", 20)
	for _, kw := range keywords {
		assert.NotContains(t, kw, " ")
	}
}

func TestExtractKeywordsTopK(t *testing.T) {
	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	keywords := ExtractKeywords(text, 3)
	assert.Len(t, keywords, 3)

	assert.Nil(t, ExtractKeywords(text, 0))
	assert.Nil(t, ExtractKeywords("a an of", 5))
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	text := "dropshipping stores need reliable suppliers. dropshipping stores fail without marketing."
	first := ExtractKeywords(text, 8)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractKeywords(text, 8))
	}
}

func TestTokenizeFiltersShortAndStopWords(t *testing.T) {
	tokens := tokenize("An AI tool is on the way to a GPT bridge")
	assert.NotContains(t, tokens, "a")
	assert.NotContains(t, tokens, "an")
	assert.NotContains(t, tokens, "is")
	assert.NotContains(t, tokens, "the")
	assert.Contains(t, tokens, "ai")
	assert.Contains(t, tokens, "gpt")
	assert.Contains(t, tokens, "bridge")
}

func TestExtractKeywordsKeepsShortDomainTerms(t *testing.T) {
	keywords := ExtractKeywords("ai automation tools. ai automation saves hours every week.", 8)
	require.NotEmpty(t, keywords)
	assert.Equal(t, "ai automation", keywords[0])
	assert.Contains(t, keywords, "ai")
}

func TestNormalizeExtractsShortDomainKeywords(t *testing.T) {
	n := NewNormalizer(8)
	item, ok := n.Normalize(platform.RawItem{
		Platform: platform.Forum,
		URL:      "https://forum.example/ai",
		Title:    "ai automation",
		Body:     "ai automation is changing how teams work. ai automation tools keep improving.",
	})
	require.True(t, ok)
	assert.Contains(t, item.Keywords, "ai")
	assert.Contains(t, item.Keywords, "ai automation")
}
