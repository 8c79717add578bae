package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

func fixedEngine() *Engine {
	e := NewEngine(DefaultConfig())
	e.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func ts(e *Engine, offset time.Duration) *time.Time {
	t := e.now().Add(offset)
	return &t
}

func TestScoreWeightedEngagement(t *testing.T) {
	e := fixedEngine()

	topic := trend.Topic{
		ClusterKey: "ai tools",
		Platforms:  []platform.Platform{platform.Video, platform.Forum},
		Items: []trend.ContentItem{
			{
				Platform:   platform.Video,
				URL:        "https://v/1",
				Engagement: trend.EngagementMetrics{SecondaryCount: 400},
			},
			{
				Platform:   platform.Forum,
				URL:        "https://f/1",
				Engagement: trend.EngagementMetrics{PrimaryCount: 100, CommentCount: 100},
			},
		},
	}

	e.Score(&topic, platform.Range7d)

	// video: 2*400 = 800 at weight 1.5; forum: 100 + 3*100 = 400 at 1.3.
	assert.InDelta(t, 800*1.5+400*1.3, topic.TotalEngagement, 1e-9)

	require.Contains(t, topic.PlatformBreakdown, platform.Video)
	require.Contains(t, topic.PlatformBreakdown, platform.Forum)
	assert.InDelta(t, 800, topic.PlatformBreakdown[platform.Video].Engagement, 1e-9)
	assert.InDelta(t, 400, topic.PlatformBreakdown[platform.Forum].Engagement, 1e-9)
	assert.Equal(t, 1, topic.PlatformBreakdown[platform.Video].ItemCount)
}

func TestConfidenceFormula(t *testing.T) {
	e := fixedEngine()

	topic := trend.Topic{
		Platforms: []platform.Platform{platform.Video, platform.Forum},
		Items: []trend.ContentItem{
			{Platform: platform.Video, Engagement: trend.EngagementMetrics{PrimaryCount: 200}},
			{Platform: platform.Forum, Engagement: trend.EngagementMetrics{PrimaryCount: 100}},
		},
	}

	e.Score(&topic, platform.Range7d)

	// breadth 2/4, engagement (200*1.5 + 100*1.3)/1000, items 2/20.
	want := 0.5*0.5 + 0.3*0.43 + 0.2*0.1
	assert.InDelta(t, want, topic.ConfidenceScore, 1e-9)
}

func TestConfidenceSaturates(t *testing.T) {
	e := fixedEngine()

	items := make([]trend.ContentItem, 40)
	for i := range items {
		items[i] = trend.ContentItem{
			Platform:   platform.Microblog,
			Engagement: trend.EngagementMetrics{PrimaryCount: 1000},
		}
	}
	topic := trend.Topic{
		Platforms: platform.All(),
		Items:     items,
	}

	e.Score(&topic, platform.Range7d)

	assert.InDelta(t, 1.0, topic.ConfidenceScore, 1e-9)
	assert.LessOrEqual(t, topic.ConfidenceScore, 1.0)
}

func TestGrowthRateRisingTopic(t *testing.T) {
	e := fixedEngine()

	// 7d window, buckets of 56h. Early item engagement 100, recent 300.
	topic := trend.Topic{
		Platforms: []platform.Platform{platform.Forum},
		Items: []trend.ContentItem{
			{
				Platform:    platform.Forum,
				PublishedAt: ts(e, -6*24*time.Hour),
				Engagement:  trend.EngagementMetrics{PrimaryCount: 100},
			},
			{
				Platform:    platform.Forum,
				PublishedAt: ts(e, -2*time.Hour),
				Engagement:  trend.EngagementMetrics{PrimaryCount: 300},
			},
		},
	}

	e.Score(&topic, platform.Range7d)
	assert.InDelta(t, (300.0-100.0)/100.0, topic.GrowthRate, 1e-9)
}

func TestGrowthRateClamped(t *testing.T) {
	e := fixedEngine()

	topic := trend.Topic{
		Items: []trend.ContentItem{
			{PublishedAt: ts(e, -6*24*time.Hour), Engagement: trend.EngagementMetrics{PrimaryCount: 1}},
			{PublishedAt: ts(e, -time.Hour), Engagement: trend.EngagementMetrics{PrimaryCount: 100000}},
		},
	}
	e.Score(&topic, platform.Range7d)
	assert.InDelta(t, 5.0, topic.GrowthRate, 1e-9)

	falling := trend.Topic{
		Items: []trend.ContentItem{
			{PublishedAt: ts(e, -6*24*time.Hour), Engagement: trend.EngagementMetrics{PrimaryCount: 500}},
			{PublishedAt: ts(e, -time.Hour), Engagement: trend.EngagementMetrics{}},
		},
	}
	e.Score(&falling, platform.Range7d)
	assert.InDelta(t, -1.0, falling.GrowthRate, 1e-9)
}

func TestGrowthRateCapConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrowthCap = 12
	e := NewEngine(cfg)
	e.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}

	topic := trend.Topic{
		Items: []trend.ContentItem{
			{PublishedAt: ts(e, -6*24*time.Hour), Engagement: trend.EngagementMetrics{PrimaryCount: 10}},
			{PublishedAt: ts(e, -time.Hour), Engagement: trend.EngagementMetrics{PrimaryCount: 90}},
		},
	}

	// Growth of 8 would be clamped under the stock cap of 5.
	e.Score(&topic, platform.Range7d)
	assert.InDelta(t, 8.0, topic.GrowthRate, 1e-9)
}

func TestGrowthRateNeedsTwoBuckets(t *testing.T) {
	e := fixedEngine()

	topic := trend.Topic{
		Items: []trend.ContentItem{
			{PublishedAt: ts(e, -time.Hour), Engagement: trend.EngagementMetrics{PrimaryCount: 500}},
			{PublishedAt: ts(e, -2*time.Hour), Engagement: trend.EngagementMetrics{PrimaryCount: 900}},
		},
	}
	e.Score(&topic, platform.Range7d)
	assert.Zero(t, topic.GrowthRate)

	// Missing timestamps never contribute.
	undated := trend.Topic{
		Items: []trend.ContentItem{
			{Engagement: trend.EngagementMetrics{PrimaryCount: 500}},
			{PublishedAt: ts(e, -6*24*time.Hour), Engagement: trend.EngagementMetrics{PrimaryCount: 100}},
		},
	}
	e.Score(&undated, platform.Range7d)
	assert.Zero(t, undated.GrowthRate)
}

func TestSentimentBounds(t *testing.T) {
	positive := []trend.ContentItem{
		{Title: "amazing results", BodyText: "this is the best thing, love it"},
	}
	assert.InDelta(t, 1.0, sentiment(positive), 1e-9)

	negative := []trend.ContentItem{
		{Title: "terrible launch", BodyText: "the worst, truly awful"},
	}
	assert.InDelta(t, -1.0, sentiment(negative), 1e-9)

	mixed := []trend.ContentItem{
		{Title: "great but disappointing"},
		{Title: "nothing notable here"},
	}
	assert.InDelta(t, 0.0, sentiment(mixed), 1e-9)

	assert.Zero(t, sentiment(nil))
}

func TestRankOrdering(t *testing.T) {
	topics := []trend.Topic{
		{ClusterKey: "beta", ConfidenceScore: 0.5, TotalEngagement: 100},
		{ClusterKey: "alpha", ConfidenceScore: 0.5, TotalEngagement: 100},
		{ClusterKey: "gamma", ConfidenceScore: 0.9, TotalEngagement: 10},
		{ClusterKey: "delta", ConfidenceScore: 0.5, TotalEngagement: 900},
	}

	Rank(topics)

	keys := make([]string, len(topics))
	for i, topic := range topics {
		keys[i] = topic.ClusterKey
	}
	assert.Equal(t, []string{"gamma", "delta", "alpha", "beta"}, keys)
}
