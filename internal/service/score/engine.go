package score

import (
	"math"
	"sort"
	"time"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

// Config holds the scoring weights and normalization divisors.
type Config struct {
	SearchWeight    float64
	VideoWeight     float64
	ForumWeight     float64
	MicroblogWeight float64

	BreadthWeight    float64
	EngagementWeight float64
	ItemCountWeight  float64

	EngagementDivisor float64
	ItemCountDivisor  float64

	// GrowthCap bounds the reported growth rate from above. A topic whose
	// earliest bucket is nearly empty would otherwise report an arbitrarily
	// large ratio that drowns out every other signal in ranking.
	GrowthCap float64
}

// DefaultConfig returns the documented scoring defaults.
func DefaultConfig() Config {
	return Config{
		SearchWeight:      1.2,
		VideoWeight:       1.5,
		ForumWeight:       1.3,
		MicroblogWeight:   1.0,
		BreadthWeight:     0.5,
		EngagementWeight:  0.3,
		ItemCountWeight:   0.2,
		EngagementDivisor: 1000,
		ItemCountDivisor:  20,
		GrowthCap:         5,
	}
}

// Engine computes engagement, growth, sentiment and confidence for
// validated topics. Stateless across runs.
type Engine struct {
	config Config

	// now is swapped in tests to pin the growth-rate bucketing.
	now func() time.Time
}

// NewEngine creates a scoring engine with the given weights.
func NewEngine(config Config) *Engine {
	def := DefaultConfig()
	if config.EngagementDivisor <= 0 {
		config.EngagementDivisor = def.EngagementDivisor
	}
	if config.ItemCountDivisor <= 0 {
		config.ItemCountDivisor = def.ItemCountDivisor
	}
	if config.GrowthCap <= 0 {
		config.GrowthCap = def.GrowthCap
	}
	if config.BreadthWeight == 0 && config.EngagementWeight == 0 && config.ItemCountWeight == 0 {
		config.BreadthWeight = def.BreadthWeight
		config.EngagementWeight = def.EngagementWeight
		config.ItemCountWeight = def.ItemCountWeight
	}
	if config.SearchWeight == 0 {
		config.SearchWeight = def.SearchWeight
	}
	if config.VideoWeight == 0 {
		config.VideoWeight = def.VideoWeight
	}
	if config.ForumWeight == 0 {
		config.ForumWeight = def.ForumWeight
	}
	if config.MicroblogWeight == 0 {
		config.MicroblogWeight = def.MicroblogWeight
	}
	return &Engine{config: config, now: time.Now}
}

func (e *Engine) platformWeight(p platform.Platform) float64 {
	switch p {
	case platform.Search:
		return e.config.SearchWeight
	case platform.Video:
		return e.config.VideoWeight
	case platform.Forum:
		return e.config.ForumWeight
	case platform.Microblog:
		return e.config.MicroblogWeight
	}
	return 1.0
}

// Score fills in the topic's engagement, breakdown, growth, sentiment
// and confidence. The time range bounds the growth-rate buckets.
func (e *Engine) Score(topic *trend.Topic, timeRange platform.TimeRange) {
	breakdown := make(map[platform.Platform]trend.PlatformStats, len(topic.Platforms))
	for _, item := range topic.Items {
		stats := breakdown[item.Platform]
		stats.Engagement += item.Engagement.Weighted()
		stats.ItemCount++
		stats.AvgQuality += item.QualityScore
		breakdown[item.Platform] = stats
	}
	for p, stats := range breakdown {
		if stats.ItemCount > 0 {
			stats.AvgQuality /= float64(stats.ItemCount)
		}
		breakdown[p] = stats
	}
	topic.PlatformBreakdown = breakdown

	total := 0.0
	for p, stats := range breakdown {
		total += e.platformWeight(p) * stats.Engagement
	}
	topic.TotalEngagement = total

	topic.GrowthRate = e.growthRate(topic.Items, timeRange)
	topic.SentimentScore = sentiment(topic.Items)
	topic.ConfidenceScore = e.confidence(topic)
}

// growthRate splits the time range into three equal buckets and compares
// the most recent third's engagement against the earliest third's.
// Fewer than two non-empty buckets means no trend to measure; items
// without a timestamp are skipped. The result stays within
// [-1, GrowthCap].
func (e *Engine) growthRate(items []trend.ContentItem, timeRange platform.TimeRange) float64 {
	window := timeRange.Duration()
	end := e.now()
	start := end.Add(-window)
	bucketSize := window / 3

	var buckets [3]float64
	var filled [3]bool
	for _, item := range items {
		if item.PublishedAt == nil {
			continue
		}
		ts := *item.PublishedAt
		if ts.Before(start) || ts.After(end) {
			continue
		}
		idx := int(ts.Sub(start) / bucketSize)
		if idx > 2 {
			idx = 2
		}
		buckets[idx] += item.Engagement.Weighted()
		filled[idx] = true
	}

	nonEmpty := 0
	for _, f := range filled {
		if f {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return 0
	}

	earliest := buckets[0]
	recent := buckets[2]
	growth := (recent - earliest) / math.Max(earliest, 1)
	if growth < -1 {
		growth = -1
	}
	if growth > e.config.GrowthCap {
		growth = e.config.GrowthCap
	}
	return growth
}

// confidence blends platform breadth, engagement volume and item count,
// each saturating at its divisor. Always within [0, 1].
func (e *Engine) confidence(topic *trend.Topic) float64 {
	breadth := math.Min(float64(len(topic.Platforms))/4, 1)
	engagement := math.Min(topic.TotalEngagement/e.config.EngagementDivisor, 1)
	volume := math.Min(float64(len(topic.Items))/e.config.ItemCountDivisor, 1)

	c := e.config.BreadthWeight*breadth +
		e.config.EngagementWeight*engagement +
		e.config.ItemCountWeight*volume
	return math.Min(math.Max(c, 0), 1)
}

// Rank orders scored topics for reporting: confidence descending, then
// total engagement descending, then cluster key ascending. The final
// tie-break makes the ordering total.
func Rank(topics []trend.Topic) {
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].ConfidenceScore != topics[j].ConfidenceScore {
			return topics[i].ConfidenceScore > topics[j].ConfidenceScore
		}
		if topics[i].TotalEngagement != topics[j].TotalEngagement {
			return topics[i].TotalEngagement > topics[j].TotalEngagement
		}
		return topics[i].ClusterKey < topics[j].ClusterKey
	})
}
