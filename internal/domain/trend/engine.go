package trend

import (
	"context"
	"time"

	"trendscope/internal/domain/platform"
)

// Limits bounds the fetch phase of a run.
type Limits struct {
	MaxItemsPerPlatform int
	PerPlatformTimeout  time.Duration
	OverallTimeout      time.Duration
}

// Request describes one analysis invocation.
type Request struct {
	Keywords  []string
	TimeRange platform.TimeRange
	Platforms []platform.Platform
	Limits    Limits
}

// Runner drives a full analysis run: fan-out fetch, normalize, cluster,
// validate, score, derive insights.
type Runner interface {
	Run(ctx context.Context, req Request) (*RunResult, error)
}

// Normalizer converts a raw platform item into the canonical content
// schema. The second return value is false when the item carries no
// signal to cluster on and must be discarded.
type Normalizer interface {
	Normalize(raw platform.RawItem) (ContentItem, bool)
}

// Clusterer groups content items across platforms into candidate topics.
// Must be deterministic with respect to the input set, independent of
// arrival order.
type Clusterer interface {
	Cluster(items []ContentItem) []Topic
}

// Validator filters candidate topics by minimum platform coverage.
// Validation is binary: topics failing the rule are dropped entirely.
type Validator interface {
	Validate(candidates []Topic) []Topic
}

// Scorer populates engagement, growth, sentiment and confidence scores on
// a topic in place.
type Scorer interface {
	Score(t *Topic, timeRange platform.TimeRange)
}

// GapAnalyzer derives content-gap opportunities from the validated,
// scored topic set.
type GapAnalyzer interface {
	FindGaps(topics []Topic, requested []platform.Platform) []ContentGap
}

// InfluencerAnalyzer surfaces influential authors from the validated
// topic set.
type InfluencerAnalyzer interface {
	FindInfluencers(topics []Topic) []InfluencerProfile
}

// TopicFilter narrows archived topic queries.
type TopicFilter struct {
	Category      Category
	MinConfidence float64
	Limit         int
}

// RunStore archives run results for the topics API. The engine itself is
// stateless between runs; persistence is a collaborator concern.
type RunStore interface {
	SaveRun(ctx context.Context, result *RunResult) error
	FindTopics(ctx context.Context, filter TopicFilter) ([]Topic, error)
	GetTopic(ctx context.Context, clusterKey string) (*Topic, error)
}
