package trend

import (
	"time"

	"trendscope/internal/domain/platform"
)

// Category is the closed classification set for topics.
type Category string

const (
	CategoryAIAutomation       Category = "AI_AUTOMATION"
	CategoryEcommerce          Category = "ECOMMERCE"
	CategoryContentCreation    Category = "CONTENT_CREATION"
	CategoryFreelancing        Category = "FREELANCING"
	CategoryInvestment         Category = "INVESTMENT"
	CategoryDigitalProducts    Category = "DIGITAL_PRODUCTS"
	CategoryAffiliateMarketing Category = "AFFILIATE_MARKETING"
	CategoryRealEstate         Category = "REAL_ESTATE"
	CategoryOther              Category = "OTHER"
)

// EngagementMetrics is the canonical engagement schema shared by all
// platforms. The normalizer maps each platform's raw counters onto these
// three slots in increasing cost-of-engagement order.
type EngagementMetrics struct {
	PrimaryCount   int `json:"primary_count"`
	SecondaryCount int `json:"secondary_count"`
	CommentCount   int `json:"comment_count"`
}

// Weighted is the canonical per-item engagement score:
// primary + 2*secondary + 3*comments. Comments weigh most because they
// cost the audience the most effort. Every consumer of item-level
// engagement goes through this method.
func (m EngagementMetrics) Weighted() float64 {
	return float64(m.PrimaryCount) + 2*float64(m.SecondaryCount) + 3*float64(m.CommentCount)
}

// ContentItem is a normalized piece of content. Immutable once created.
type ContentItem struct {
	Platform     platform.Platform `json:"platform"`
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	Author       string            `json:"author"`
	PublishedAt  *time.Time        `json:"published_at,omitempty"`
	BodyText     string            `json:"body_text"`
	Engagement   EngagementMetrics `json:"engagement"`
	Keywords     []string          `json:"keywords"`
	QualityScore float64           `json:"quality_score"`
}

// PlatformStats summarizes a topic's footprint on one platform.
type PlatformStats struct {
	Engagement float64 `json:"engagement"`
	ItemCount  int     `json:"item_count"`
	AvgQuality float64 `json:"avg_quality"`
}

// Topic is a cross-platform cluster of related content items, the unit of
// trend reporting. Created by the clusterer, populated by the scoring
// engine, read-only afterward.
//
// Invariants: Platforms matches the keys of PlatformBreakdown, and
// ConfidenceScore stays within [0, 1].
type Topic struct {
	ClusterKey        string                              `json:"cluster_key"`
	Platforms         []platform.Platform                 `json:"platforms"`
	Items             []ContentItem                       `json:"items"`
	TotalEngagement   float64                             `json:"total_engagement"`
	GrowthRate        float64                             `json:"growth_rate"`
	SentimentScore    float64                             `json:"sentiment_score"`
	ConfidenceScore   float64                             `json:"confidence_score"`
	Category          Category                            `json:"category"`
	PlatformBreakdown map[platform.Platform]PlatformStats `json:"platform_breakdown"`
	RelatedKeywords   []string                            `json:"related_keywords"`
}

// HasPlatform reports whether the topic appeared on p.
func (t *Topic) HasPlatform(p platform.Platform) bool {
	for _, have := range t.Platforms {
		if have == p {
			return true
		}
	}
	return false
}

// ContentGap marks a validated topic's absence on a platform, treated as
// an opportunity signal. Never mutated after creation.
type ContentGap struct {
	ClusterKey            string              `json:"cluster_key"`
	TargetPlatforms       []platform.Platform `json:"target_platforms"`
	OpportunityScore      float64             `json:"opportunity_score"`
	SuggestedContentTypes []string            `json:"suggested_content_types"`
}

// InfluencerProfile describes one author on one platform, derived per run.
// No cross-run identity merging is performed.
type InfluencerProfile struct {
	Author                 string            `json:"author"`
	Platform               platform.Platform `json:"platform"`
	FollowerEstimate       int               `json:"follower_estimate"`
	EngagementRate         float64           `json:"engagement_rate"`
	ContentThemes          []string          `json:"content_themes"`
	CollaborationPotential float64           `json:"collaboration_potential"`
}

// PlatformHealth is the per-platform observability record of a run.
type PlatformHealth struct {
	Platform  platform.Platform      `json:"platform"`
	Attempted int                    `json:"attempted"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Elapsed   time.Duration          `json:"elapsed"`
	Degraded  bool                   `json:"degraded"`
	Reason    platform.FailureReason `json:"reason,omitempty"`
}

// RunStatus describes the overall outcome of an analysis run.
type RunStatus string

const (
	// StatusCompleted means at least one platform produced items and the
	// pipeline ran to completion.
	StatusCompleted RunStatus = "completed"
	// StatusNoValidatedTopics means evidence was collected but no candidate
	// survived cross-platform validation. A normal outcome, not an error.
	StatusNoValidatedTopics RunStatus = "no_validated_topics"
	// StatusNoEvidence means zero platforms returned any items.
	StatusNoEvidence RunStatus = "no_evidence"
)

// RunResult is the full outcome of one analysis invocation. All contained
// entities are created fresh per run; the engine holds no state between
// runs.
type RunResult struct {
	RunID             string              `json:"run_id"`
	Status            RunStatus           `json:"status"`
	Keywords          []string            `json:"keywords"`
	TimeRange         platform.TimeRange  `json:"time_range"`
	Topics            []Topic             `json:"topics"`
	Gaps              []ContentGap        `json:"gaps"`
	Influencers       []InfluencerProfile `json:"influencers"`
	Health            []PlatformHealth    `json:"health"`
	DegradedPlatforms []platform.Platform `json:"degraded_platforms"`
	StartedAt         time.Time           `json:"started_at"`
	CompletedAt       time.Time           `json:"completed_at"`
}
