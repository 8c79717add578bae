package insight

import (
	"sort"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

// suggestedContentTypes maps a missing platform to the content formats
// worth producing there.
var suggestedContentTypes = map[platform.Platform][]string{
	platform.Video:     {"tutorial_video", "review_video", "case_study"},
	platform.Forum:     {"discussion_post", "ama", "guide"},
	platform.Microblog: {"thread", "quick_tip", "news_update"},
	platform.Search:    {"blog_post", "how_to_guide", "resource_list"},
}

// GapAnalyzer derives content gaps from validated topics: platforms the
// run actually covered where a topic has no presence.
type GapAnalyzer struct{}

// NewGapAnalyzer creates a gap analyzer.
func NewGapAnalyzer() *GapAnalyzer {
	return &GapAnalyzer{}
}

// FindGaps returns one gap per topic that misses at least one requested
// platform. A platform that produced nothing at all this run is excluded
// from requested by the caller; absence there is not evidence of a gap.
// Results are ordered by opportunity descending, then cluster key.
func (a *GapAnalyzer) FindGaps(topics []trend.Topic, requested []platform.Platform) []trend.ContentGap {
	if len(requested) == 0 {
		return nil
	}

	gaps := make([]trend.ContentGap, 0, len(topics))
	for _, topic := range topics {
		var missing []platform.Platform
		for _, p := range requested {
			if !topic.HasPlatform(p) {
				missing = append(missing, p)
			}
		}
		if len(missing) == 0 {
			continue
		}
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })

		coverage := float64(len(topic.Platforms)) / float64(len(requested))
		types := []string{}
		for _, p := range missing {
			types = append(types, suggestedContentTypes[p]...)
		}

		gaps = append(gaps, trend.ContentGap{
			ClusterKey:            topic.ClusterKey,
			TargetPlatforms:       missing,
			OpportunityScore:      topic.ConfidenceScore * (1 - coverage),
			SuggestedContentTypes: types,
		})
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].OpportunityScore != gaps[j].OpportunityScore {
			return gaps[i].OpportunityScore > gaps[j].OpportunityScore
		}
		return gaps[i].ClusterKey < gaps[j].ClusterKey
	})
	return gaps
}
