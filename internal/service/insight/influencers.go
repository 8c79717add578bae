package insight

import (
	"math"
	"sort"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

// InfluencerAnalyzer surfaces the authors behind validated topics.
// Identity is (author, platform) within a single run; the same handle on
// two platforms is two profiles and no cross-run merging happens.
type InfluencerAnalyzer struct{}

// NewInfluencerAnalyzer creates an influencer analyzer.
func NewInfluencerAnalyzer() *InfluencerAnalyzer {
	return &InfluencerAnalyzer{}
}

type authorKey struct {
	author   string
	platform platform.Platform
}

type authorStats struct {
	engagement float64
	items      int
	themes     map[string]struct{}
}

// FindInfluencers aggregates topic items per (author, platform) and
// derives a profile for each. Anonymous items are skipped. Results are
// ordered by collaboration potential descending, then author, then
// platform.
func (a *InfluencerAnalyzer) FindInfluencers(topics []trend.Topic) []trend.InfluencerProfile {
	stats := map[authorKey]*authorStats{}
	for _, topic := range topics {
		for _, item := range topic.Items {
			if item.Author == "" {
				continue
			}
			key := authorKey{author: item.Author, platform: item.Platform}
			s, ok := stats[key]
			if !ok {
				s = &authorStats{themes: map[string]struct{}{}}
				stats[key] = s
			}
			s.engagement += item.Engagement.Weighted()
			s.items++
			s.themes[topic.ClusterKey] = struct{}{}
		}
	}

	profiles := make([]trend.InfluencerProfile, 0, len(stats))
	for key, s := range stats {
		rate := s.engagement / float64(s.items)
		themes := make([]string, 0, len(s.themes))
		for theme := range s.themes {
			themes = append(themes, theme)
		}
		sort.Strings(themes)

		profiles = append(profiles, trend.InfluencerProfile{
			Author:                 key.author,
			Platform:               key.platform,
			FollowerEstimate:       followerEstimate(rate),
			EngagementRate:         rate,
			ContentThemes:          themes,
			CollaborationPotential: math.Min(rate/1000, 1) * math.Min(float64(s.items)/10, 1),
		})
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CollaborationPotential != profiles[j].CollaborationPotential {
			return profiles[i].CollaborationPotential > profiles[j].CollaborationPotential
		}
		if profiles[i].Author != profiles[j].Author {
			return profiles[i].Author < profiles[j].Author
		}
		return profiles[i].Platform < profiles[j].Platform
	})
	return profiles
}

// followerEstimate is a coarse reach guess from the average engagement
// rate. Crude tiers, labeled as an estimate everywhere it surfaces.
func followerEstimate(rate float64) int {
	switch {
	case rate < 10:
		return int(rate * 100)
	case rate < 100:
		return int(rate * 50)
	case rate < 1000:
		return int(rate * 20)
	default:
		return int(rate * 10)
	}
}
