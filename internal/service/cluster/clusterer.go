package cluster

import (
	"sort"
	"strings"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

// Config holds the clusterer's similarity thresholds.
type Config struct {
	// KeywordThreshold is the minimum Jaccard similarity between two
	// items' keyword sets for them to be linked.
	KeywordThreshold float64
	// TitleThreshold is the minimum normalized word-bigram overlap
	// between two items' titles for them to be linked.
	TitleThreshold float64
}

// DefaultConfig returns the documented default thresholds. They are
// tunable constants, not guaranteed-correct values.
func DefaultConfig() Config {
	return Config{
		KeywordThreshold: 0.3,
		TitleThreshold:   0.4,
	}
}

// Clusterer groups content items into candidate topics by lexical
// similarity. Clustering is a pure function of the input set: items are
// sorted by (platform, url) before graph construction, so fetch arrival
// order never affects the result.
type Clusterer struct {
	config Config
}

// NewClusterer creates a clusterer with the given thresholds.
func NewClusterer(config Config) *Clusterer {
	if config.KeywordThreshold <= 0 {
		config.KeywordThreshold = DefaultConfig().KeywordThreshold
	}
	if config.TitleThreshold <= 0 {
		config.TitleThreshold = DefaultConfig().TitleThreshold
	}
	return &Clusterer{config: config}
}

// Cluster builds a similarity graph over items and returns one candidate
// topic per connected component. Candidates are unvalidated and unscored.
func (c *Clusterer) Cluster(items []trend.ContentItem) []trend.Topic {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]trend.ContentItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Platform != sorted[j].Platform {
			return sorted[i].Platform < sorted[j].Platform
		}
		return sorted[i].URL < sorted[j].URL
	})

	keywordSets := make([]map[string]struct{}, len(sorted))
	titleBigrams := make([]map[string]struct{}, len(sorted))
	for i, item := range sorted {
		keywordSets[i] = stringSet(item.Keywords)
		titleBigrams[i] = wordBigrams(item.Title)
	}

	uf := newUnionFind(len(sorted))
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if jaccard(keywordSets[i], keywordSets[j]) >= c.config.KeywordThreshold ||
				jaccard(titleBigrams[i], titleBigrams[j]) >= c.config.TitleThreshold {
				uf.union(i, j)
			}
		}
	}

	components := map[int][]int{}
	order := []int{}
	for i := range sorted {
		root := uf.find(i)
		if _, seen := components[root]; !seen {
			order = append(order, root)
		}
		components[root] = append(components[root], i)
	}

	topics := make([]trend.Topic, 0, len(components))
	for _, root := range order {
		members := make([]trend.ContentItem, 0, len(components[root]))
		for _, idx := range components[root] {
			members = append(members, sorted[idx])
		}
		topics = append(topics, c.buildTopic(members))
	}

	return topics
}

// buildTopic assembles one candidate topic from its member items.
func (c *Clusterer) buildTopic(members []trend.ContentItem) trend.Topic {
	key := canonicalPhrase(members)

	platformSet := map[platform.Platform]struct{}{}
	for _, m := range members {
		platformSet[m.Platform] = struct{}{}
	}
	platforms := make([]platform.Platform, 0, len(platformSet))
	for p := range platformSet {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })

	return trend.Topic{
		ClusterKey:      key,
		Platforms:       platforms,
		Items:           members,
		Category:        Categorize(key, members),
		RelatedKeywords: relatedKeywords(key, members),
	}
}

// canonicalPhrase picks the cluster key: the most frequent multi-word
// keyword across members, breaking ties by longest phrase and then by
// first appearance. Falls back to the most frequent single keyword, then
// to the first member's title.
func canonicalPhrase(members []trend.ContentItem) string {
	type candidate struct {
		phrase    string
		frequency int
		firstSeen int
	}

	counts := map[string]*candidate{}
	position := 0
	for _, m := range members {
		for _, kw := range m.Keywords {
			if c, ok := counts[kw]; ok {
				c.frequency++
			} else {
				counts[kw] = &candidate{phrase: kw, frequency: 1, firstSeen: position}
			}
			position++
		}
	}

	best := func(multiWord bool) string {
		var chosen *candidate
		for _, c := range counts {
			if strings.Contains(c.phrase, " ") != multiWord {
				continue
			}
			if chosen == nil ||
				c.frequency > chosen.frequency ||
				(c.frequency == chosen.frequency && len(c.phrase) > len(chosen.phrase)) ||
				(c.frequency == chosen.frequency && len(c.phrase) == len(chosen.phrase) && c.firstSeen < chosen.firstSeen) {
				chosen = c
			}
		}
		if chosen == nil {
			return ""
		}
		return chosen.phrase
	}

	if phrase := best(true); phrase != "" {
		return phrase
	}
	if phrase := best(false); phrase != "" {
		return phrase
	}
	return strings.ToLower(strings.TrimSpace(members[0].Title))
}

// relatedKeywords collects member keywords whose tokens overlap the
// cluster key, excluding the key itself. At most five, frequency-ranked.
func relatedKeywords(key string, members []trend.ContentItem) []string {
	keyTokens := stringSet(strings.Fields(key))

	counts := map[string]int{}
	for _, m := range members {
		for _, kw := range m.Keywords {
			if kw == key {
				continue
			}
			overlap := 0
			for _, tok := range strings.Fields(kw) {
				if _, ok := keyTokens[tok]; ok {
					overlap++
				}
			}
			if overlap > 0 {
				counts[kw]++
			}
		}
	}

	related := make([]string, 0, len(counts))
	for kw := range counts {
		related = append(related, kw)
	}
	sort.Slice(related, func(i, j int) bool {
		if counts[related[i]] != counts[related[j]] {
			return counts[related[i]] > counts[related[j]]
		}
		return related[i] < related[j]
	})

	if len(related) > 5 {
		related = related[:5]
	}
	return related
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// wordBigrams returns the set of normalized word bigrams of a title.
func wordBigrams(title string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(title))
	set := map[string]struct{}{}
	for i := 0; i+1 < len(words); i++ {
		set[words[i]+" "+words[i+1]] = struct{}{}
	}
	return set
}

// jaccard computes |a ∩ b| / |a ∪ b|; empty sets are never similar.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for v := range a {
		if _, ok := b[v]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// unionFind is a plain disjoint-set over item indices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Attach the larger root to the smaller to keep component roots
	// stable with respect to the sorted item order.
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
