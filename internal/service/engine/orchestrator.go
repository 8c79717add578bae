package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
	"trendscope/internal/monitoring"
	"trendscope/internal/service/score"
)

// EventPublisher pushes engine events onto the message bus. Satisfied by
// *nats.Conn.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// Options wires the orchestrator's collaborators. Store, Events and
// Metrics are optional; everything else is required.
type Options struct {
	Fetchers    []platform.Fetcher
	Normalizer  trend.Normalizer
	Clusterer   trend.Clusterer
	Validator   trend.Validator
	Scorer      trend.Scorer
	Gaps        trend.GapAnalyzer
	Influencers trend.InfluencerAnalyzer

	Store   trend.RunStore
	Events  EventPublisher
	Metrics *monitoring.Metrics
	Logger  *logrus.Logger

	// DefaultLimits fills in any zero field of a request's limits.
	DefaultLimits trend.Limits
	// MinQualityScore drops normalized items below the threshold before
	// clustering. Zero disables the filter.
	MinQualityScore float64
	// EventsTopic is the subject prefix for published events.
	EventsTopic string
}

// Orchestrator implements trend.Runner: concurrent fan-out fetch across
// (platform, keyword) pairs, then the sequential analysis pipeline.
// Holds no state between runs.
type Orchestrator struct {
	opts     Options
	fetchers map[platform.Platform]platform.Fetcher
	logger   *logrus.Logger
}

// NewOrchestrator builds a run orchestrator from its collaborators.
func NewOrchestrator(opts Options) *Orchestrator {
	fetchers := make(map[platform.Platform]platform.Fetcher, len(opts.Fetchers))
	for _, f := range opts.Fetchers {
		fetchers[f.Platform()] = f
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	if opts.EventsTopic == "" {
		opts.EventsTopic = "trend"
	}
	return &Orchestrator{opts: opts, fetchers: fetchers, logger: logger}
}

// fetchResult is one task's outcome, written into its own slot.
type fetchResult struct {
	platform platform.Platform
	items    []platform.RawItem
	err      error
	elapsed  time.Duration
}

// Run executes one full analysis. Configuration problems return a
// *trend.ConfigError before any network activity. Zero evidence returns
// the partial result alongside trend.ErrNoEvidence.
func (o *Orchestrator) Run(ctx context.Context, req trend.Request) (*trend.RunResult, error) {
	req = o.applyDefaults(req)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	result := &trend.RunResult{
		RunID:     uuid.New().String(),
		Keywords:  req.Keywords,
		TimeRange: req.TimeRange,
		StartedAt: time.Now(),
	}

	log := o.logger.WithFields(logrus.Fields{
		"run_id":     result.RunID,
		"keywords":   strings.Join(req.Keywords, ","),
		"time_range": req.TimeRange,
	})
	log.Info("starting analysis run")

	raw, health := o.fetchAll(ctx, req)
	result.Health = health
	for _, h := range health {
		if h.Degraded {
			result.DegradedPlatforms = append(result.DegradedPlatforms, h.Platform)
		}
	}

	if len(raw) == 0 {
		result.Status = trend.StatusNoEvidence
		result.CompletedAt = time.Now()
		o.finishRun(ctx, result, log)
		return result, trend.ErrNoEvidence
	}

	items := o.normalize(raw)
	candidates := o.opts.Clusterer.Cluster(items)
	validated := o.opts.Validator.Validate(candidates)

	for i := range validated {
		o.opts.Scorer.Score(&validated[i], req.TimeRange)
	}
	score.Rank(validated)
	result.Topics = validated

	if len(validated) == 0 {
		result.Status = trend.StatusNoValidatedTopics
	} else {
		result.Status = trend.StatusCompleted
		covered := coveredPlatforms(req.Platforms, health)
		result.Gaps = o.opts.Gaps.FindGaps(validated, covered)
		result.Influencers = o.opts.Influencers.FindInfluencers(validated)
	}

	result.CompletedAt = time.Now()
	log.WithFields(logrus.Fields{
		"status":   result.Status,
		"topics":   len(result.Topics),
		"degraded": len(result.DegradedPlatforms),
		"elapsed":  result.CompletedAt.Sub(result.StartedAt).String(),
	}).Info("analysis run finished")

	o.finishRun(ctx, result, log)
	return result, nil
}

// applyDefaults fills request gaps: all platforms when none are named,
// the 7d range when the range is empty, and the configured limits.
func (o *Orchestrator) applyDefaults(req trend.Request) trend.Request {
	if len(req.Platforms) == 0 {
		req.Platforms = platform.All()
	}
	if req.TimeRange == "" {
		req.TimeRange = platform.Range7d
	}
	def := o.opts.DefaultLimits
	if req.Limits.MaxItemsPerPlatform <= 0 {
		req.Limits.MaxItemsPerPlatform = def.MaxItemsPerPlatform
	}
	if req.Limits.PerPlatformTimeout <= 0 {
		req.Limits.PerPlatformTimeout = def.PerPlatformTimeout
	}
	if req.Limits.OverallTimeout <= 0 {
		req.Limits.OverallTimeout = def.OverallTimeout
	}
	return req
}

func validateRequest(req trend.Request) error {
	if len(req.Keywords) == 0 {
		return trend.NewConfigError("keywords", "at least one keyword is required")
	}
	for _, kw := range req.Keywords {
		if strings.TrimSpace(kw) == "" {
			return trend.NewConfigError("keywords", "keywords must be non-blank")
		}
	}
	if !req.TimeRange.Valid() {
		return trend.NewConfigError("time_range", fmt.Sprintf("unknown time range %q", req.TimeRange))
	}
	seen := map[platform.Platform]struct{}{}
	for _, p := range req.Platforms {
		if !p.Valid() {
			return trend.NewConfigError("platforms", fmt.Sprintf("unknown platform %q", p))
		}
		if _, dup := seen[p]; dup {
			return trend.NewConfigError("platforms", fmt.Sprintf("platform %q listed twice", p))
		}
		seen[p] = struct{}{}
	}
	if req.Limits.PerPlatformTimeout <= 0 || req.Limits.OverallTimeout <= 0 {
		return trend.NewConfigError("limits", "timeouts must be positive")
	}
	if req.Limits.OverallTimeout <= req.Limits.PerPlatformTimeout {
		return trend.NewConfigError("limits", "overall timeout must exceed the per-platform timeout")
	}
	return nil
}

// fetchAll fans out one task per (platform, keyword) pair. Every task
// writes into its own slot; no accumulator is shared across goroutines.
func (o *Orchestrator) fetchAll(ctx context.Context, req trend.Request) ([]platform.RawItem, []trend.PlatformHealth) {
	runCtx, cancel := context.WithTimeout(ctx, req.Limits.OverallTimeout)
	defer cancel()

	type task struct {
		platform platform.Platform
		keyword  string
	}
	var tasks []task
	healthByPlatform := map[platform.Platform]*trend.PlatformHealth{}
	for _, p := range req.Platforms {
		healthByPlatform[p] = &trend.PlatformHealth{Platform: p}
		if _, ok := o.fetchers[p]; !ok {
			// No fetcher registered, usually missing credentials. The
			// platform degrades instead of failing the run.
			h := healthByPlatform[p]
			h.Degraded = true
			h.Reason = platform.ReasonNetworkError
			continue
		}
		for _, kw := range req.Keywords {
			tasks = append(tasks, task{platform: p, keyword: kw})
		}
	}

	results := make([]fetchResult, len(tasks))
	group, groupCtx := errgroup.WithContext(runCtx)
	for i, tk := range tasks {
		i, tk := i, tk
		group.Go(func() error {
			fetcher := o.fetchers[tk.platform]
			taskCtx, taskCancel := context.WithTimeout(groupCtx, req.Limits.PerPlatformTimeout)
			defer taskCancel()

			started := time.Now()
			items, err := fetcher.Fetch(taskCtx, tk.keyword, platform.FetchOptions{
				MaxItems:  req.Limits.MaxItemsPerPlatform,
				TimeRange: req.TimeRange,
			})
			results[i] = fetchResult{
				platform: tk.platform,
				items:    items,
				err:      err,
				elapsed:  time.Since(started),
			}
			// Failures degrade the platform; they never abort the group.
			return nil
		})
	}
	// The group error is always nil; Wait only synchronizes the tasks.
	_ = group.Wait()

	var raw []platform.RawItem
	seen := map[string]struct{}{}
	for i := range results {
		r := &results[i]
		h := healthByPlatform[r.platform]
		h.Attempted++
		h.Elapsed += r.elapsed
		if o.opts.Metrics != nil {
			o.opts.Metrics.FetchAttempts.WithLabelValues(string(r.platform)).Inc()
			o.opts.Metrics.FetchDuration.WithLabelValues(string(r.platform)).Observe(r.elapsed.Seconds())
		}
		if r.err != nil {
			h.Failed++
			h.Degraded = true
			reason := classifyReason(r.err)
			if h.Reason == "" {
				h.Reason = reason
			}
			if o.opts.Metrics != nil {
				o.opts.Metrics.FetchFailures.WithLabelValues(string(r.platform), string(reason)).Inc()
			}
			o.logger.WithFields(logrus.Fields{
				"platform": r.platform,
				"reason":   reason,
			}).WithError(r.err).Warn("fetch task failed")
			continue
		}
		h.Succeeded++
		for _, item := range r.items {
			key := string(item.Platform) + "\x00" + item.URL
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			raw = append(raw, item)
		}
		if o.opts.Metrics != nil {
			o.opts.Metrics.ItemsCollected.WithLabelValues(string(r.platform)).Add(float64(len(r.items)))
		}
	}

	health := make([]trend.PlatformHealth, 0, len(healthByPlatform))
	for _, p := range req.Platforms {
		health = append(health, *healthByPlatform[p])
	}
	return raw, health
}

func classifyReason(err error) platform.FailureReason {
	var fe *platform.FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return platform.ReasonTimeout
	}
	return platform.ReasonNetworkError
}

func (o *Orchestrator) normalize(raw []platform.RawItem) []trend.ContentItem {
	items := make([]trend.ContentItem, 0, len(raw))
	for _, r := range raw {
		item, ok := o.opts.Normalizer.Normalize(r)
		if !ok {
			continue
		}
		if o.opts.MinQualityScore > 0 && item.QualityScore < o.opts.MinQualityScore {
			continue
		}
		items = append(items, item)
	}
	return items
}

// coveredPlatforms is the requested set minus platforms that produced
// nothing at all. Absence on a dead platform is not a content gap.
func coveredPlatforms(requested []platform.Platform, health []trend.PlatformHealth) []platform.Platform {
	succeeded := map[platform.Platform]bool{}
	for _, h := range health {
		if h.Succeeded > 0 {
			succeeded[h.Platform] = true
		}
	}
	covered := make([]platform.Platform, 0, len(requested))
	for _, p := range requested {
		if succeeded[p] {
			covered = append(covered, p)
		}
	}
	sort.Slice(covered, func(i, j int) bool { return covered[i] < covered[j] })
	return covered
}

// finishRun records metrics, archives the result and publishes events.
// Collaborator failures are logged, never propagated; the run result is
// already complete.
func (o *Orchestrator) finishRun(ctx context.Context, result *trend.RunResult, log *logrus.Entry) {
	if o.opts.Metrics != nil {
		o.opts.Metrics.RunsTotal.WithLabelValues(string(result.Status)).Inc()
		o.opts.Metrics.TopicsDetected.Add(float64(len(result.Topics)))
	}

	if o.opts.Store != nil {
		if err := o.opts.Store.SaveRun(ctx, result); err != nil {
			log.WithError(err).Error("failed to archive run result")
		}
	}

	if o.opts.Events == nil {
		return
	}
	o.publishEvent(o.opts.EventsTopic+".run.completed", runCompletedEvent{
		RunID:             result.RunID,
		Status:            result.Status,
		TopicCount:        len(result.Topics),
		DegradedPlatforms: result.DegradedPlatforms,
		CompletedAt:       result.CompletedAt,
	}, log)
	for i := range result.Topics {
		t := &result.Topics[i]
		o.publishEvent(o.opts.EventsTopic+".topic.detected", topicDetectedEvent{
			RunID:      result.RunID,
			ClusterKey: t.ClusterKey,
			Category:   t.Category,
			Platforms:  t.Platforms,
			Confidence: t.ConfidenceScore,
			Engagement: t.TotalEngagement,
		}, log)
	}
}

type runCompletedEvent struct {
	RunID             string              `json:"run_id"`
	Status            trend.RunStatus     `json:"status"`
	TopicCount        int                 `json:"topic_count"`
	DegradedPlatforms []platform.Platform `json:"degraded_platforms,omitempty"`
	CompletedAt       time.Time           `json:"completed_at"`
}

type topicDetectedEvent struct {
	RunID      string              `json:"run_id"`
	ClusterKey string              `json:"cluster_key"`
	Category   trend.Category      `json:"category"`
	Platforms  []platform.Platform `json:"platforms"`
	Confidence float64             `json:"confidence"`
	Engagement float64             `json:"engagement"`
}

func (o *Orchestrator) publishEvent(subject string, payload any, log *logrus.Entry) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("failed to marshal event")
		return
	}
	if err := o.opts.Events.Publish(subject, data); err != nil {
		log.WithFields(logrus.Fields{"subject": subject}).WithError(err).Warn("failed to publish event")
	}
}
