package platform

import (
	"context"
	"fmt"
	"time"
)

// Platform identifies one external content source.
type Platform string

const (
	Search    Platform = "search"
	Video     Platform = "video"
	Forum     Platform = "forum"
	Microblog Platform = "microblog"
)

// All returns every supported platform in a fixed order.
func All() []Platform {
	return []Platform{Search, Video, Forum, Microblog}
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case Search, Video, Forum, Microblog:
		return true
	}
	return false
}

// TimeRange is the lookback window for a fetch.
type TimeRange string

const (
	Range24h TimeRange = "24h"
	Range7d  TimeRange = "7d"
	Range30d TimeRange = "30d"
)

// Duration converts the range to a time.Duration.
func (r TimeRange) Duration() time.Duration {
	switch r {
	case Range24h:
		return 24 * time.Hour
	case Range30d:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Valid reports whether r is a known time range.
func (r TimeRange) Valid() bool {
	switch r {
	case Range24h, Range7d, Range30d:
		return true
	}
	return false
}

// RawMetrics carries the platform-specific engagement counters of a raw
// item. Only the counters the platform actually reports are set; the
// normalizer is the sole consumer and nothing past normalization sees
// these fields.
type RawMetrics struct {
	Views    int
	Likes    int
	Upvotes  int
	Retweets int
	Replies  int
	Comments int
}

// RawItem is a single piece of content as returned by a platform fetcher,
// before normalization. Ephemeral; not retained past normalization.
type RawItem struct {
	Platform    Platform
	URL         string
	Title       string
	Author      string
	PublishedAt *time.Time
	Body        string
	Metrics     RawMetrics
}

// FetchOptions bounds a single fetch call.
type FetchOptions struct {
	MaxItems  int
	TimeRange TimeRange
}

// Fetcher produces raw items for one platform. Implementations own their
// transport, rate limiting and anti-bot state; the engine only passes
// limits in and never mutates shared crawl state.
type Fetcher interface {
	Platform() Platform
	Fetch(ctx context.Context, query string, opts FetchOptions) ([]RawItem, error)
}

// FailureReason classifies a fetch failure.
type FailureReason string

const (
	ReasonRateLimited  FailureReason = "rate_limited"
	ReasonTimeout      FailureReason = "timeout"
	ReasonBlocked      FailureReason = "blocked"
	ReasonNetworkError FailureReason = "network_error"
	ReasonParseError   FailureReason = "parse_error"
)

// FetchError is a platform-local failure. The engine treats every reason
// identically: the platform is degraded for the current run.
type FetchError struct {
	Platform Platform
	Reason   FailureReason
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s fetch failed (%s): %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s fetch failed (%s)", e.Platform, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err as a platform-local fetch failure.
func NewFetchError(p Platform, reason FailureReason, err error) *FetchError {
	return &FetchError{Platform: p, Reason: reason, Err: err}
}
