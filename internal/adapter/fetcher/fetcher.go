// Package fetcher implements the platform.Fetcher interface for each
// supported content source. Every fetcher owns its HTTP client and
// translates transport failures into classified platform errors.
package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"trendscope/internal/domain/platform"
)

const defaultUserAgent = "trendscope/1.0 (content research)"

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 20 * time.Second,
	}
}

// classifyStatus maps an HTTP status code onto a failure reason.
func classifyStatus(code int) platform.FailureReason {
	switch {
	case code == http.StatusTooManyRequests:
		return platform.ReasonRateLimited
	case code == http.StatusForbidden || code == http.StatusUnauthorized:
		return platform.ReasonBlocked
	default:
		return platform.ReasonNetworkError
	}
}

// classifyTransport maps a transport-level error onto a failure reason.
func classifyTransport(err error) platform.FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return platform.ReasonTimeout
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return platform.ReasonTimeout
	}
	return platform.ReasonNetworkError
}

// clampMaxItems bounds a requested item count to [1, ceiling].
func clampMaxItems(requested, fallback, ceiling int) int {
	if requested <= 0 {
		requested = fallback
	}
	if requested > ceiling {
		return ceiling
	}
	return requested
}
