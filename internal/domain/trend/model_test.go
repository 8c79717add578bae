package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngagementWeighting(t *testing.T) {
	m := EngagementMetrics{PrimaryCount: 100, SecondaryCount: 20, CommentCount: 5}
	assert.InDelta(t, 155.0, m.Weighted(), 1e-9)

	assert.Zero(t, EngagementMetrics{}.Weighted())
}
