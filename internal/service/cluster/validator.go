package cluster

import "trendscope/internal/domain/trend"

// Validator applies the cross-platform presence rule: a candidate topic
// survives only when it appears on at least minPlatforms distinct
// platforms. The rule is binary; there is no partial credit.
type Validator struct {
	minPlatforms int
}

// NewValidator creates a validator. minPlatforms below 1 is raised to 1.
func NewValidator(minPlatforms int) *Validator {
	if minPlatforms < 1 {
		minPlatforms = 1
	}
	return &Validator{minPlatforms: minPlatforms}
}

// Validate filters candidates in place order, preserving relative order
// of the survivors.
func (v *Validator) Validate(candidates []trend.Topic) []trend.Topic {
	validated := make([]trend.Topic, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Platforms) >= v.minPlatforms {
			validated = append(validated, c)
		}
	}
	return validated
}
