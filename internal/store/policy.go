package store

// DefaultMaxFailures is the freeze threshold used when none is configured.
const DefaultMaxFailures = 3

// MaxFailuresPolicy freezes a record once it has failed MaxFailures times.
type MaxFailuresPolicy struct {
	MaxFailures int
}

// NewMaxFailuresPolicy returns a policy with the given threshold, falling
// back to [DefaultMaxFailures] for non-positive values.
func NewMaxFailuresPolicy(maxFailures int) MaxFailuresPolicy {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	return MaxFailuresPolicy{MaxFailures: maxFailures}
}

// ShouldFreeze implements [FailurePolicy].
func (p MaxFailuresPolicy) ShouldFreeze(failures int) bool {
	return failures >= p.MaxFailures
}
