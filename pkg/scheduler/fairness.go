package scheduler

import "math"

// FairnessSettings holds the tunable coefficients of the fairness formula.
// It is a value type: callers take a snapshot via Settings.Load and compute
// against it, rather than holding a live reference, so that a concurrent
// settings update never changes the priority of a request mid-wait.
type FairnessSettings struct {
	BasePriority  float64
	WaitWeight    float64
	UsageWeight   float64
	UsageScale    float64
	WindowMinutes int64

	// QueueTimeoutSecs bounds how long a request may wait in a model's
	// queue before Admit gives up with a queue-timeout error; also the
	// value reported back to callers via the Retry-After header.
	QueueTimeoutSecs int64
}

// DefaultFairnessSettings returns the factory-default coefficients.
func DefaultFairnessSettings() FairnessSettings {
	return FairnessSettings{
		BasePriority:     100.0,
		WaitWeight:       1.0,
		UsageWeight:      10.0,
		UsageScale:       1000.0,
		WindowMinutes:    60,
		QueueTimeoutSecs: 30,
	}
}

// Priority computes the fairness score for a request that has waited
// waitSeconds and whose token has consumed recentTokens tokens within the
// settings' usage window. The formula is total over its domain: zero wait
// and zero usage always yields exactly BasePriority, and the result is
// strictly increasing in waitSeconds when WaitWeight is positive and
// strictly decreasing in recentTokens when UsageWeight is positive.
func (s FairnessSettings) Priority(waitSeconds float64, recentTokens int64) float64 {
	usageTerm := s.UsageWeight * math.Log1p(float64(recentTokens)/s.UsageScale)
	return s.BasePriority + s.WaitWeight*waitSeconds - usageTerm
}
