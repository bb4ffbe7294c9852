package ingest

import "time"

const (
	policyUnbounded  = "unbounded"
	policyByCount    = "count"
	policyByDuration = "duration"
)

// TerminationPolicy decides when the streaming phase ends. It is selected
// at construction time and evaluated once per received item.
type TerminationPolicy struct {
	mode     string
	maxCount int
	duration time.Duration
}

// Unbounded streams until the context is canceled.
func Unbounded() TerminationPolicy {
	return TerminationPolicy{mode: policyUnbounded}
}

// StopAfterCount stops once n items have been accepted during streaming.
func StopAfterCount(n int) TerminationPolicy {
	return TerminationPolicy{mode: policyByCount, maxCount: n}
}

// StopAfterDuration stops once d of wall clock has elapsed since the
// stream phase started.
func StopAfterDuration(d time.Duration) TerminationPolicy {
	return TerminationPolicy{mode: policyByDuration, duration: d}
}

// Done reports whether the stream phase should stop, given the number of
// accepted items and the phase start time.
func (p TerminationPolicy) Done(accepted int, started time.Time) bool {
	switch p.mode {
	case policyByCount:
		return accepted >= p.maxCount
	case policyByDuration:
		return time.Since(started) >= p.duration
	default:
		return false
	}
}

// String describes the policy for logging.
func (p TerminationPolicy) String() string {
	return p.mode
}
