// Package policy maps infraction counts to punishment durations.
//
// The curve is deliberately harsh: 2^count seconds, so the first duplicate
// costs 2s and the twentieth already costs over 12 days. Durations saturate
// at MaxDuration instead of overflowing for very large counts.
package policy

import (
	"fmt"
	"time"
)

// MaxDuration caps every punishment. 28 days is the longest posting
// restriction the platform accepts; 2^count seconds is exact up to count 21
// and saturates here beyond that.
const MaxDuration = 28 * 24 * time.Hour

// Decision is the ephemeral outcome of one punishment computation. It is
// never persisted as-is; each violation recomputes it from the current count.
type Decision struct {
	Duration time.Duration
	Count    int64
	Reason   string
}

// Decide computes the punishment for a user's count-th infraction.
// count must be >= 1 (the ledger guarantees this).
func Decide(count int64) Decision {
	return Decision{
		Duration: durationFor(count),
		Count:    count,
		Reason:   fmt.Sprintf("duplicate content (infraction #%d)", count),
	}
}

// durationFor returns 2^count seconds, saturated at MaxDuration.
// 2^21 seconds is about 24 days; anything beyond would pass the cap (and,
// much later, wrap the underlying int64), so saturate before shifting.
func durationFor(count int64) time.Duration {
	if count > 21 {
		return MaxDuration
	}
	d := time.Duration(1<<uint(count)) * time.Second
	if d > MaxDuration {
		return MaxDuration
	}
	return d
}
