// Package decay implements the utility/decay scorer for memory records.
//
// A record starts at full strength 1.0 and halves every half-life of
// apparent age. Each access divides the apparent age, so records that
// are reused resist decay while unused records follow a pure
// exponential.
package decay

import (
	"math"
	"time"
)

// DefaultHalfLifeDays is the half-life applied when callers do not
// configure one.
const DefaultHalfLifeDays = 2.0

// Strength returns the decay strength in [0, 1] of a record created at
// createdAt with the given access count, evaluated at now.
//
// effectiveAgeDays = ageDays / max(1, accessCount)
// strength = 0.5 ^ (effectiveAgeDays / halfLifeDays)
//
// A timestamp in the future returns full strength rather than a value
// above 1. Zero accesses behave the same as one.
func Strength(createdAt time.Time, accessCount int, halfLifeDays float64, now time.Time) float64 {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}

	ageDays := now.Sub(createdAt).Seconds() / 86400.0
	if ageDays < 0 {
		return 1.0
	}

	divisor := float64(accessCount)
	if divisor < 1 {
		divisor = 1
	}

	effectiveAge := ageDays / divisor
	strength := math.Pow(0.5, effectiveAge/halfLifeDays)

	return math.Max(0.0, math.Min(1.0, strength))
}

// Weight combines decay strength with a record's fixed confidence.
// It is the canonical score for both ranking (descending) and pruning
// (ascending, lowest removed first).
func Weight(strength, confidence float64) float64 {
	return strength * confidence
}
