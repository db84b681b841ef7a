package decay_test

import (
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/engram/pkg/decay"
	"github.com/m-mizutani/gt"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestStrengthCurve(t *testing.T) {
	now := time.Now()
	halfLife := 2.0

	testCases := []struct {
		name     string
		age      time.Duration
		expected float64
	}{
		{name: "zero age", age: 0, expected: 1.0},
		{name: "one half-life", age: 48 * time.Hour, expected: 0.5},
		{name: "two half-lives", age: 96 * time.Hour, expected: 0.25},
		{name: "half of a half-life", age: 24 * time.Hour, expected: math.Sqrt(0.5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := decay.Strength(now.Add(-tc.age), 0, halfLife, now)
			gt.B(t, almostEqual(got, tc.expected, 0.01)).True()
		})
	}
}

func TestStrengthFutureTimestamp(t *testing.T) {
	now := time.Now()
	got := decay.Strength(now.Add(time.Hour), 0, 2.0, now)
	gt.V(t, got).Equal(1.0)
}

func TestStrengthZeroAndOneAccessEqual(t *testing.T) {
	now := time.Now()
	created := now.Add(-72 * time.Hour)

	zero := decay.Strength(created, 0, 2.0, now)
	one := decay.Strength(created, 1, 2.0, now)
	gt.V(t, zero).Equal(one)
}

func TestStrengthFullAtZeroAge(t *testing.T) {
	now := time.Now()
	for _, n := range []int{0, 1, 5, 100} {
		got := decay.Strength(now, n, 2.0, now)
		gt.B(t, almostEqual(got, 1.0, 1e-9)).True()
	}
}

func TestStrengthMonotonicInAge(t *testing.T) {
	now := time.Now()
	prev := 1.0
	for days := 1; days <= 30; days++ {
		got := decay.Strength(now.Add(-time.Duration(days)*24*time.Hour), 2, 2.0, now)
		gt.B(t, got <= prev).True()
		prev = got
	}
}

func TestStrengthMonotonicInAccessCount(t *testing.T) {
	now := time.Now()
	created := now.Add(-10 * 24 * time.Hour)

	prev := 0.0
	for n := 0; n <= 20; n++ {
		got := decay.Strength(created, n, 2.0, now)
		gt.B(t, got >= prev).True()
		prev = got
	}
}

func TestStrengthAccessResistsDecay(t *testing.T) {
	now := time.Now()
	created := now.Add(-8 * 24 * time.Hour)

	// 8 days old, 4 accesses: apparent age 2 days = one half-life
	got := decay.Strength(created, 4, 2.0, now)
	gt.B(t, almostEqual(got, 0.5, 0.01)).True()
}

func TestStrengthClamped(t *testing.T) {
	now := time.Now()
	got := decay.Strength(now.Add(-365*24*time.Hour), 0, 1.0, now)
	gt.B(t, got >= 0.0).True()
	gt.B(t, got <= 1.0).True()
}

func TestWeight(t *testing.T) {
	gt.V(t, decay.Weight(0.5, 0.8)).Equal(0.4)
	gt.V(t, decay.Weight(1.0, 0.0)).Equal(0.0)
	gt.V(t, decay.Weight(0.0, 1.0)).Equal(0.0)
}
