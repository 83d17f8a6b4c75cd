// Package testutil provides reusable test helpers and signal generators for
// time-stretch tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	WindowTolerance  = 1e-6
	OverlapTolerance = 5e-3 // Hann 50% overlap ripple at 44.1 kHz
)

// Sine32 returns n samples of a sine wave at freq Hz with the given amplitude.
func Sine32(n int, freq, sampleRate, amplitude float64) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return s
}

// Sine64 is the float64 equivalent of Sine32.
func Sine64(n int, freq, sampleRate, amplitude float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return s
}

// Noise32 returns n samples of uniform noise in [-amplitude, amplitude).
// The same seed always yields the same signal.
func Noise32(n int, amplitude float64, seed uint64) []float32 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(amplitude * (2*rng.Float64() - 1))
	}
	return s
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllZero verifies that every element is exactly zero.
func AssertAllZero(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "non-zero sample", "s[%d]=%g", i, v)
		}
	}
	return true
}

// AssertBitIdentical verifies that two slices have the same length and
// bit-identical contents.
func AssertBitIdentical(t *testing.T, expected, actual []float32, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Float32bits(expected[i]) != math.Float32bits(actual[i]) {
			return assert.Fail(t, "samples differ",
				"sample %d: expected %g (%#08x), got %g (%#08x)",
				i, expected[i], math.Float32bits(expected[i]), actual[i], math.Float32bits(actual[i]))
		}
	}
	return true
}

// AssertCloseRange verifies |expected[i]-actual[i]| <= tolerance for i in [from, to).
func AssertCloseRange(t *testing.T, expected, actual []float32, from, to int, tolerance float64) bool {
	t.Helper()
	for i := from; i < to; i++ {
		if diff := math.Abs(float64(expected[i]) - float64(actual[i])); diff > tolerance {
			return assert.Fail(t, "sample out of tolerance",
				"sample %d: expected %g, got %g (diff %g > %g)", i, expected[i], actual[i], diff, tolerance)
		}
	}
	return true
}

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float32, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}
