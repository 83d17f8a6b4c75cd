package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateParams indicates that the frame geometry derived from the
// sample rate and speed ratio cannot drive a synthesis pass.
var ErrDegenerateParams = errors.New("degenerate time-stretch parameters")

// ErrInvalidParams indicates a non-positive or non-finite sample rate or
// speed ratio.
var ErrInvalidParams = errors.New("invalid time-stretch parameters")

// Params holds the frame geometry for one stretcher. It is derived once
// from the sample rate and speed ratio and never recomputed.
type Params struct {
	// SpeedRatio is the playback speed factor (>1 shortens, <1 lengthens).
	SpeedRatio float64

	// WindowSize is the frame length in samples (20 ms).
	WindowSize int

	// SearchRange is the number of candidate offsets scanned per frame (10 ms).
	SearchRange int

	// HopOut is the fixed output cursor advance per frame.
	HopOut int

	// HopIn is the nominal input cursor advance before similarity correction.
	HopIn int
}

// DeriveParams computes the frame geometry for sampleRate and speedRatio.
// It performs no validation; see [Params.Validate].
func DeriveParams(sampleRate, speedRatio float64) Params {
	windowSize := int(windowSeconds * sampleRate)
	hopOut := windowSize / hopDivisor

	return Params{
		SpeedRatio:  speedRatio,
		WindowSize:  windowSize,
		SearchRange: int(searchSeconds * sampleRate),
		HopOut:      hopOut,
		HopIn:       int(float64(hopOut) * speedRatio),
	}
}

// Validate reports whether the geometry can drive a synthesis pass.
func (p Params) Validate() error {
	if p.WindowSize < minWindowSize {
		return fmt.Errorf("%w: window size %d is below %d samples (sample rate too low)",
			ErrDegenerateParams, p.WindowSize, minWindowSize)
	}

	if p.HopIn < minHopIn {
		return fmt.Errorf("%w: input hop %d is below %d sample (speed ratio %v too small)",
			ErrDegenerateParams, p.HopIn, minHopIn, p.SpeedRatio)
	}

	return nil
}

// MinInputLen returns the shortest input that is time-stretched. Shorter
// inputs are returned unchanged.
func (p Params) MinInputLen() int {
	return p.WindowSize + p.SearchRange
}

// EstimatedOutputLen returns the pre-allocated output size for an input of
// inputLen samples. The actual output never exceeds it.
func (p Params) EstimatedOutputLen(inputLen int) int {
	return int(float64(inputLen)/p.SpeedRatio) + p.WindowSize
}

// validateRates checks sampleRate and speedRatio before derivation.
func validateRates(sampleRate, speedRatio float64) error {
	if !isFinitePositive(sampleRate) {
		return fmt.Errorf("%w: sample rate must be positive and finite: %v", ErrInvalidParams, sampleRate)
	}

	if !isFinitePositive(speedRatio) {
		return fmt.Errorf("%w: speed ratio must be positive and finite: %v", ErrInvalidParams, speedRatio)
	}

	return nil
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
