package analysis

import (
	"math"

	"github.com/tphakala/go-audio-timestretch/internal/simdops"
)

// Level summarizes the amplitude of a block of samples.
type Level struct {
	RMS  float64
	Peak float64 // largest absolute sample
	Mean float64 // DC offset
}

// Measure computes the level of samples. An empty block measures as zero.
func Measure[F simdops.Float](samples []F) Level {
	if len(samples) == 0 {
		return Level{}
	}

	ops := simdops.For[F]()
	n := float64(len(samples))

	var peak F
	for _, v := range samples {
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}

	return Level{
		RMS:  math.Sqrt(float64(ops.DotProductUnsafe(samples, samples)) / n),
		Peak: float64(peak),
		Mean: float64(ops.Sum(samples)) / n,
	}
}

// PeakDBFS returns the peak level in dB relative to full scale.
func (l Level) PeakDBFS() float64 {
	return toDB(l.Peak)
}

// RMSDBFS returns the RMS level in dB relative to full scale.
func (l Level) RMSDBFS() float64 {
	return toDB(l.RMS)
}

func toDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
