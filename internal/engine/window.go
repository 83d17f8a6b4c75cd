package engine

import (
	"github.com/mjibson/go-dsp/window"

	"github.com/tphakala/go-audio-timestretch/internal/simdops"
)

// NewHannWindow returns a symmetric Hann window of size samples:
//
//	w[i] = 0.5 * (1 - cos(2π·i/(size-1)))
//
// Coefficients are computed in float64 and narrowed to F.
func NewHannWindow[F simdops.Float](size int) []F {
	coeffs := window.Hann(size)

	w := make([]F, len(coeffs))
	for i, c := range coeffs {
		w[i] = F(c)
	}
	return w
}
