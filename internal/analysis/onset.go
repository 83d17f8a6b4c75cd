package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// DetectOnsets returns note onset times, in seconds, found by half-wave
// rectified spectral flux with adaptive thresholding.
func DetectOnsets(samples []float32, sampleRate float64) []float64 {
	flux := SpectralFlux(samples)
	curve := adaptiveThreshold(movingMean(flux, fluxSmoothRadius), thresholdRadius)
	return pickPeaks(curve, onsetHopSize, sampleRate)
}

// SpectralFlux returns one value per analysis frame: the sum over the lower
// half of the spectrum of positive magnitude increases since the previous
// frame. Frames start every 512 samples and must fit entirely inside the
// input.
func SpectralFlux(samples []float32) []float64 {
	if len(samples) <= onsetFrameSize {
		return nil
	}

	fft := fourier.NewFFT(onsetFrameSize)
	win := window.Hann(onsetFrameSize)
	frame := make([]float64, onsetFrameSize)
	coeffs := make([]complex128, onsetFrameSize/2+1)
	bins := onsetFrameSize / 2
	prevMag := make([]float64, bins)

	flux := make([]float64, 0, (len(samples)-onsetFrameSize)/onsetHopSize+1)
	for start := 0; start+onsetFrameSize < len(samples); start += onsetHopSize {
		for j, x := range samples[start : start+onsetFrameSize] {
			frame[j] = float64(x)
		}
		floats.Mul(frame, win)
		coeffs = fft.Coefficients(coeffs, frame)

		var sum float64
		for k := range bins {
			mag := cmplx.Abs(coeffs[k])
			if diff := mag - prevMag[k]; diff > 0 {
				sum += diff
			}
			prevMag[k] = mag
		}
		flux = append(flux, sum)
	}

	return flux
}

// movingMean averages each value with its neighbors within radius,
// shrinking the window at the edges.
func movingMean(data []float64, radius int) []float64 {
	out := make([]float64, len(data))
	for i := range data {
		lo := max(0, i-radius)
		hi := min(len(data), i+radius+1)
		out[i] = floats.Sum(data[lo:hi]) / float64(hi-lo)
	}
	return out
}

// adaptiveThreshold keeps only the excess of each value over its local mean.
func adaptiveThreshold(data []float64, radius int) []float64 {
	means := movingMean(data, radius)
	out := make([]float64, len(data))
	for i, v := range data {
		if v > means[i] {
			out[i] = v - means[i]
		}
	}
	return out
}

// pickPeaks reports strict local maxima of curve as times, dropping any
// peak within minOnsetInterval of the previous one.
func pickPeaks(curve []float64, hop int, sampleRate float64) []float64 {
	var onsets []float64
	for i := 1; i < len(curve)-1; i++ {
		v := curve[i]
		if v <= 0 || v <= curve[i-1] || v <= curve[i+1] {
			continue
		}

		t := float64(i*hop) / sampleRate
		if len(onsets) == 0 || t-onsets[len(onsets)-1] > minOnsetInterval {
			onsets = append(onsets, t)
		}
	}
	return onsets
}
