package analysis

import (
	"math"
	"math/bits"
	"slices"

	"github.com/tphakala/go-audio-timestretch/internal/simdops"
	"gonum.org/v1/gonum/stat"
)

// PitchFrame is one pitch estimate.
type PitchFrame struct {
	// Time is the frame start in seconds.
	Time float64

	// Freq is the fundamental frequency in Hz, or 0 when none was found.
	Freq float64

	// Confidence is 1 minus the normalized difference at the chosen lag,
	// or 0 when no pitch was found.
	Confidence float64
}

// Voiced reports whether a pitch was detected in the frame.
func (f PitchFrame) Voiced() bool {
	return f.Freq > 0
}

// TrackPitch estimates pitch in 2048-sample frames every 512 samples. The
// last frames may be shorter than 2048 samples; each is analyzed on its
// largest power-of-two prefix.
func TrackPitch(samples []float32, sampleRate float64) []PitchFrame {
	if len(samples) == 0 {
		return nil
	}

	d := newYinDetector(pitchFrameSize)
	frames := make([]PitchFrame, 0, (len(samples)+pitchHopSize-1)/pitchHopSize)
	for start := 0; start < len(samples); start += pitchHopSize {
		end := min(start+pitchFrameSize, len(samples))
		freq, conf := d.detect(samples[start:end], sampleRate)
		frames = append(frames, PitchFrame{
			Time:       float64(start) / sampleRate,
			Freq:       freq,
			Confidence: conf,
		})
	}
	return frames
}

// DetectPitch runs YIN on a single frame and returns the fundamental
// frequency and confidence, or zeros if the frame is unvoiced.
func DetectPitch(frame []float32, sampleRate float64) (freq, confidence float64) {
	return newYinDetector(len(frame)).detect(frame, sampleRate)
}

// MedianPitch returns the median frequency of the voiced frames, or 0 if
// there are none.
func MedianPitch(frames []PitchFrame) float64 {
	voiced := make([]float64, 0, len(frames))
	for _, f := range frames {
		if f.Voiced() {
			voiced = append(voiced, f.Freq)
		}
	}
	if len(voiced) == 0 {
		return 0
	}
	slices.Sort(voiced)
	return stat.Quantile(0.5, stat.Empirical, voiced, nil)
}

// yinDetector holds scratch buffers so frames can be analyzed without
// allocating. Not safe for concurrent use.
type yinDetector struct {
	buf    []float64
	energy []float64 // prefix sums of buf[i]^2
	diff   []float64
	dot    func(a, b []float64) float64
}

func newYinDetector(maxFrame int) *yinDetector {
	return &yinDetector{
		buf:    make([]float64, 0, maxFrame),
		energy: make([]float64, 0, maxFrame+1),
		diff:   make([]float64, 0, maxFrame/2),
		dot:    simdops.Float64Ops().DotProductUnsafe,
	}
}

func (d *yinDetector) detect(frame []float32, sampleRate float64) (freq, confidence float64) {
	if len(frame) == 0 {
		return 0, 0
	}

	size := 1 << (bits.Len(uint(len(frame))) - 1)
	half := size / 2
	if half <= minYinLag+1 {
		return 0, 0
	}

	d.load(frame[:size])
	y := d.normalizedDifference(half)

	tau := -1
	for t := minYinLag; t < half; t++ {
		if y[t] < yinThreshold {
			for t+1 < half && y[t+1] < y[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return 0, 0
	}

	probability := 1 - y[tau]
	if probability < yinProbabilityThreshold {
		return 0, 0
	}

	return sampleRate / refineLag(y, tau), probability
}

func (d *yinDetector) load(frame []float32) {
	d.buf = d.buf[:0]
	d.energy = append(d.energy[:0], 0)
	var acc float64
	for _, x := range frame {
		v := float64(x)
		d.buf = append(d.buf, v)
		acc += v * v
		d.energy = append(d.energy, acc)
	}
}

// normalizedDifference computes the YIN cumulative mean normalized
// difference d'(tau) for tau < half. The squared difference is expanded as
// energy(0) + energy(tau) - 2*autocorrelation(tau).
func (d *yinDetector) normalizedDifference(half int) []float64 {
	x := d.buf
	head := x[:half]
	e0 := d.energy[half]

	y := d.diff[:0]
	y = append(y, 1)
	var running float64
	for tau := 1; tau < half; tau++ {
		shifted := d.energy[tau+half] - d.energy[tau]
		v := max(0, e0+shifted-2*d.dot(head, x[tau:tau+half]))

		running += v
		if running > 0 {
			v *= float64(tau) / running
		} else {
			v = 1
		}
		y = append(y, v)
	}
	d.diff = y
	return y
}

// refineLag fits a parabola through y[tau-1..tau+1] and returns the
// fractional lag of its minimum.
func refineLag(y []float64, tau int) float64 {
	if tau < 1 || tau >= len(y)-1 {
		return float64(tau)
	}

	s0, s1, s2 := y[tau-1], y[tau], y[tau+1]
	denom := 2 * (2*s1 - s2 - s0)
	if denom == 0 {
		return float64(tau)
	}

	shift := (s2 - s0) / denom
	if math.Abs(shift) > maxInterpolationShift {
		shift = 0
	}
	return float64(tau) + shift
}
