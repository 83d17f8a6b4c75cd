// Package engine implements Waveform-Similarity Overlap-Add (WSOLA)
// time-scale modification of mono sample buffers.
package engine

import (
	"fmt"

	"github.com/tphakala/go-audio-timestretch/internal/simdops"
)

// State identifies a phase of the synthesis pass.
type State int

const (
	// StateBypass means the input was too short to stretch and was
	// returned unchanged.
	StateBypass State = iota

	// StateInitializing places the first windowed frame.
	StateInitializing

	// StateMatching is the steady-state search and overlap-add loop.
	StateMatching

	// StateDone means the remaining input could not support another search.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateBypass:
		return "bypass"
	case StateInitializing:
		return "initializing"
	case StateMatching:
		return "matching"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats describes one completed pass.
type Stats struct {
	// FinalState is StateBypass or StateDone.
	FinalState State

	// Frames is the number of overlap-add frames placed after the first.
	Frames int

	// InputConsumed is the final input cursor.
	InputConsumed int

	// OutputLen is the length of the returned signal.
	OutputLen int

	// EstimatedLen is the pre-allocated output size (input length on bypass).
	EstimatedLen int

	// Drift is the sum of the per-frame search offsets, i.e. how far the
	// input cursor ran ahead of the nominal hop.
	Drift int
}

// Stretcher time-stretches mono buffers of sample type F. The geometry and
// window are fixed at construction and only read afterwards, so a
// Stretcher may be used from multiple goroutines at once.
type Stretcher[F simdops.Float] struct {
	params Params
	window []F
	search searcher[F]
}

// NewStretcher creates a stretcher for the given sample rate and speed
// ratio. searchWorkers > 1 enables the parallel similarity search.
func NewStretcher[F simdops.Float](sampleRate, speedRatio float64, searchWorkers int) (*Stretcher[F], error) {
	if err := validateRates(sampleRate, speedRatio); err != nil {
		return nil, err
	}

	params := DeriveParams(sampleRate, speedRatio)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Stretcher[F]{
		params: params,
		window: NewHannWindow[F](params.WindowSize),
		search: newSearcher[F](searchWorkers),
	}, nil
}

// Params returns the derived frame geometry.
func (s *Stretcher[F]) Params() Params {
	return s.params
}

// SearchWorkers returns the number of goroutines used per similarity search.
func (s *Stretcher[F]) SearchWorkers() int {
	return s.search.workers
}

// MemoryUsage returns the approximate resident size of the stretcher plus
// the output buffer for an input of inputLen samples.
func (s *Stretcher[F]) MemoryUsage(inputLen int) int64 {
	var zero F
	size := int64(bytesPerSample64)
	if _, ok := any(zero).(float32); ok {
		size = bytesPerSample32
	}
	samples := int64(len(s.window))
	if inputLen >= s.params.MinInputLen() {
		samples += int64(s.params.EstimatedOutputLen(inputLen))
	} else {
		samples += int64(inputLen)
	}
	return samples * size
}

// Process stretches input and returns a newly allocated output signal.
// The input is only read.
func (s *Stretcher[F]) Process(input []F) ([]F, Stats) {
	p := s.params
	n := len(input)

	if n < p.MinInputLen() {
		out := make([]F, n)
		copy(out, input)
		return out, Stats{
			FinalState:   StateBypass,
			OutputLen:    n,
			EstimatedLen: n,
		}
	}

	w := s.window
	out := newAccumBuffer[F](p.EstimatedOutputLen(n))
	stats := Stats{EstimatedLen: out.size()}

	// Initializing: the first frame is copied, windowed, without a search.
	for i := range p.WindowSize {
		out.set(i, input[i]*w[i])
	}
	inPtr, outPtr := 0, 0

	// Matching.
	for inPtr+p.HopIn+p.WindowSize+p.SearchRange < n {
		// The frame about to be placed must fit the pre-sized buffer. Only
		// extreme ratios, where flooring HopIn loses a large fraction of
		// the nominal hop, can run past the estimate.
		templateStart := outPtr + p.HopOut
		if templateStart+p.WindowSize > out.size() {
			break
		}
		template := out.view(templateStart, templateStart+p.HopOut)

		target := inPtr + p.HopIn
		area := input[target : target+p.HopOut+p.SearchRange]

		offset := s.search.bestOffset(template, area)
		adjusted := target + offset

		frame := input[adjusted : adjusted+p.WindowSize]
		for i, x := range frame {
			// Explicit conversion rounds the product before the add (no FMA).
			if !out.accumulate(templateStart+i, F(x*w[i])) {
				break
			}
		}

		outPtr += p.HopOut
		inPtr = adjusted
		stats.Frames++
		stats.Drift += offset
	}

	output := out.truncate(outPtr + p.WindowSize)

	stats.FinalState = StateDone
	stats.InputConsumed = inPtr
	stats.OutputLen = len(output)
	return output, stats
}
