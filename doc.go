// Package timestretch changes the playback speed of audio without changing
// its pitch, in pure Go.
//
// The algorithm is WSOLA (Waveform-Similarity Overlap-Add): the input is cut
// into Hann-windowed 20 ms frames that are laid down at a fixed output hop,
// while the input hop is scaled by the speed ratio. Before each frame is
// placed, a 10 ms search window around the nominal input position is scanned
// for the segment that best continues the waveform already written, which
// keeps periodic signals phase-coherent across frame boundaries.
//
// # Features
//
//   - Speed ratios above 1 shorten the signal, below 1 lengthen it
//   - Fully deterministic output; the optional parallel search is bit-identical
//     to the sequential one
//   - float32 and float64 sample paths sharing one generic engine
//   - Safe for concurrent use: a [Stretcher] holds only immutable state
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
// For one-shot processing of a mono buffer:
//
//	output, err := timestretch.TimeStretch(input, 44100, 1.5)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For repeated processing with the same settings:
//
//	s, err := timestretch.New(&timestretch.Config{
//	    SampleRate: 48000,
//	    SpeedRatio: 0.8,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, clip := range clips {
//	    stretched := s.Process(clip)
//	    writeOutput(stretched)
//	}
//
// # Short Inputs
//
// Inputs shorter than one window plus one search range (30 ms of audio) cannot
// be searched and are returned unchanged. This is not an error; check
// [Stats.FinalState] from [Stretcher.ProcessWithStats] to tell the cases apart.
//
// # Output Length
//
// The output holds whole frames only: its length is the window size plus a
// multiple of the output hop, and never exceeds
// floor(len(input)/SpeedRatio) + WindowSize. The tail of the input that
// cannot support another full search is dropped.
//
// # Multi-channel Audio
//
// The engine is mono. [Stretcher.ProcessMulti] runs one independent pass per
// channel, concurrently when [Config.EnableParallel] is set. Channels are
// searched independently, so inter-channel phase is not locked.
package timestretch
