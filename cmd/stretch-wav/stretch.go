package main

import (
	"fmt"
	"log"
	"runtime"

	timestretch "github.com/tphakala/go-audio-timestretch"
	"github.com/tphakala/go-audio-timestretch/internal/analysis"
	"github.com/tphakala/go-audio-timestretch/internal/wavio"
)

// stretchStats summarizes one processed file.
type stretchStats struct {
	speed         float64
	sampleRate    int
	channels      int
	bitDepth      int
	inputSamples  int
	outputSamples int
	checksum      uint64
}

// newStretcher builds a stretcher for the file's sample rate.
func newStretcher(sampleRate int, opts options) (*timestretch.Stretcher, error) {
	workers := 1
	if opts.parallelSearch {
		workers = runtime.GOMAXPROCS(0)
	}

	s, err := timestretch.New(&timestretch.Config{
		SampleRate:     float64(sampleRate),
		SpeedRatio:     opts.speed,
		EnableParallel: opts.parallel,
		SearchWorkers:  workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stretcher: %w", err)
	}
	return s, nil
}

// stretchFile reads inputPath, stretches every channel and writes outputPath.
func stretchFile(inputPath, outputPath string, opts options) (*stretchStats, error) {
	in, err := wavio.Read(inputPath)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", in.SampleRate, len(in.Channels), in.BitDepth)
	}

	s, err := newStretcher(in.SampleRate, opts)
	if err != nil {
		return nil, err
	}

	if opts.verbose {
		p := s.Params()
		log.Printf("Window: %d, search: %d, hop out: %d, hop in: %d",
			p.WindowSize, p.SearchRange, p.HopOut, p.HopIn)
	}

	stretched, chStats := s.ProcessMultiWithStats(in.Channels)

	if opts.verbose {
		for ch, st := range chStats {
			log.Printf("Channel %d: %s, %d frames, %d -> %d samples, drift %d",
				ch, st.FinalState, st.Frames, len(in.Channels[ch]), st.OutputLen, st.Drift)
		}
		reportAnalysis(in.Channels[0], stretched[0], in.SampleRate)
	}

	out := &wavio.Audio{
		SampleRate: in.SampleRate,
		BitDepth:   in.BitDepth,
		Channels:   stretched,
	}
	samples, err := wavio.Write(outputPath, out)
	if err != nil {
		return nil, err
	}

	return &stretchStats{
		speed:         opts.speed,
		sampleRate:    in.SampleRate,
		channels:      len(in.Channels),
		bitDepth:      in.BitDepth,
		inputSamples:  in.Frames(),
		outputSamples: len(samples) / len(in.Channels),
		checksum:      wavio.Checksum(samples),
	}, nil
}

// reportAnalysis logs level and pitch of one channel before and after
// stretching. Pitch should be unchanged.
func reportAnalysis(before, after []float32, sampleRate int) {
	rate := float64(sampleRate)
	lb, la := analysis.Measure(before), analysis.Measure(after)
	log.Printf("Level: RMS %.1f dBFS -> %.1f dBFS, peak %.1f dBFS -> %.1f dBFS",
		lb.RMSDBFS(), la.RMSDBFS(), lb.PeakDBFS(), la.PeakDBFS())

	pb := analysis.MedianPitch(analysis.TrackPitch(before, rate))
	pa := analysis.MedianPitch(analysis.TrackPitch(after, rate))
	if pb > 0 && pa > 0 {
		log.Printf("Median pitch: %.1f Hz -> %.1f Hz", pb, pa)
	} else {
		log.Printf("Median pitch: unvoiced")
	}
}
