// Command analyze-wav reports onsets, pitch and levels of a WAV file.
//
// Usage:
//
//	analyze-wav input.wav
//	analyze-wav -downmix -onsets 50 input.wav
//	analyze-wav -channel 1 -pitch input.wav    # print every pitch frame
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/tphakala/go-audio-timestretch/internal/analysis"
	"github.com/tphakala/go-audio-timestretch/internal/wavio"
)

const (
	// Display limits
	defaultMaxOnsets = 20
	minRequiredArgs  = 1

	// onsetsPerLine keeps the onset list readable
	onsetsPerLine = 8
)

// report holds everything printed for one file.
type report struct {
	sampleRate int
	channels   int
	bitDepth   int
	frames     int
	level      analysis.Level
	onsets     []float64
	pitch      []analysis.PitchFrame
	elapsed    time.Duration
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	channel := flag.Int("channel", 0, "Channel to analyze")
	downmix := flag.Bool("downmix", false, "Average all channels before analysis")
	maxOnsets := flag.Int("onsets", defaultMaxOnsets, "Maximum onsets to print (0 = all)")
	showPitch := flag.Bool("pitch", false, "Print every pitch frame")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}

	in, err := wavio.Read(args[0])
	if err != nil {
		return err
	}
	if *verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", in.SampleRate, len(in.Channels), in.BitDepth)
	}

	samples, err := selectSamples(in, *channel, *downmix)
	if err != nil {
		return err
	}

	r := analyze(samples, in)
	if *verbose {
		log.Printf("Analysis took %v", r.elapsed)
	}

	printReport(os.Stdout, args[0], r, *maxOnsets, *showPitch)
	return nil
}

// selectSamples picks the mono signal to analyze.
func selectSamples(in *wavio.Audio, channel int, downmix bool) ([]float32, error) {
	if downmix {
		return wavio.Downmix(in.Channels), nil
	}
	if channel < 0 || channel >= len(in.Channels) {
		return nil, fmt.Errorf("channel %d out of range (file has %d)", channel, len(in.Channels))
	}
	return in.Channels[channel], nil
}

func analyze(samples []float32, in *wavio.Audio) *report {
	start := time.Now()
	rate := float64(in.SampleRate)
	return &report{
		sampleRate: in.SampleRate,
		channels:   len(in.Channels),
		bitDepth:   in.BitDepth,
		frames:     len(samples),
		level:      analysis.Measure(samples),
		onsets:     analysis.DetectOnsets(samples, rate),
		pitch:      analysis.TrackPitch(samples, rate),
		elapsed:    time.Since(start),
	}
}

func printReport(w io.Writer, name string, r *report, maxOnsets int, showPitch bool) {
	duration := float64(r.frames) / float64(r.sampleRate)

	fmt.Fprintf(w, "=== %s ===\n", name)
	fmt.Fprintf(w, "  %d Hz, %d channels, %d-bit, %.3fs\n", r.sampleRate, r.channels, r.bitDepth, duration)

	fmt.Fprintf(w, "\nLevel:\n")
	fmt.Fprintf(w, "  RMS:  %.4f (%.1f dBFS)\n", r.level.RMS, r.level.RMSDBFS())
	fmt.Fprintf(w, "  Peak: %.4f (%.1f dBFS)\n", r.level.Peak, r.level.PeakDBFS())
	fmt.Fprintf(w, "  DC:   %+.6f\n", r.level.Mean)

	fmt.Fprintf(w, "\nOnsets: %d", len(r.onsets))
	if duration > 0 {
		fmt.Fprintf(w, " (%.2f per second)", float64(len(r.onsets))/duration)
	}
	fmt.Fprintln(w)
	shown := r.onsets
	if maxOnsets > 0 && len(shown) > maxOnsets {
		shown = shown[:maxOnsets]
	}
	for i, t := range shown {
		if i%onsetsPerLine == 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, " %7.3f", t)
		if i%onsetsPerLine == onsetsPerLine-1 || i == len(shown)-1 {
			fmt.Fprintln(w)
		}
	}
	if len(shown) < len(r.onsets) {
		fmt.Fprintf(w, "  ... %d more\n", len(r.onsets)-len(shown))
	}

	voiced := 0
	for _, f := range r.pitch {
		if f.Voiced() {
			voiced++
		}
	}
	fmt.Fprintf(w, "\nPitch: %d frames, %d voiced\n", len(r.pitch), voiced)
	if median := analysis.MedianPitch(r.pitch); median > 0 {
		fmt.Fprintf(w, "  Median: %.2f Hz\n", median)
	}
	if showPitch {
		for _, f := range r.pitch {
			if f.Voiced() {
				fmt.Fprintf(w, "  %8.3fs  %8.2f Hz  %.2f\n", f.Time, f.Freq, f.Confidence)
			} else {
				fmt.Fprintf(w, "  %8.3fs  -\n", f.Time)
			}
		}
	}
}
