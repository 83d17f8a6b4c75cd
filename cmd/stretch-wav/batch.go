package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

const (
	progressBarWidth = 64
	etaSmoothing     = 60
)

// batchResult is the outcome of one file in batch mode.
type batchResult struct {
	input  string
	output string
	stats  *stretchStats
	err    error
}

// batchOutputPath names the output for input inside outDir, tagging it with
// the speed, e.g. "take1.wav" at 1.5 becomes "take1_1.5x.wav".
func batchOutputPath(input, outDir string, speed float64) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".wav"
	}
	return filepath.Join(outDir, fmt.Sprintf(outputSuffixFmt, stem, speed, ext))
}

// runBatch stretches every input into outDir using a pool of workers and
// reports progress on a bar. Every file is attempted; the first error is
// returned after all have finished.
func runBatch(inputs []string, outDir string, workers int, opts options) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(inputs))

	p := mpb.New(mpb.WithWidth(progressBarWidth))
	bar := p.AddBar(int64(len(inputs)),
		mpb.PrependDecorators(
			decor.Name("Stretching: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.EwmaETA(decor.ET_STYLE_GO, etaSmoothing),
		),
	)

	results := processBatch(inputs, outDir, workers, opts, bar.EwmaIncrement)
	p.Wait()

	var firstErr error
	for _, r := range results {
		if r.err != nil {
			log.Printf("%s: %v", r.input, r.err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", r.input, r.err)
			}
			continue
		}
		fmt.Printf("%s -> %s  %d -> %d samples  %016x\n",
			filepath.Base(r.input), r.output, r.stats.inputSamples, r.stats.outputSamples, r.stats.checksum)
	}
	return firstErr
}

// processBatch fans inputs out to workers and returns results in input
// order. done is called once per finished file with its duration.
func processBatch(inputs []string, outDir string, workers int, opts options, done func(elapsed time.Duration)) []batchResult {
	results := make([]batchResult, len(inputs))
	jobs := make(chan int, len(inputs))
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				start := time.Now()
				out := batchOutputPath(inputs[i], outDir, opts.speed)
				stats, err := stretchFile(inputs[i], out, opts)
				results[i] = batchResult{input: inputs[i], output: out, stats: stats, err: err}
				done(time.Since(start))
			}
		}()
	}
	wg.Wait()

	return results
}
