// Command stretch-wav changes the speed of WAV audio files without changing
// their pitch.
//
// Usage:
//
//	stretch-wav -speed 1.5 input.wav output.wav
//	stretch-wav -speed 0.75 -parallel-search input.wav output.wav
//	stretch-wav -speed 1.25 -outdir out/ a.wav b.wav c.wav   # batch mode
//	stretch-wav -speed 2 -parallel=false input.wav out.wav   # one channel at a time
//
// Each channel is stretched independently. Channels run concurrently unless
// -parallel=false is given; the output is the same either way.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"
)

const (
	// CLI defaults
	defaultSpeed    = 1.5
	minRequiredArgs = 2
	minBatchArgs    = 1
	outputSuffixFmt = "%s_%gx%s"
)

// options collects the command-line settings that affect processing.
type options struct {
	speed          float64
	parallel       bool
	parallelSearch bool
	verbose        bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	speed := flag.Float64("speed", defaultSpeed, "Playback speed factor (>1 faster and shorter, <1 slower and longer)")
	parallel := flag.Bool("parallel", true, "Stretch channels concurrently")
	parallelSearch := flag.Bool("parallel-search", false, "Split each similarity search across all CPUs")
	outDir := flag.String("outdir", "", "Batch mode: write every input to this directory")
	jobs := flag.Int("jobs", 0, "Batch mode: files processed at once (0 = number of CPUs)")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	// Validate arguments before setting up profiling
	args := flag.Args()
	if (*outDir == "" && len(args) < minRequiredArgs) || len(args) < minBatchArgs {
		printUsage()
		return errors.New("insufficient arguments")
	}

	// Start CPU profiling if requested (for PGO)
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	opts := options{
		speed:          *speed,
		parallel:       *parallel,
		parallelSearch: *parallelSearch,
		verbose:        *verbose,
	}

	if *verbose {
		log.Printf("Speed: %gx", opts.speed)
		if opts.parallel {
			log.Printf("Parallel: enabled (concurrent channel processing)")
		} else {
			log.Printf("Parallel: disabled (sequential processing)")
		}
		if opts.parallelSearch {
			log.Printf("Search workers: %d", runtime.GOMAXPROCS(0))
		}
	}

	if *outDir != "" {
		return runBatch(args, *outDir, *jobs, opts)
	}

	inputPath, outputPath := args[0], args[1]
	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
	}

	start := time.Now()
	stats, err := stretchFile(inputPath, outputPath, opts)
	if err != nil {
		return err
	}
	printSummary(inputPath, outputPath, stats, time.Since(start))

	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s [options] -outdir DIR input.wav...\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s -speed 1.5 lecture.wav fast.wav    # 50%% faster\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s -speed 0.5 solo.wav practice.wav   # half speed for practice\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s -speed 1.25 -outdir out/ *.wav     # batch\n", os.Args[0])
}

func printSummary(inputPath, outputPath string, stats *stretchStats, elapsed time.Duration) {
	fmt.Printf("Stretched %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %gx at %d Hz (%d channels, %d-bit)\n",
		stats.speed, stats.sampleRate, stats.channels, stats.bitDepth)
	fmt.Printf("  %d samples -> %d samples\n", stats.inputSamples, stats.outputSamples)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputSamples)/float64(stats.sampleRate)/elapsed.Seconds())
	fmt.Printf("  Checksum: %016x\n", stats.checksum)
}
