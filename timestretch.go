package timestretch

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/tphakala/go-audio-timestretch/internal/engine"
	"github.com/tphakala/simd/cpu"
)

// Config holds time-stretch configuration.
type Config struct {
	// SampleRate is the sample rate of the input audio in Hz.
	SampleRate float64

	// SpeedRatio is the playback speed factor. 1.5 plays 50% faster
	// (shorter output), 0.5 plays at half speed.
	SpeedRatio float64

	// EnableParallel enables concurrent processing: channels passed to
	// ProcessMulti run on separate goroutines, and when SearchWorkers is 0
	// the similarity search is split across GOMAXPROCS workers.
	// Output is identical with or without it.
	EnableParallel bool

	// SearchWorkers sets the number of goroutines per similarity search.
	// 0 selects the default (GOMAXPROCS with EnableParallel, otherwise 1).
	SearchWorkers int
}

// Params is the frame geometry derived from a Config.
type Params = engine.Params

// Stats describes one completed pass.
type Stats = engine.Stats

// State identifies the phase a pass finished in.
type State = engine.State

// States reported in [Stats.FinalState].
const (
	StateBypass = engine.StateBypass
	StateDone   = engine.StateDone
)

// Common errors returned by the stretcher.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid time-stretch configuration")

	// ErrDegenerateParams indicates that the sample rate and speed ratio are
	// valid numbers but yield frame sizes too small to stretch with.
	ErrDegenerateParams = engine.ErrDegenerateParams
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if !isFinitePositive(c.SampleRate) {
		return fmt.Errorf("%w: sample rate must be positive and finite: %v", ErrInvalidConfig, c.SampleRate)
	}

	if !isFinitePositive(c.SpeedRatio) {
		return fmt.Errorf("%w: speed ratio must be positive and finite: %v", ErrInvalidConfig, c.SpeedRatio)
	}

	if c.SearchWorkers < 0 || c.SearchWorkers > maxSearchWorkers {
		return fmt.Errorf("%w: search workers must be 0-%d", ErrInvalidConfig, maxSearchWorkers)
	}

	return engine.DeriveParams(c.SampleRate, c.SpeedRatio).Validate()
}

// searchWorkers resolves the effective per-search worker count.
func (c *Config) searchWorkers() int {
	switch {
	case c.SearchWorkers > 0:
		return c.SearchWorkers
	case c.EnableParallel:
		return runtime.GOMAXPROCS(0)
	default:
		return sequentialSearch
	}
}

// Stretcher time-stretches float32 mono audio.
type Stretcher struct {
	config Config
	engine *engine.Stretcher[float32]
}

// New creates a new float32 stretcher with the specified configuration.
func New(config *Config) (*Stretcher, error) {
	eng, err := newEngine[float32](config)
	if err != nil {
		return nil, err
	}
	return &Stretcher{config: *config, engine: eng}, nil
}

func newEngine[F float32 | float64](config *Config) (*engine.Stretcher[F], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	eng, err := engine.NewStretcher[F](config.SampleRate, config.SpeedRatio, config.searchWorkers())
	if errors.Is(err, engine.ErrInvalidParams) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return eng, err
}

// Process stretches a mono buffer and returns a newly allocated result.
// The input is not modified.
func (s *Stretcher) Process(input []float32) []float32 {
	out, _ := s.engine.Process(input)
	return out
}

// ProcessWithStats is like Process but also reports what the pass did.
func (s *Stretcher) ProcessWithStats(input []float32) ([]float32, Stats) {
	return s.engine.Process(input)
}

// ProcessMulti stretches each channel independently. With EnableParallel
// the channels are processed concurrently. Channels may come back with
// different lengths, since each follows its own search path.
func (s *Stretcher) ProcessMulti(input [][]float32) [][]float32 {
	out, _ := processMulti(s.engine, input, s.config.EnableParallel)
	return out
}

// ProcessMultiWithStats is like ProcessMulti but also reports per-channel
// statistics.
func (s *Stretcher) ProcessMultiWithStats(input [][]float32) ([][]float32, []Stats) {
	return processMulti(s.engine, input, s.config.EnableParallel)
}

// Params returns the derived frame geometry.
func (s *Stretcher) Params() Params {
	return s.engine.Params()
}

// SpeedRatio returns the configured speed ratio.
func (s *Stretcher) SpeedRatio() float64 {
	return s.config.SpeedRatio
}

// SampleRate returns the configured sample rate.
func (s *Stretcher) SampleRate() float64 {
	return s.config.SampleRate
}

// GetInfo returns information about the stretcher.
func (s *Stretcher) GetInfo() Info {
	return newInfo(s.engine, s.config.SampleRate)
}

// StretcherFloat64 time-stretches float64 mono audio. It follows the same
// rules as [Stretcher]; accumulation happens in float64.
type StretcherFloat64 struct {
	config Config
	engine *engine.Stretcher[float64]
}

// NewFloat64 creates a new float64 stretcher with the specified configuration.
func NewFloat64(config *Config) (*StretcherFloat64, error) {
	eng, err := newEngine[float64](config)
	if err != nil {
		return nil, err
	}
	return &StretcherFloat64{config: *config, engine: eng}, nil
}

// Process stretches a mono buffer and returns a newly allocated result.
func (s *StretcherFloat64) Process(input []float64) []float64 {
	out, _ := s.engine.Process(input)
	return out
}

// ProcessWithStats is like Process but also reports what the pass did.
func (s *StretcherFloat64) ProcessWithStats(input []float64) ([]float64, Stats) {
	return s.engine.Process(input)
}

// ProcessMulti stretches each channel independently.
func (s *StretcherFloat64) ProcessMulti(input [][]float64) [][]float64 {
	out, _ := processMulti(s.engine, input, s.config.EnableParallel)
	return out
}

// Params returns the derived frame geometry.
func (s *StretcherFloat64) Params() Params {
	return s.engine.Params()
}

// SpeedRatio returns the configured speed ratio.
func (s *StretcherFloat64) SpeedRatio() float64 {
	return s.config.SpeedRatio
}

// GetInfo returns information about the stretcher.
func (s *StretcherFloat64) GetInfo() Info {
	return newInfo(s.engine, s.config.SampleRate)
}

func processMulti[F float32 | float64](eng *engine.Stretcher[F], input [][]F, parallel bool) ([][]F, []Stats) {
	output := make([][]F, len(input))
	stats := make([]Stats, len(input))

	if !parallel || len(input) < 2 {
		for ch, samples := range input {
			output[ch], stats[ch] = eng.Process(samples)
		}
		return output, stats
	}

	var wg sync.WaitGroup
	for ch, samples := range input {
		wg.Add(1)
		go func() {
			defer wg.Done()
			output[ch], stats[ch] = eng.Process(samples)
		}()
	}
	wg.Wait()

	return output, stats
}

// Info returns information about the stretcher implementation.
type Info struct {
	// Algorithm describes the time-scale algorithm in use.
	Algorithm string

	// WindowSize is the frame length in samples.
	WindowSize int

	// SearchRange is the number of candidate offsets per frame.
	SearchRange int

	// HopOut is the output advance per frame.
	HopOut int

	// HopIn is the nominal input advance per frame.
	HopIn int

	// SearchWorkers is the number of goroutines per similarity search.
	SearchWorkers int

	// Latency is the processing latency in samples. WSOLA works on whole
	// buffers, so it is always 0.
	Latency int

	// MemoryUsage is the approximate memory usage in bytes for one second
	// of input.
	MemoryUsage int64

	// SIMDType describes the host SIMD instruction set available to the
	// vector helpers.
	SIMDType string
}

func newInfo[F float32 | float64](eng *engine.Stretcher[F], sampleRate float64) Info {
	p := eng.Params()
	oneSecond := int(sampleRate)
	return Info{
		Algorithm:     algorithmWSOLA,
		WindowSize:    p.WindowSize,
		SearchRange:   p.SearchRange,
		HopOut:        p.HopOut,
		HopIn:         p.HopIn,
		SearchWorkers: eng.SearchWorkers(),
		MemoryUsage:   eng.MemoryUsage(oneSecond),
		SIMDType:      cpu.Info(),
	}
}

// GetInfo returns information about a stretcher.
func GetInfo(s *Stretcher) Info {
	if s == nil {
		return Info{Algorithm: "unknown", SIMDType: "none"}
	}
	return s.GetInfo()
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
