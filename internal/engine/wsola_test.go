package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-timestretch/internal/testutil"
)

const testRate = 44100.0

func newTestStretcher(t *testing.T, speedRatio float64) *Stretcher[float32] {
	t.Helper()
	s, err := NewStretcher[float32](testRate, speedRatio, 1)
	require.NoError(t, err)
	return s
}

// assertLengthLaw checks the output length against the frame geometry.
func assertLengthLaw(t *testing.T, p Params, inputLen int, out []float32, stats Stats) {
	t.Helper()
	assert.LessOrEqual(t, len(out), p.EstimatedOutputLen(inputLen), "output exceeds pre-allocated estimate")
	assert.GreaterOrEqual(t, len(out), p.WindowSize)
	assert.Zero(t, (len(out)-p.WindowSize)%p.HopOut, "output length %d is not WindowSize + k*HopOut", len(out))
	assert.Equal(t, p.WindowSize+stats.Frames*p.HopOut, len(out))
	assert.Equal(t, len(out), stats.OutputLen)
}

func TestNewStretcher_InvalidParams(t *testing.T) {
	_, err := NewStretcher[float32](0, 1.5, 1)
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewStretcher[float32](testRate, -1, 1)
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewStretcher[float32](50, 1.0, 1)
	require.ErrorIs(t, err, ErrDegenerateParams)

	_, err = NewStretcher[float64](testRate, 0.001, 1)
	require.ErrorIs(t, err, ErrDegenerateParams)
}

func TestProcess_Bypass(t *testing.T) {
	s := newTestStretcher(t, 1.5)
	minLen := s.Params().MinInputLen()

	for _, n := range []int{0, 1, 100, minLen - 1} {
		input := testutil.Noise32(n, 1, uint64(n))
		out, stats := s.Process(input)

		testutil.AssertBitIdentical(t, input, out, "bypass length %d", n)
		assert.Equal(t, StateBypass, stats.FinalState)
		assert.Equal(t, n, stats.OutputLen)
		assert.Zero(t, stats.Frames)

		if n > 0 {
			out[0] = 42
			assert.NotEqual(t, float32(42), input[0], "bypass output must not alias the input")
		}
	}
}

func TestProcess_BypassNil(t *testing.T) {
	s := newTestStretcher(t, 2.0)
	out, stats := s.Process(nil)
	assert.Empty(t, out)
	assert.Equal(t, StateBypass, stats.FinalState)
}

func TestProcess_ShortestStretchedInput(t *testing.T) {
	s := newTestStretcher(t, 1.0)
	p := s.Params()

	input := testutil.Noise32(p.MinInputLen(), 0.5, 3)
	out, stats := s.Process(input)

	// Long enough to leave bypass, too short for a single search.
	assert.Equal(t, StateDone, stats.FinalState)
	assert.Zero(t, stats.Frames)
	require.Len(t, out, p.WindowSize)

	w := NewHannWindow[float32](p.WindowSize)
	for i := range out {
		assert.Equal(t, input[i]*w[i], out[i], "first frame sample %d", i)
	}
}

func TestProcess_LengthLaw(t *testing.T) {
	signals := map[string][]float32{
		"noise": testutil.Noise32(30000, 0.5, 1),
		"sine":  testutil.Sine32(30000, 440, testRate, 0.8),
	}
	ratios := []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0, 3.0}

	for name, input := range signals {
		for _, ratio := range ratios {
			s := newTestStretcher(t, ratio)
			out, stats := s.Process(input)

			assert.Equal(t, StateDone, stats.FinalState, "%s @ %v", name, ratio)
			assertLengthLaw(t, s.Params(), len(input), out, stats)
			testutil.AssertNoNaNOrInf(t, out)
		}
	}
}

func TestProcess_StatsConsistency(t *testing.T) {
	input := testutil.Noise32(25000, 0.5, 9)

	for _, ratio := range []float64{0.8, 1.0, 1.7} {
		s := newTestStretcher(t, ratio)
		p := s.Params()
		_, stats := s.Process(input)

		assert.Equal(t, stats.Frames*p.HopIn+stats.Drift, stats.InputConsumed,
			"input cursor is nominal hops plus search drift")
		assert.GreaterOrEqual(t, stats.InputConsumed+p.HopIn+p.WindowSize+p.SearchRange, len(input),
			"loop ends only when the next search would run past the input")
		assert.Equal(t, p.EstimatedOutputLen(len(input)), stats.EstimatedLen)
		assert.GreaterOrEqual(t, stats.Drift, 0)
		assert.LessOrEqual(t, stats.Drift, stats.Frames*(p.SearchRange-1))
	}
}

func TestProcess_SpeedMonotonicity(t *testing.T) {
	noise := testutil.Noise32(40000, 0.5, 11)

	prev := -1
	for _, ratio := range []float64{1.0, 1.5, 2.0, 3.0} {
		out, _ := newTestStretcher(t, ratio).Process(noise)
		if prev >= 0 {
			assert.Less(t, len(out), prev, "ratio %v should shorten the output", ratio)
		}
		prev = len(out)
	}

	sine := testutil.Sine32(40000, 440, testRate, 0.8)
	normal, _ := newTestStretcher(t, 1.0).Process(sine)
	double, _ := newTestStretcher(t, 2.0).Process(sine)
	assert.Less(t, len(double), len(normal))
}

func TestProcess_UnityRatioReproducesInput(t *testing.T) {
	s := newTestStretcher(t, 1.0)
	p := s.Params()
	require.Equal(t, p.HopOut, p.HopIn)

	input := testutil.Noise32(20000, 0.5, 5)
	out, stats := s.Process(input)

	assert.Zero(t, stats.Drift, "every search should land on the nominal position")
	assert.LessOrEqual(t, len(out), len(input))
	assert.GreaterOrEqual(t, len(out), len(input)-p.WindowSize-p.SearchRange-p.HopOut)

	// Past the first half-window every sample is the sum of two overlapping
	// Hann-weighted copies of the same input sample.
	testutil.AssertCloseRange(t, input, out, p.HopOut, len(out)-p.WindowSize, testutil.OverlapTolerance)
}

func TestProcess_SilencePreserved(t *testing.T) {
	for _, ratio := range []float64{0.5, 1.0, 1.5, 2.0} {
		s := newTestStretcher(t, ratio)
		input := make([]float32, 15000)
		out, stats := s.Process(input)

		testutil.AssertAllZero(t, out)
		assertLengthLaw(t, s.Params(), len(input), out, stats)
		assert.Zero(t, stats.Drift)
	}
}

func TestProcess_Deterministic(t *testing.T) {
	input := testutil.Noise32(30000, 0.5, 21)
	s := newTestStretcher(t, 1.5)

	first, _ := s.Process(input)
	second, _ := s.Process(input)
	testutil.AssertBitIdentical(t, first, second)

	fresh, _ := newTestStretcher(t, 1.5).Process(input)
	testutil.AssertBitIdentical(t, first, fresh)
}

func TestProcess_InputNotModified(t *testing.T) {
	input := testutil.Sine32(20000, 440, testRate, 0.8)
	orig := make([]float32, len(input))
	copy(orig, input)

	_, _ = newTestStretcher(t, 1.3).Process(input)
	testutil.AssertBitIdentical(t, orig, input)
}

func TestProcess_ParallelSearchBitIdentical(t *testing.T) {
	signals := map[string][]float32{
		"noise": testutil.Noise32(30000, 0.5, 31),
		"sine":  testutil.Sine32(30000, 440, testRate, 0.8),
	}

	for name, input := range signals {
		for _, ratio := range []float64{0.9, 1.5, 2.5} {
			seq, err := NewStretcher[float32](testRate, ratio, 1)
			require.NoError(t, err)
			par, err := NewStretcher[float32](testRate, ratio, 4)
			require.NoError(t, err)

			want, wantStats := seq.Process(input)
			got, gotStats := par.Process(input)

			testutil.AssertBitIdentical(t, want, got, "%s @ %v", name, ratio)
			assert.Equal(t, wantStats, gotStats)
		}
	}
}

func TestProcess_Scenario440HzAt1_5x(t *testing.T) {
	const (
		numSamples = 100000
		ratio      = 1.5
	)
	s := newTestStretcher(t, ratio)
	p := s.Params()

	assert.Equal(t, 882, p.WindowSize)
	assert.Equal(t, 441, p.SearchRange)
	assert.Equal(t, 441, p.HopOut)
	assert.Equal(t, 661, p.HopIn)

	input := testutil.Sine32(numSamples, 440, testRate, 0.8)
	out, stats := s.Process(input)

	assertLengthLaw(t, p, numSamples, out, stats)
	assert.Less(t, len(out), numSamples)
	assert.Greater(t, len(out), int(0.6*numSamples/ratio))
	testutil.AssertNoNaNOrInf(t, out)
}

func TestProcess_BufferGuard(t *testing.T) {
	// At 100 Hz the geometry is 2/1/1/1 and a 1.999x ratio floors HopIn to
	// 1, so frames would outrun the N/ratio estimate without the guard.
	s, err := NewStretcher[float32](100, 1.999, 1)
	require.NoError(t, err)
	p := s.Params()
	require.Equal(t, Params{SpeedRatio: 1.999, WindowSize: 2, SearchRange: 1, HopOut: 1, HopIn: 1}, p)

	input := testutil.Noise32(1000, 0.5, 2)
	out, stats := s.Process(input)

	assert.Equal(t, StateDone, stats.FinalState)
	assertLengthLaw(t, p, len(input), out, stats)
}

func TestProcess_Float64(t *testing.T) {
	s, err := NewStretcher[float64](testRate, 1.5, 1)
	require.NoError(t, err)
	p := s.Params()

	input := testutil.Sine64(30000, 440, testRate, 0.8)
	out, stats := s.Process(input)

	assert.Equal(t, StateDone, stats.FinalState)
	assert.LessOrEqual(t, len(out), p.EstimatedOutputLen(len(input)))
	assert.Zero(t, (len(out)-p.WindowSize)%p.HopOut)
}

func TestProcess_ConcurrentUse(t *testing.T) {
	s := newTestStretcher(t, 1.5)
	input := testutil.Noise32(20000, 0.5, 8)
	want, _ := s.Process(input)

	const goroutines = 8
	results := make([][]float32, goroutines)
	done := make(chan int)
	for g := range goroutines {
		go func() {
			results[g], _ = s.Process(input)
			done <- g
		}()
	}
	for range goroutines {
		<-done
	}

	for g := range goroutines {
		testutil.AssertBitIdentical(t, want, results[g], "goroutine %d", g)
	}
}

func TestStretcher_MemoryUsage(t *testing.T) {
	s := newTestStretcher(t, 1.5)
	p := s.Params()

	assert.Equal(t, int64(4*(p.WindowSize+p.EstimatedOutputLen(100000))), s.MemoryUsage(100000))
	assert.Equal(t, int64(4*(p.WindowSize+10)), s.MemoryUsage(10))

	s64, err := NewStretcher[float64](testRate, 1.5, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8*(p.WindowSize+10)), s64.MemoryUsage(10))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "bypass", StateBypass.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "matching", StateMatching.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "State(9)", State(9).String())
}
