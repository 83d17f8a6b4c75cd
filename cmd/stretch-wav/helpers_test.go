package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-timestretch/internal/wavio"
)

const (
	testBitDepth = 16
	testStereo   = 2
)

// writeSineWAV writes a 16-bit WAV whose channels hold sines at 440 Hz
// times the channel number.
func writeSineWAV(t *testing.T, path string, sampleRate, frames, channels int) {
	t.Helper()
	planar := make([][]float32, channels)
	for ch := range planar {
		planar[ch] = make([]float32, frames)
		for i := range frames {
			planar[ch][i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(ch+1)*float64(i)/float64(sampleRate)))
		}
	}
	_, err := wavio.Write(path, &wavio.Audio{SampleRate: sampleRate, BitDepth: testBitDepth, Channels: planar})
	require.NoError(t, err)
}

func TestBatchOutputPath(t *testing.T) {
	tests := []struct {
		input string
		speed float64
		want  string
	}{
		{"take1.wav", 1.5, filepath.Join("out", "take1_1.5x.wav")},
		{"/music/solo.WAV", 0.75, filepath.Join("out", "solo_0.75x.WAV")},
		{"noext", 2, filepath.Join("out", "noext_2x.wav")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, batchOutputPath(tt.input, "out", tt.speed))
	}
}

func TestNewStretcher_Workers(t *testing.T) {
	s, err := newStretcher(44100, options{speed: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 1, s.GetInfo().SearchWorkers)

	_, err = newStretcher(44100, options{speed: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create stretcher")
}

func TestStretchFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.wav")
	writeSineWAV(t, input, 22050, 22050, testStereo)

	out1 := filepath.Join(dir, "out1.wav")
	stats, err := stretchFile(input, out1, options{speed: 1.5, parallel: true})
	require.NoError(t, err)

	assert.Equal(t, 22050, stats.sampleRate)
	assert.Equal(t, testStereo, stats.channels)
	assert.Equal(t, testBitDepth, stats.bitDepth)
	assert.Equal(t, 22050, stats.inputSamples)
	assert.Less(t, stats.outputSamples, stats.inputSamples)
	assert.LessOrEqual(t, stats.outputSamples, int(22050/1.5)+441)

	got, err := wavio.Read(out1)
	require.NoError(t, err)
	require.Len(t, got.Channels, testStereo)
	assert.Equal(t, stats.outputSamples, got.Frames())

	// Sequential channels and a parallel search must not change a sample.
	out2 := filepath.Join(dir, "out2.wav")
	stats2, err := stretchFile(input, out2, options{speed: 1.5, parallelSearch: true})
	require.NoError(t, err)
	assert.Equal(t, stats.checksum, stats2.checksum)
}

func TestStretchFile_Verbose(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.wav")
	writeSineWAV(t, input, 16000, 16000, 1)

	_, err := stretchFile(input, filepath.Join(dir, "out.wav"), options{speed: 0.8, verbose: true})
	require.NoError(t, err)
}

func TestStretchFile_InvalidSpeed(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.wav")
	writeSineWAV(t, input, 22050, 4410, 1)

	_, err := stretchFile(input, filepath.Join(dir, "out.wav"), options{speed: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create stretcher")
}

func TestProcessBatch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	inputs := []string{
		filepath.Join(dir, "a.wav"),
		filepath.Join(dir, "missing.wav"),
		filepath.Join(dir, "b.wav"),
	}
	writeSineWAV(t, inputs[0], 16000, 8000, 1)
	writeSineWAV(t, inputs[2], 16000, 16000, testStereo)

	calls := 0
	results := processBatch(inputs, outDir, 1, options{speed: 2}, func(time.Duration) { calls++ })

	require.Len(t, results, len(inputs))
	assert.Equal(t, len(inputs), calls)

	require.NoError(t, results[0].err)
	assert.Error(t, results[1].err)
	require.NoError(t, results[2].err)

	assert.Equal(t, filepath.Join(outDir, "a_2x.wav"), results[0].output)
	assert.FileExists(t, results[0].output)
	assert.FileExists(t, results[2].output)
	assert.Equal(t, testStereo, results[2].stats.channels)
}

func TestRunBatch_ReportsFirstError(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.wav")
	writeSineWAV(t, good, 16000, 8000, 1)

	err := runBatch([]string{good, filepath.Join(dir, "nope.wav")}, filepath.Join(dir, "out"), 2, options{speed: 1.25})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.wav")
	assert.FileExists(t, filepath.Join(dir, "out", "good_1.25x.wav"))
}
