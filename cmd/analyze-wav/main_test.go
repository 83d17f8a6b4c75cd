package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-timestretch/internal/analysis"
	"github.com/tphakala/go-audio-timestretch/internal/wavio"
)

func sineAudio(sampleRate, frames int, freqs ...float64) *wavio.Audio {
	a := &wavio.Audio{SampleRate: sampleRate, BitDepth: 16}
	for _, f := range freqs {
		c := make([]float32, frames)
		for i := range c {
			c[i] = float32(0.5 * math.Sin(2*math.Pi*f*float64(i)/float64(sampleRate)))
		}
		a.Channels = append(a.Channels, c)
	}
	return a
}

func TestSelectSamples(t *testing.T) {
	in := sineAudio(8000, 16, 440, 880)

	got, err := selectSamples(in, 1, false)
	require.NoError(t, err)
	assert.Equal(t, in.Channels[1], got)

	_, err = selectSamples(in, 2, false)
	require.Error(t, err)
	_, err = selectSamples(in, -1, false)
	require.Error(t, err)

	mixed, err := selectSamples(in, 5, true)
	require.NoError(t, err, "channel is ignored when downmixing")
	assert.Len(t, mixed, 16)
}

func TestAnalyzeAndReport(t *testing.T) {
	in := sineAudio(22050, 22050, 440)
	r := analyze(in.Channels[0], in)

	assert.Equal(t, 22050, r.frames)
	assert.InDelta(t, 0.5/math.Sqrt2, r.level.RMS, 1e-3)
	require.NotEmpty(t, r.pitch)

	var buf bytes.Buffer
	printReport(&buf, "tone.wav", r, 5, true)
	out := buf.String()

	assert.Contains(t, out, "=== tone.wav ===")
	assert.Contains(t, out, "22050 Hz, 1 channels, 16-bit")
	assert.Contains(t, out, "Median:")
	assert.InDelta(t, 440, analysis.MedianPitch(r.pitch), 2)
	assert.Contains(t, out, "Pitch:")
}
