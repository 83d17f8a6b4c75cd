// Package wavio reads and writes integer PCM WAV files as planar float32
// channels normalized to [-1, 1].
package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/OneOfOne/xxhash"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-timestretch/internal/simdops"
)

const (
	// Channel count constants for fast paths
	monoChannels   = 1
	stereoChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Full-scale values per bit depth
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// WAV encoder audio format tag for integer PCM
	formatPCM = 1

	// Bytes hashed per sample by Checksum
	checksumSampleBytes = 4
)

// ErrUnsupportedFormat indicates a WAV file this package cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported WAV format")

// Audio is a fully decoded WAV file.
type Audio struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float32
}

// Frames returns the number of samples per channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Read decodes an entire 16, 24 or 32-bit PCM WAV file.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if format.NumChannels < monoChannels {
		return nil, fmt.Errorf("%w: %d channels in %s", ErrUnsupportedFormat, format.NumChannels, path)
	}
	if !SupportedBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d-bit samples in %s (want 16, 24 or 32)", ErrUnsupportedFormat, bitDepth, path)
	}

	return &Audio{
		SampleRate: format.SampleRate,
		BitDepth:   bitDepth,
		Channels:   Deinterleave(buf.Data, format.NumChannels, bitDepth),
	}, nil
}

// Write pads the channels to equal length, converts them to integers at
// a.BitDepth and writes a PCM WAV file. It returns the interleaved samples
// that were written.
func Write(path string, a *Audio) ([]int, error) {
	channels := PadChannels(a.Channels)
	samples := Interleave(channels, a.BitDepth)
	if err := WritePCM(path, samples, a.SampleRate, a.BitDepth, len(channels)); err != nil {
		return nil, err
	}
	return samples, nil
}

// WritePCM encodes interleaved integer samples as a PCM WAV file. Close
// errors are returned since the encoder finalizes the header on Close.
func WritePCM(path string, samples []int, sampleRate, bitDepth, channels int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	encoder := wav.NewEncoder(f, sampleRate, bitDepth, channels, formatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

// SupportedBitDepth reports whether bitDepth can be read and written.
func SupportedBitDepth(bitDepth int) bool {
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
		return true
	default:
		return false
	}
}

// MaxValue returns the full-scale sample value for the given bit depth.
func MaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// Deinterleave splits interleaved integer samples into normalized
// per-channel float slices. A trailing partial frame is dropped.
func Deinterleave(data []int, numChannels, bitDepth int) [][]float32 {
	frames := len(data) / numChannels
	out := make([][]float32, numChannels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}

	switch numChannels {
	case monoChannels:
		buf := out[0]
		for i := range frames {
			buf[i] = float32(data[i])
		}
	case stereoChannels:
		buf0, buf1 := out[0], out[1]
		for i := range frames {
			idx := i * stereoChannels
			buf0[i] = float32(data[idx])
			buf1[i] = float32(data[idx+1])
		}
	default:
		for i := range frames {
			base := i * numChannels
			for ch := range numChannels {
				out[ch][i] = float32(data[base+ch])
			}
		}
	}

	ops := simdops.Float32Ops()
	scale := float32(1 / MaxValue(bitDepth))
	for _, buf := range out {
		ops.Scale(buf, buf, scale)
	}
	return out
}

// PadChannels extends shorter channels with silence to the longest length.
// Channels already at that length are shared, not copied.
func PadChannels(channels [][]float32) [][]float32 {
	longest := 0
	for _, c := range channels {
		longest = max(longest, len(c))
	}

	padded := make([][]float32, len(channels))
	for ch, c := range channels {
		if len(c) == longest {
			padded[ch] = c
			continue
		}
		p := make([]float32, longest)
		copy(p, c)
		padded[ch] = p
	}
	return padded
}

// Interleave converts equal-length float channels to interleaved integer
// samples, clamping to full scale and rounding to nearest.
func Interleave(channels [][]float32, bitDepth int) []int {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil
	}

	numChannels := len(channels)
	frames := len(channels[0])
	mixed := make([]float32, frames*numChannels)

	switch numChannels {
	case monoChannels:
		copy(mixed, channels[0])
	case stereoChannels:
		simdops.Float32Ops().Interleave2(mixed, channels[0], channels[1])
	default:
		for i := range frames {
			base := i * numChannels
			for ch := range numChannels {
				mixed[base+ch] = channels[ch][i]
			}
		}
	}

	maxVal := MaxValue(bitDepth)
	out := make([]int, len(mixed))
	for i, v := range mixed {
		sample := float64(v)
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		out[i] = int(math.Round(sample * maxVal))
	}
	return out
}

// Downmix averages all channels into one. Channels must be equal length.
func Downmix(channels [][]float32) []float32 {
	switch len(channels) {
	case 0:
		return nil
	case monoChannels:
		return channels[0]
	}

	ops := simdops.Float32Ops()
	out := make([]float32, len(channels[0]))
	for _, c := range channels {
		for i, v := range c {
			out[i] += v
		}
	}
	ops.Scale(out, out, 1/float32(len(channels)))
	return out
}

// Checksum hashes interleaved samples as little-endian 32-bit words.
func Checksum(samples []int) uint64 {
	buf := make([]byte, 0, len(samples)*checksumSampleBytes)
	for _, s := range samples {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(s)))
	}
	return xxhash.Checksum64(buf)
}
