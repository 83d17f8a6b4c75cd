package engine

import "github.com/tphakala/go-audio-timestretch/internal/simdops"

// accumBuffer is the output signal of a single synthesis pass. It is
// allocated zero-filled at its worst-case size, written once for the first
// frame and accumulated into for every frame after that.
type accumBuffer[F simdops.Float] struct {
	data []F
}

func newAccumBuffer[F simdops.Float](size int) *accumBuffer[F] {
	return &accumBuffer[F]{data: make([]F, size)}
}

func (b *accumBuffer[F]) size() int {
	return len(b.data)
}

// set overwrites sample i. Only the first frame is placed this way.
func (b *accumBuffer[F]) set(i int, v F) {
	b.data[i] = v
}

// accumulate adds v to sample i. It reports false once i is past the end.
func (b *accumBuffer[F]) accumulate(i int, v F) bool {
	if i >= len(b.data) {
		return false
	}
	b.data[i] += v
	return true
}

// view returns samples [start, end) for reading. Callers must not retain
// it across writes.
func (b *accumBuffer[F]) view(start, end int) []F {
	return b.data[start:end:end]
}

// truncate ends the pass and hands the first n samples to the caller.
func (b *accumBuffer[F]) truncate(n int) []F {
	n = min(n, len(b.data))
	out := b.data[:n]
	b.data = nil
	return out
}
