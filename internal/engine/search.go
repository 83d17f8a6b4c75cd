package engine

import (
	"math"
	"sync"

	"github.com/tphakala/go-audio-timestretch/internal/simdops"
)

// searcher finds the offset within a search area whose waveform best
// matches a template, using the Absolute Magnitude Difference Function.
//
// With workers > 1 large scans are split into contiguous offset chunks and
// scanned concurrently. Chunk minima are reduced in offset order with the
// same strict comparison as the sequential scan, so both paths return the
// same offset.
type searcher[F simdops.Float] struct {
	workers int
	maxDiff F
}

func newSearcher[F simdops.Float](workers int) searcher[F] {
	return searcher[F]{
		workers: max(workers, 1),
		maxDiff: maxFinite[F](),
	}
}

// bestOffset returns the earliest offset in [0, len(area)-len(template))
// minimising the AMDF against template. An empty scan returns 0.
func (s searcher[F]) bestOffset(template, area []F) int {
	offsets := len(area) - len(template)

	workers := min(s.workers, offsets/minOffsetsPerWorker)
	if workers < 2 || offsets*len(template) < minParallelSearchWork {
		best, _ := scanOffsets(template, area, 0, offsets, s.maxDiff)
		return best
	}

	chunk := (offsets + workers - 1) / workers
	bests := make([]int, workers)
	mins := make([]F, workers)

	var wg sync.WaitGroup
	for w := range workers {
		lo := w * chunk
		hi := min(lo+chunk, offsets)
		wg.Add(1)
		go func() {
			defer wg.Done()
			bests[w], mins[w] = scanOffsets(template, area, lo, hi, s.maxDiff)
		}()
	}
	wg.Wait()

	best, minDiff := 0, s.maxDiff
	for w := range workers {
		if mins[w] < minDiff {
			minDiff = mins[w]
			best = bests[w]
		}
	}
	return best
}

// findBestMatch is the sequential AMDF search over the full area.
func findBestMatch[F simdops.Float](template, area []F) int {
	best, _ := scanOffsets(template, area, 0, len(area)-len(template), maxFinite[F]())
	return best
}

// scanOffsets scans offsets [lo, hi). The result only moves on a strictly
// smaller difference, so ties keep the earliest offset. If no offset beats
// ceiling the returned offset is lo.
func scanOffsets[F simdops.Float](template, area []F, lo, hi int, ceiling F) (best int, minDiff F) {
	best, minDiff = lo, ceiling
	n := len(template)
	for off := lo; off < hi; off++ {
		if d := amdf(template, area[off:off+n]); d < minDiff {
			minDiff = d
			best = off
		}
	}
	return best, minDiff
}

// amdf returns Σ|template[i] - candidate[i]|.
func amdf[F simdops.Float](template, candidate []F) F {
	candidate = candidate[:len(template)]

	var diff F
	for i, t := range template {
		d := t - candidate[i]
		if d < 0 {
			d = -d
		}
		diff += d
	}
	return diff
}

// maxFinite returns the largest finite value of F.
func maxFinite[F simdops.Float]() F {
	var zero F
	switch any(zero).(type) {
	case float32:
		m := float32(math.MaxFloat32)
		return F(m)
	default:
		m := math.MaxFloat64
		return F(m)
	}
}
