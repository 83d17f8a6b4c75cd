package engine

// Frame geometry, expressed as durations relative to the sample rate.
const (
	// windowSeconds is the analysis/synthesis window length (20 ms).
	windowSeconds = 0.02

	// searchSeconds is the similarity search range (10 ms).
	searchSeconds = 0.01

	// hopDivisor gives 50% overlap between consecutive output frames.
	hopDivisor = 2
)

// Parameter limits below which the derived geometry is meaningless.
const (
	// minWindowSize keeps the Hann denominator (size-1) non-zero.
	minWindowSize = 2

	// minHopIn keeps the input cursor moving forward between frames.
	minHopIn = 1
)

// Parallel similarity search tuning.
const (
	// minParallelSearchWork is the offsets*templateLen product below which
	// goroutine startup costs more than the scan itself.
	minParallelSearchWork = 1 << 16

	// minOffsetsPerWorker bounds how finely the offset range is split.
	minOffsetsPerWorker = 32
)

// bytesPerSample32 and bytesPerSample64 size memory estimates.
const (
	bytesPerSample32 = 4
	bytesPerSample64 = 8
)
