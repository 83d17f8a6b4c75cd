package analysis

// Onset detection parameters.
const (
	onsetFrameSize = 2048
	onsetHopSize   = 512

	// fluxSmoothRadius is the half-width, in frames, of the moving average
	// applied to the raw flux curve.
	fluxSmoothRadius = 3

	// thresholdRadius is the half-width, in frames, of the local mean
	// subtracted from the smoothed curve.
	thresholdRadius = 16

	// minOnsetInterval is the shortest gap between reported onsets, in seconds.
	minOnsetInterval = 0.05
)

// Pitch tracking parameters.
const (
	pitchFrameSize = 2048
	pitchHopSize   = 512

	// yinThreshold is the absolute threshold on the cumulative mean
	// normalized difference.
	yinThreshold = 0.1

	// yinProbabilityThreshold rejects detections with 1-d'(tau) below it.
	yinProbabilityThreshold = 0.1

	// minYinLag is the first lag examined; lags 0 and 1 are degenerate.
	minYinLag = 2

	// maxInterpolationShift bounds the parabolic refinement, in samples.
	maxInterpolationShift = 1.0
)
