package timestretch

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is the speech recognition common sample rate.
	RateSpeech = 22050
)

// Common speed ratios.
const (
	SpeedHalf   = 0.5
	SpeedNormal = 1.0
	SpeedDouble = 2.0
)

// NewSimple creates a sequential float32 stretcher.
func NewSimple(sampleRate, speedRatio float64) (*Stretcher, error) {
	return New(&Config{
		SampleRate: sampleRate,
		SpeedRatio: speedRatio,
	})
}

// NewHalfSpeed creates a stretcher that plays audio at half speed (twice
// the duration).
func NewHalfSpeed(sampleRate float64) (*Stretcher, error) {
	return NewSimple(sampleRate, SpeedHalf)
}

// NewDoubleSpeed creates a stretcher that plays audio at double speed
// (half the duration).
func NewDoubleSpeed(sampleRate float64) (*Stretcher, error) {
	return NewSimple(sampleRate, SpeedDouble)
}

// NewParallel creates a float32 stretcher with channel and search
// parallelism enabled.
func NewParallel(sampleRate, speedRatio float64) (*Stretcher, error) {
	return New(&Config{
		SampleRate:     sampleRate,
		SpeedRatio:     speedRatio,
		EnableParallel: true,
	})
}

// TimeStretch is a convenience function for one-shot mono processing.
// Inputs shorter than 30 ms of audio are returned unchanged (as a copy).
func TimeStretch(input []float32, sampleRate, speedRatio float64) ([]float32, error) {
	s, err := NewSimple(sampleRate, speedRatio)
	if err != nil {
		return nil, err
	}
	return s.Process(input), nil
}

// TimeStretchFloat64 is the float64 equivalent of TimeStretch.
func TimeStretchFloat64(input []float64, sampleRate, speedRatio float64) ([]float64, error) {
	s, err := NewFloat64(&Config{
		SampleRate: sampleRate,
		SpeedRatio: speedRatio,
	})
	if err != nil {
		return nil, err
	}
	return s.Process(input), nil
}

// TimeStretchStereo stretches a left/right pair with one shared stretcher.
// Channels are processed concurrently.
func TimeStretchStereo(left, right []float32, sampleRate, speedRatio float64) (leftOut, rightOut []float32, err error) {
	s, err := NewParallel(sampleRate, speedRatio)
	if err != nil {
		return nil, nil, err
	}
	out := s.ProcessMulti([][]float32{left, right})
	return out[0], out[1], nil
}
