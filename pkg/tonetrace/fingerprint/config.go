package fingerprint

import "fmt"

// Stock analysis parameters.
const (
	DefaultWindowSize         = 1024
	DefaultOverlapRatio       = 0.5
	DefaultNeighborhoodRadius = 20
	DefaultAmplitudeFloor     = -60.0
	DefaultFanValue           = 15
	DefaultMinDeltaTime       = 0
	DefaultMaxDeltaTime       = 200
	DefaultHashLength         = 20
)

// Config bundles the parameters of one fingerprinting pipeline run.
type Config struct {
	WindowSize         int
	OverlapRatio       float64
	NeighborhoodRadius int
	AmplitudeFloor     float64 // dB; peaks at or below this are discarded
	Hash               HashOptions
}

// DefaultConfig returns the stock pipeline parameters.
func DefaultConfig() Config {
	return Config{
		WindowSize:         DefaultWindowSize,
		OverlapRatio:       DefaultOverlapRatio,
		NeighborhoodRadius: DefaultNeighborhoodRadius,
		AmplitudeFloor:     DefaultAmplitudeFloor,
		Hash:               DefaultHashOptions(),
	}
}

// Validate fails fast on malformed parameters. Edge-case inputs (short or
// silent buffers) are never configuration errors.
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d", c.WindowSize)
	}
	if c.OverlapRatio < 0 || c.OverlapRatio >= 1 {
		return fmt.Errorf("overlap ratio must be in [0, 1), got %g", c.OverlapRatio)
	}
	if int(float64(c.WindowSize)*(1-c.OverlapRatio)) < 1 {
		return fmt.Errorf("window size %d with overlap %g leaves an empty hop", c.WindowSize, c.OverlapRatio)
	}
	if c.NeighborhoodRadius < 0 {
		return fmt.Errorf("neighborhood radius must not be negative, got %d", c.NeighborhoodRadius)
	}
	return c.Hash.Validate()
}

// FingerprintSamples runs the full pipeline on one mono buffer:
// spectrogram, peak extraction, constellation hashing. A buffer shorter than
// one window yields an empty fingerprint, not an error.
func FingerprintSamples(samples []float64, sampleRate int, cfg Config) (Fingerprint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spec, err := Build(samples, sampleRate, cfg.WindowSize, cfg.OverlapRatio)
	if err != nil {
		return nil, err
	}
	peaks := ExtractPeaks(spec, cfg.NeighborhoodRadius, cfg.AmplitudeFloor)
	return GenerateHashes(peaks, cfg.Hash)
}
