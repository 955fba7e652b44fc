package fingerprint

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrogram is a log-power time-frequency grid indexed as
// [frequencyBin][timeFrame]. Rows are frequency bins (windowSize/2 of them),
// columns are time frames. Every cell is finite.
type Spectrogram [][]float64

// NumBins returns the number of frequency bins (rows).
func (s Spectrogram) NumBins() int { return len(s) }

// NumFrames returns the number of time frames (columns).
func (s Spectrogram) NumFrames() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Hann returns a raised-cosine taper of length n.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Build computes a log-power spectrogram from mono samples. Each frame of
// windowSize samples is tapered with a Hann window, transformed with a real
// FFT, reduced to the positive-frequency half and converted to dB via
// 10*log10(|X|^2). Zero magnitudes are replaced by the smallest non-zero
// magnitude of the frame before the logarithm; a fully silent frame stays
// all-zero. Input shorter than one window yields a zero-frame spectrogram,
// not an error.
func Build(samples []float64, sampleRate, windowSize int, overlapRatio float64) (Spectrogram, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if overlapRatio < 0 || overlapRatio >= 1 {
		return nil, fmt.Errorf("overlap ratio must be in [0, 1), got %g", overlapRatio)
	}
	hop := int(float64(windowSize) * (1 - overlapRatio))
	if hop < 1 {
		return nil, fmt.Errorf("window size %d with overlap %g leaves an empty hop", windowSize, overlapRatio)
	}

	numBins := windowSize / 2
	numFrames := 0
	if len(samples) >= windowSize {
		numFrames = (len(samples)-windowSize)/hop + 1
	}

	spec := make(Spectrogram, numBins)
	for b := range spec {
		spec[b] = make([]float64, numFrames)
	}
	if numFrames == 0 {
		return spec, nil
	}

	window := Hann(windowSize)
	frame := make([]float64, windowSize)
	mag := make([]float64, numBins)

	for t := 0; t < numFrames; t++ {
		start := t * hop
		copy(frame, samples[start:start+windowSize])
		for i := range frame {
			frame[i] *= window[i]
		}

		spectrum := fft.FFTReal(frame)

		minNonzero := math.Inf(1)
		for k := 0; k < numBins; k++ {
			m := cmplx.Abs(spectrum[k])
			mag[k] = m
			if m > 0 && m < minNonzero {
				minNonzero = m
			}
		}

		for k, m := range mag {
			if m == 0 && !math.IsInf(minNonzero, 1) {
				m = minNonzero
			}
			// 10*log10(m^2) without squaring first, so tiny magnitudes
			// don't underflow to zero.
			db := 20 * math.Log10(m)
			if math.IsInf(db, -1) {
				db = 0
			}
			spec[k][t] = db
		}
	}

	return spec, nil
}
