package fingerprint

import (
	"math"
	"math/rand"
)

// sineMix synthesizes n samples of summed sine tones, scaled into [-1, 1].
func sineMix(freqs []float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	amp := 0.9 / float64(len(freqs))
	for _, f := range freqs {
		w := 2 * math.Pi * f / float64(sampleRate)
		for i := range out {
			out[i] += amp * math.Sin(w*float64(i))
		}
	}
	return out
}

// pseudoNoise returns n reproducible uniform samples in [-0.5, 0.5].
func pseudoNoise(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64() - 0.5
	}
	return out
}
