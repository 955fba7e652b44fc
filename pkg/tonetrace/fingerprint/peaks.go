package fingerprint

// Peak is a local maximum of the spectrogram, identified by its frequency bin
// and time frame. The canonical order is always (frequency, time); Amp keeps
// the log-power value at the peak for threshold tuning.
type Peak struct {
	FreqBin   int
	TimeFrame int
	Amp       float64
}

// ExtractPeaks finds the non-silent local maxima of a spectrogram.
//
// The neighborhood is a diamond: a 4-connected cross grown radius steps. A
// cell is a candidate when it equals the maximum over its neighborhood
// (dilation-equality). Exact-zero cells form the silence background; the
// background mask is eroded with the same neighborhood, treating cells
// outside the grid as background, so the fringes of silent regions cannot
// surface as peaks. Candidates inside the eroded background or at or below
// the amplitude floor (in dB) are discarded.
//
// Peaks are emitted in (frequency bin, time frame) scan order; callers that
// need chronological order sort by time frame.
func ExtractPeaks(spec Spectrogram, radius int, floor float64) []Peak {
	bins, frames := spec.NumBins(), spec.NumFrames()
	if bins == 0 || frames == 0 {
		return nil
	}
	if radius < 0 {
		radius = 0
	}

	dilated := dilate(spec, radius)
	erodedBg := erodeBackground(spec, radius)

	var peaks []Peak
	for b := 0; b < bins; b++ {
		for t := 0; t < frames; t++ {
			v := spec[b][t]
			if v != dilated[b][t] {
				continue
			}
			if erodedBg[b][t] {
				continue
			}
			if v <= floor {
				continue
			}
			peaks = append(peaks, Peak{FreqBin: b, TimeFrame: t, Amp: v})
		}
	}
	return peaks
}

// dilate applies a grayscale maximum filter with a diamond of the given
// radius, realized as radius passes of the 4-connected cross. Cells outside
// the grid are ignored.
func dilate(grid Spectrogram, radius int) [][]float64 {
	cur := make([][]float64, len(grid))
	next := make([][]float64, len(grid))
	for i := range grid {
		cur[i] = append([]float64(nil), grid[i]...)
		next[i] = make([]float64, len(grid[i]))
	}

	for r := 0; r < radius; r++ {
		for i := range cur {
			for j := range cur[i] {
				m := cur[i][j]
				if i > 0 && cur[i-1][j] > m {
					m = cur[i-1][j]
				}
				if i+1 < len(cur) && cur[i+1][j] > m {
					m = cur[i+1][j]
				}
				if j > 0 && cur[i][j-1] > m {
					m = cur[i][j-1]
				}
				if j+1 < len(cur[i]) && cur[i][j+1] > m {
					m = cur[i][j+1]
				}
				next[i][j] = m
			}
		}
		cur, next = next, cur
	}
	return cur
}

// erodeBackground builds the silence mask (exact-zero cells) and erodes it
// with the same diamond, counting out-of-grid cells as background so border
// silence stays masked.
func erodeBackground(grid Spectrogram, radius int) [][]bool {
	cur := make([][]bool, len(grid))
	next := make([][]bool, len(grid))
	for i := range grid {
		cur[i] = make([]bool, len(grid[i]))
		next[i] = make([]bool, len(grid[i]))
		for j := range grid[i] {
			cur[i][j] = grid[i][j] == 0
		}
	}

	for r := 0; r < radius; r++ {
		for i := range cur {
			for j := range cur[i] {
				next[i][j] = cur[i][j] &&
					(i == 0 || cur[i-1][j]) &&
					(i+1 == len(cur) || cur[i+1][j]) &&
					(j == 0 || cur[i][j-1]) &&
					(j+1 == len(cur[i]) || cur[i][j+1])
			}
		}
		cur, next = next, cur
	}
	return cur
}
