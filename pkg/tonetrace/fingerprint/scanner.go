package fingerprint

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// BlockMatch reports a candidate recording whose block scores cleared the
// per-candidate dynamic threshold.
type BlockMatch struct {
	RecordingID    string
	Score          int // best per-block score
	MatchingBlocks int // blocks at or above the dynamic threshold
}

// ScanForMatches slides a fixed-duration block with 50% step across every
// candidate, fingerprints each block and scores it against the query
// fingerprint. Per candidate, the 90th percentile of the block scores acts
// as a dynamic threshold; the candidate is reported only when at least
// minMatchingBlocks blocks reach that threshold and the best block scored
// above zero. Candidates shorter than one block are skipped.
//
// Candidates are processed concurrently; the query fingerprint is built once
// and shared read-only. Results are ranked by score descending, recording id
// ascending on ties.
func ScanForMatches(query []float64, sampleRate int, candidates map[string][]float64, blockDuration float64, minMatchingBlocks int, cfg Config) ([]BlockMatch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if blockDuration <= 0 {
		return nil, fmt.Errorf("block duration must be positive, got %g", blockDuration)
	}
	if minMatchingBlocks < 1 {
		return nil, fmt.Errorf("min matching blocks must be at least 1, got %d", minMatchingBlocks)
	}

	queryFP, err := FingerprintSamples(query, sampleRate, cfg)
	if err != nil {
		return nil, err
	}

	blockLen := int(blockDuration * float64(sampleRate))
	if blockLen < 1 {
		return nil, fmt.Errorf("block duration %gs is below one sample at %d Hz", blockDuration, sampleRate)
	}
	step := blockLen / 2
	if step < 1 {
		step = 1
	}

	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		mu       sync.Mutex
		results  []BlockMatch
		firstErr error
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, runtime.NumCPU())

	for _, id := range ids {
		cand := candidates[id]
		if len(cand) < blockLen {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(id string, cand []float64) {
			defer wg.Done()
			defer func() { <-sem }()

			scores := make([]float64, 0, (len(cand)-blockLen)/step+1)
			best := 0
			for start := 0; start+blockLen <= len(cand); start += step {
				fp, err := FingerprintSamples(cand[start:start+blockLen], sampleRate, cfg)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				s := Score(queryFP, fp)
				scores = append(scores, float64(s))
				if s > best {
					best = s
				}
			}

			sort.Float64s(scores)
			threshold := stat.Quantile(0.9, stat.Empirical, scores, nil)
			matching := 0
			for _, s := range scores {
				if s >= threshold {
					matching++
				}
			}

			if matching >= minMatchingBlocks && best > 0 {
				mu.Lock()
				results = append(results, BlockMatch{RecordingID: id, Score: best, MatchingBlocks: matching})
				mu.Unlock()
			}
		}(id, cand)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].RecordingID < results[j].RecordingID
	})
	return results, nil
}
