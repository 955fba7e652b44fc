package fingerprint

import "sort"

// Posting locates one stored occurrence of a hash: the recording it belongs
// to and the anchor time it was seen at.
type Posting struct {
	RecordingID string
	RefTime     int
}

// Match is one candidate recording scored against a query.
type Match struct {
	RecordingID string
	Offset      int // reference anchor time minus query anchor time, in frames
	Score       int
}

// Score returns the size of the largest offset-aligned cluster of hash
// collisions between two fingerprints. Zero collisions score zero.
func Score(a, b Fingerprint) int {
	_, n := BestOffset(a, b)
	return n
}

// BestOffset finds the dominant time alignment between two fingerprints: for
// every pair of colliding hashes it records the offset t_b - t_a and returns
// the most frequent offset with its count. Ties resolve to the smallest
// offset. No collisions yield (0, 0).
func BestOffset(a, b Fingerprint) (offset, count int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0
	}

	index := make(map[string][]int, len(b))
	for _, hp := range b {
		index[hp.Hash] = append(index[hp.Hash], hp.AnchorTime)
	}

	hist := make(map[int]int)
	for _, hp := range a {
		for _, t := range index[hp.Hash] {
			off := t - hp.AnchorTime
			n := hist[off] + 1
			hist[off] = n
			if n > count || (n == count && off < offset) {
				offset, count = off, n
			}
		}
	}
	return offset, count
}

// FindBestMatch scores the query against every candidate and returns the
// single best one. Ties break deterministically toward the smallest
// candidate id. ok is false when no candidate scored above zero.
func FindBestMatch(query Fingerprint, candidates map[string]Fingerprint) (id string, score int, ok bool) {
	ids := make([]string, 0, len(candidates))
	for cid := range candidates {
		ids = append(ids, cid)
	}
	sort.Strings(ids)

	for _, cid := range ids {
		if s := Score(query, candidates[cid]); s > score {
			id, score = cid, s
		}
	}
	if score == 0 {
		return "", 0, false
	}
	return id, score, true
}

// ScoreAgainstIndex votes a query fingerprint against an inverted index of
// stored hashes, scoring every referenced recording in one pass. The result
// is sorted by score descending, recording id ascending on ties. Recordings
// with no colliding hashes are absent.
func ScoreAgainstIndex(query Fingerprint, index map[string][]Posting) []Match {
	// votes[recordingID][offset] = count
	votes := make(map[string]map[int]int)
	for _, hp := range query {
		for _, p := range index[hp.Hash] {
			off := p.RefTime - hp.AnchorTime
			m := votes[p.RecordingID]
			if m == nil {
				m = make(map[int]int)
				votes[p.RecordingID] = m
			}
			m[off]++
		}
	}

	matches := make([]Match, 0, len(votes))
	for rid, offsets := range votes {
		bestOff, bestN := 0, 0
		for off, n := range offsets {
			if n > bestN || (n == bestN && off < bestOff) {
				bestOff, bestN = off, n
			}
		}
		matches = append(matches, Match{RecordingID: rid, Offset: bestOff, Score: bestN})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].RecordingID < matches[j].RecordingID
	})
	return matches
}
