package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
)

// HashPoint pairs one constellation hash with the time frame of the anchor
// peak it was derived from.
type HashPoint struct {
	Hash       string
	AnchorTime int
}

// Fingerprint is the multiset of (hash, anchor time) pairs for one recording
// or block. It is the only artifact worth retaining across calls.
type Fingerprint []HashPoint

// HashOptions controls constellation generation.
type HashOptions struct {
	// FanValue is the constellation fan-out: each anchor is paired with up
	// to FanValue-1 of the peaks that follow it in time.
	FanValue int
	// MinDeltaTime and MaxDeltaTime bound the anchor-to-target time delta
	// (in frames) of a usable pair.
	MinDeltaTime int
	MaxDeltaTime int
	// HashLength is the number of hex digest characters kept per hash.
	HashLength int
}

// DefaultHashOptions returns the stock constellation parameters.
func DefaultHashOptions() HashOptions {
	return HashOptions{
		FanValue:     DefaultFanValue,
		MinDeltaTime: DefaultMinDeltaTime,
		MaxDeltaTime: DefaultMaxDeltaTime,
		HashLength:   DefaultHashLength,
	}
}

// Validate rejects parameter combinations that would silently degrade the
// hash stream.
func (o HashOptions) Validate() error {
	if o.FanValue < 1 {
		return fmt.Errorf("fan value must be at least 1, got %d", o.FanValue)
	}
	if o.MinDeltaTime < 0 {
		return fmt.Errorf("min delta time must not be negative, got %d", o.MinDeltaTime)
	}
	if o.MaxDeltaTime < o.MinDeltaTime {
		return fmt.Errorf("max delta time %d is below min delta time %d", o.MaxDeltaTime, o.MinDeltaTime)
	}
	if o.HashLength < 1 || o.HashLength > sha1.Size*2 {
		return fmt.Errorf("hash length must be in [1, %d], got %d", sha1.Size*2, o.HashLength)
	}
	return nil
}

// GenerateHashes turns a peak constellation into a fingerprint. Peaks are
// stably sorted by time frame; each anchor is paired with the next
// FanValue-1 peaks whose time delta falls inside the configured window. A
// pair hashes as SHA-1 of "anchorFreq|targetFreq|delta", truncated to
// HashLength hex characters, and is anchored at the anchor's time frame.
//
// Output size is bounded by len(peaks) * (FanValue - 1). The input slice is
// not modified.
func GenerateHashes(peaks []Peak, opts HashOptions) (Fingerprint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	sorted := append([]Peak(nil), peaks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeFrame < sorted[j].TimeFrame
	})

	fp := make(Fingerprint, 0, len(sorted)*(opts.FanValue-1))
	for i, anchor := range sorted {
		for j := 1; j < opts.FanValue && i+j < len(sorted); j++ {
			target := sorted[i+j]
			delta := target.TimeFrame - anchor.TimeFrame
			if delta < opts.MinDeltaTime || delta > opts.MaxDeltaTime {
				continue
			}
			sum := sha1.Sum([]byte(fmt.Sprintf("%d|%d|%d", anchor.FreqBin, target.FreqBin, delta)))
			fp = append(fp, HashPoint{
				Hash:       hex.EncodeToString(sum[:])[:opts.HashLength],
				AnchorTime: anchor.TimeFrame,
			})
		}
	}
	return fp, nil
}
