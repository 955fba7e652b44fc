package fingerprint

import "testing"

func TestScanForMatchesFindsEmbeddedClip(t *testing.T) {
	sampleRate := 8000
	cfg := DefaultConfig()

	// 440 and 660 Hz both complete a whole number of cycles in 2 seconds,
	// so concatenated copies form one seamless 10-second signal.
	clip := sineMix([]float64{440, 660}, sampleRate, 2*sampleRate)
	ref := make([]float64, 0, 5*len(clip))
	for i := 0; i < 5; i++ {
		ref = append(ref, clip...)
	}

	candidates := map[string][]float64{
		"ref":   ref,
		"noise": pseudoNoise(42, len(ref)),
		"short": make([]float64, 1000),
	}

	results, err := ScanForMatches(clip, sampleRate, candidates, 2.0, 2, cfg)
	if err != nil {
		t.Fatalf("ScanForMatches failed: %v", err)
	}

	if len(results) == 0 {
		t.Fatal("Expected the embedded clip to be found")
	}
	if results[0].RecordingID != "ref" {
		t.Fatalf("Top match %q, expected ref", results[0].RecordingID)
	}
	if results[0].MatchingBlocks < 2 {
		t.Errorf("Matching blocks %d, expected at least 2", results[0].MatchingBlocks)
	}

	// The best block is an exact copy of the clip, so its score must equal
	// the clip's self-match score.
	clipFP, err := FingerprintSamples(clip, sampleRate, cfg)
	if err != nil {
		t.Fatalf("FingerprintSamples failed: %v", err)
	}
	if want := Score(clipFP, clipFP); results[0].Score != want {
		t.Errorf("Best block score %d, expected %d", results[0].Score, want)
	}

	for _, r := range results {
		if r.RecordingID == "short" {
			t.Error("Candidate shorter than one block must be skipped")
		}
	}
}

func TestScanForMatchesNoMatch(t *testing.T) {
	sampleRate := 8000
	clip := sineMix([]float64{440}, sampleRate, sampleRate)

	candidates := map[string][]float64{
		"silence": make([]float64, 4*sampleRate),
	}

	results, err := ScanForMatches(clip, sampleRate, candidates, 1.0, 2, DefaultConfig())
	if err != nil {
		t.Fatalf("ScanForMatches failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Silence reported as a match: %+v", results)
	}
}

func TestScanForMatchesEmptyCandidates(t *testing.T) {
	clip := sineMix([]float64{440}, 8000, 8000)

	results, err := ScanForMatches(clip, 8000, nil, 1.0, 2, DefaultConfig())
	if err != nil {
		t.Fatalf("ScanForMatches failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestScanForMatchesInvalidParameters(t *testing.T) {
	clip := sineMix([]float64{440}, 8000, 8000)
	candidates := map[string][]float64{"a": make([]float64, 16000)}
	cfg := DefaultConfig()

	if _, err := ScanForMatches(clip, 0, candidates, 1.0, 2, cfg); err == nil {
		t.Error("Expected error for zero sample rate")
	}
	if _, err := ScanForMatches(clip, 8000, candidates, 0, 2, cfg); err == nil {
		t.Error("Expected error for zero block duration")
	}
	if _, err := ScanForMatches(clip, 8000, candidates, 1.0, 0, cfg); err == nil {
		t.Error("Expected error for zero min matching blocks")
	}

	bad := cfg
	bad.OverlapRatio = 1.5
	if _, err := ScanForMatches(clip, 8000, candidates, 1.0, 2, bad); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestScanForMatchesDeterministicOrder(t *testing.T) {
	sampleRate := 8000
	clip := sineMix([]float64{440, 660}, sampleRate, sampleRate)

	// Two identical candidates tie on score; order must be stable by id.
	candidates := map[string][]float64{
		"beta":  append(append([]float64{}, clip...), clip...),
		"alpha": append(append([]float64{}, clip...), clip...),
	}

	for i := 0; i < 5; i++ {
		results, err := ScanForMatches(clip, sampleRate, candidates, 1.0, 1, DefaultConfig())
		if err != nil {
			t.Fatalf("ScanForMatches failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("Expected 2 results, got %d", len(results))
		}
		if results[0].RecordingID != "alpha" || results[1].RecordingID != "beta" {
			t.Fatalf("Unstable tie order: %q before %q", results[0].RecordingID, results[1].RecordingID)
		}
		if results[0].Score != results[1].Score {
			t.Fatalf("Identical candidates scored differently: %d vs %d", results[0].Score, results[1].Score)
		}
	}
}
