package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	sampleRate := 8000
	samples := make([]float64, 4000)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteWAVFromFloat64(path, samples, sampleRate); err != nil {
		t.Fatalf("WriteWAVFromFloat64 failed: %v", err)
	}

	got, rate, err := ReadWAVAsFloat64(path)
	if err != nil {
		t.Fatalf("ReadWAVAsFloat64 failed: %v", err)
	}

	if rate != sampleRate {
		t.Errorf("Sample rate %d, expected %d", rate, sampleRate)
	}
	if len(got) != len(samples) {
		t.Fatalf("Read %d samples, expected %d", len(got), len(samples))
	}

	// 16-bit quantization bounds the round-trip error.
	const tolerance = 1.0 / 32000
	for i := range samples {
		if d := math.Abs(got[i] - samples[i]); d > tolerance {
			t.Fatalf("Sample %d drifted by %g (wrote %g, read %g)", i, d, samples[i], got[i])
		}
	}
}

func TestWriteClampsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipped.wav")
	if err := WriteWAVFromFloat64(path, []float64{2.0, -2.0, 0}, 8000); err != nil {
		t.Fatalf("WriteWAVFromFloat64 failed: %v", err)
	}

	got, _, err := ReadWAVAsFloat64(path)
	if err != nil {
		t.Fatalf("ReadWAVAsFloat64 failed: %v", err)
	}
	for i, s := range got {
		if s > 1 || s < -1 {
			t.Errorf("Sample %d out of range after clamping: %g", i, s)
		}
	}
	if got[0] < 0.99 || got[1] > -0.99 {
		t.Errorf("Expected full-scale clamped samples, got %g and %g", got[0], got[1])
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, _, err := ReadWAVAsFloat64(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("this is not a wav file"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadWAVAsFloat64(path); err == nil {
		t.Error("Expected error for a non-WAV file")
	}
}
