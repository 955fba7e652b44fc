package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// RecordWAV captures a fixed duration of mono audio from the default input
// device and writes it to outPath as 16-bit PCM WAV.
func RecordWAV(outPath string, sampleRate int, duration time.Duration) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", duration)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	in := make([]int16, 512)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(in), in)
	if err != nil {
		return fmt.Errorf("opening input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting input stream: %w", err)
	}

	want := int(float64(sampleRate) * duration.Seconds())
	data := make([]int, 0, want)
	for len(data) < want {
		if err := stream.Read(); err != nil {
			return fmt.Errorf("reading input stream: %w", err)
		}
		for _, s := range in {
			data = append(data, int(s))
			if len(data) == want {
				break
			}
		}
	}

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("stopping input stream: %w", err)
	}

	return writeWAVInts(outPath, data, sampleRate)
}
