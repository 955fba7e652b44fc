package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

const int16Scale = 1.0 / 32768.0

// ReadWAVAsFloat64 decodes a 16-bit PCM WAV file into mono samples
// normalized to [-1, 1] and returns them with the sample rate. Stereo input
// is down-mixed by averaging the channels.
func ReadWAVAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid WAV file", path)
	}
	if dec.BitDepth != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d: only 16-bit PCM supported", dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding PCM data: %w", err)
	}

	switch buf.Format.NumChannels {
	case 1:
		out := make([]float64, len(buf.Data))
		for i, s := range buf.Data {
			out[i] = float64(s) * int16Scale
		}
		return out, int(dec.SampleRate), nil
	case 2:
		frames := len(buf.Data) / 2
		out := make([]float64, frames)
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * int16Scale
			r := float64(buf.Data[2*i+1]) * int16Scale
			out[i] = (l + r) * 0.5
		}
		return out, int(dec.SampleRate), nil
	default:
		return nil, 0, errors.New("unsupported channel count: only mono/stereo supported")
	}
}
