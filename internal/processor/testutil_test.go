package processor

import (
	"encoding/binary"
	"math"
	"os"
	"testing"
)

// generateTestWAV writes a synthetic mono 16-bit PCM WAV file containing a
// sine tone, following this repository's existing convention of a
// hand-written RIFF writer in test fixtures rather than pulling in a test
// dependency just to generate one.
func generateTestWAV(t *testing.T, sampleRate int, durationSec, freq, amplitude float64) string {
	t.Helper()

	n := int(durationSec * float64(sampleRate))
	samples := make([]int16, n)
	for i := range samples {
		tm := float64(i) / float64(sampleRate)
		samples[i] = int16(amplitude * math.Sin(2*math.Pi*freq*tm))
	}

	tmp, err := os.CreateTemp("", "wowflutter-test-*.wav")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if err := writeWAV(tmp, samples, sampleRate); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		t.Fatalf("write wav: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		t.Fatalf("close temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmp.Name()) })
	return tmp.Name()
}

func writeWAV(f *os.File, samples []int16, sampleRate int) error {
	const numChannels = 1
	const bitsPerSample = 16

	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	writes := []any{
		[]byte("RIFF"), uint32(fileSize), []byte("WAVE"),
		[]byte("fmt "), uint32(16), uint16(1), uint16(numChannels),
		uint32(sampleRate), uint32(byteRate), uint16(blockAlign), uint16(bitsPerSample),
		[]byte("data"), uint32(dataSize),
	}
	for _, v := range writes {
		if b, ok := v.([]byte); ok {
			if _, err := f.Write(b); err != nil {
				return err
			}
			continue
		}
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	for _, s := range samples {
		if err := binary.Write(f, binary.LittleEndian, s); err != nil {
			return err
		}
	}
	return nil
}
