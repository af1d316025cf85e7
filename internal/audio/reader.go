// Package audio provides WAV/RIFF file reading for the measurement
// pipeline: mono 16-bit PCM samples, widened to int32 as wfmeter.Process
// expects.
package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/youpy/go-wav"
)

// Metadata describes the format of an opened WAV file.
type Metadata struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// Reader reads mono 16-bit PCM samples out of a WAV file, downmixing by
// taking the first channel only if the file is stereo — multi-channel
// analysis is out of scope (spec.md §1 Non-goals).
type Reader struct {
	file *os.File
	wav  *wav.Reader
	meta Metadata
}

// OpenWAV opens filename and validates it carries 16-bit PCM audio.
func OpenWAV(filename string) (*Reader, *Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("audio: open %s: %w", filename, err)
	}

	rd := wav.NewReader(f)
	format, err := rd.Format()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("audio: read format of %s: %w", filename, err)
	}
	if format.BitsPerSample != 16 {
		f.Close()
		return nil, nil, fmt.Errorf("audio: %s is %d-bit PCM, only 16-bit is supported", filename, format.BitsPerSample)
	}
	if format.AudioFormat != 1 {
		f.Close()
		return nil, nil, fmt.Errorf("audio: %s is not linear PCM", filename)
	}

	meta := &Metadata{
		SampleRate:    int(format.SampleRate),
		Channels:      int(format.NumChannels),
		BitsPerSample: int(format.BitsPerSample),
	}
	return &Reader{file: f, wav: rd, meta: *meta}, meta, nil
}

// Metadata returns the format detected when the file was opened.
func (r *Reader) Metadata() Metadata { return r.meta }

// ReadSamples reads up to max samples of channel 0, widened to int32.
// It returns fewer than max samples (possibly zero) with a nil error at
// end of file; io.EOF is never returned directly.
func (r *Reader) ReadSamples(max int) ([]int32, error) {
	out := make([]int32, 0, max)
	for len(out) < max {
		samples, err := r.wav.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, fmt.Errorf("audio: read samples: %w", err)
		}
		for _, s := range samples {
			out = append(out, int32(r.wav.IntValue(s, 0)))
			if len(out) == max {
				break
			}
		}
	}
	return out, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
