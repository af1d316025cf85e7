// Package processor orchestrates reading a WAV file through the
// measurement core in successive 10-second windows and collecting the
// published results.
package processor

import (
	"fmt"

	"github.com/linuxmatters/wowflutter/internal/audio"
	"github.com/linuxmatters/wowflutter/internal/wfmeter"
)

// Window is one completed 10-second measurement, the state of
// wfmeter.Results immediately after the Process call that produced it.
type Window struct {
	Index   int
	Results wfmeter.Results
}

// Summary is the outcome of measuring an entire file: every completed
// 10-second window plus the final published results.
type Summary struct {
	Metadata audio.Metadata
	Windows  []Window
	Final    wfmeter.Results
	// ErrorHistory is the diagnostic weighted-error ring retained by the
	// session at the end of the run (SPEC_FULL.md §D.4).
	ErrorHistory []float64
}

// ProgressFunc is called after each completed 10-second window, mirroring
// this repository's existing progress-callback convention.
type ProgressFunc func(w Window)

// MeasureFile reads filename and runs it through a wfmeter.Session in
// successive 10-second windows until the file is exhausted. A final
// partial window shorter than 10 seconds is measured over whatever
// samples remain padded with trailing silence, so the last window's gate
// naturally rejects the padding rather than fabricating measurements.
func MeasureFile(filename string, testFrequencyHz float64, filterType wfmeter.FilterType, progress ProgressFunc) (*Summary, error) {
	reader, meta, err := audio.OpenWAV(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	session := wfmeter.NewSession(meta.SampleRate, testFrequencyHz)
	windowSamples := wfmeter.WindowsPerCall * (meta.SampleRate / 10)

	summary := &Summary{Metadata: *meta}
	for idx := 0; ; idx++ {
		block, err := reader.ReadSamples(windowSamples)
		if err != nil {
			return nil, fmt.Errorf("processor: %w", err)
		}
		if len(block) == 0 {
			break
		}
		if len(block) < windowSamples {
			block = append(block, make([]int32, windowSamples-len(block))...)
		}

		if err := session.Process(block, filterType); err != nil {
			return nil, fmt.Errorf("processor: window %d: %w", idx, err)
		}

		w := Window{Index: idx, Results: session.Results()}
		summary.Windows = append(summary.Windows, w)
		if progress != nil {
			progress(w)
		}
	}

	summary.Final = session.Results()
	summary.ErrorHistory = session.ErrorHistory()
	return summary, nil
}
