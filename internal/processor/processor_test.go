package processor

import (
	"testing"

	"github.com/linuxmatters/wowflutter/internal/wfmeter"
)

func TestMeasureFilePureTone(t *testing.T) {
	path := generateTestWAV(t, 48000, 10, 3150, 10000)

	var seen []Window
	summary, err := MeasureFile(path, 3150, wfmeter.FilterUnweighted, func(w Window) {
		seen = append(seen, w)
	})
	if err != nil {
		t.Fatalf("MeasureFile: %v", err)
	}

	if len(summary.Windows) != 1 {
		t.Fatalf("got %d windows, want 1 (10s of audio is exactly one Process call)", len(summary.Windows))
	}
	if len(seen) != len(summary.Windows) {
		t.Errorf("progress callback saw %d windows, summary has %d", len(seen), len(summary.Windows))
	}
	if summary.Final.FrequencyHz < 3149 || summary.Final.FrequencyHz > 3151 {
		t.Errorf("frequency = %v, want close to 3150", summary.Final.FrequencyHz)
	}
	if summary.Metadata.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want 48000", summary.Metadata.SampleRate)
	}
}

func TestMeasureFilePadsFinalPartialWindow(t *testing.T) {
	// 12 seconds: a full 10s window plus a short partial one. The partial
	// window is padded with silence, so its gate rejects the padded 100ms
	// blocks while the remaining tone is still measured.
	path := generateTestWAV(t, 48000, 12, 3150, 10000)

	summary, err := MeasureFile(path, 3150, wfmeter.FilterUnweighted, nil)
	if err != nil {
		t.Fatalf("MeasureFile: %v", err)
	}
	if len(summary.Windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(summary.Windows))
	}
}
