package spectrum

import (
	"math"
	"testing"
)

func TestAnalyzeFindsDominantFrequency(t *testing.T) {
	const n = 512
	const rate = 1000.0
	const target = 50.0

	errs := make([]float64, n)
	for i := range errs {
		errs[i] = math.Sin(2 * math.Pi * target * float64(i) / rate)
	}

	peaks := Analyze(errs, rate, 3)
	if len(peaks) == 0 {
		t.Fatal("expected at least one peak")
	}
	if math.Abs(peaks[0].FrequencyHz-target) > rate/float64(n) {
		t.Errorf("dominant peak = %v Hz, want close to %v Hz", peaks[0].FrequencyHz, target)
	}
}

func TestAnalyzeShortHistoryYieldsNoPeaks(t *testing.T) {
	if got := Analyze([]float64{1, 2}, 1000, 5); got != nil {
		t.Errorf("got %v, want nil for a too-short history", got)
	}
}
