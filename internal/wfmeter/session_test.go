package wfmeter

import (
	"math"
	"testing"
)

// synthTone generates a pure sine tone as 16-bit-range PCM samples widened
// to int32, mirroring the test harness shape of this repository's own
// synthetic-audio generators (deterministic, no math/rand).
func synthTone(sampleRate int, durationSec, freq, amplitude float64) []int32 {
	n := int(durationSec * float64(sampleRate))
	out := make([]int32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = int32(amplitude * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

// synthModulatedTone generates a sine tone whose instantaneous frequency
// is sinusoidally modulated around carrierFreq, used to synthesize wow
// (slow modulation) and flutter (faster modulation) test signals.
func synthModulatedTone(sampleRate int, durationSec, carrierFreq, amplitude, modDepthFraction, modFreq float64) []int32 {
	n := int(durationSec * float64(sampleRate))
	out := make([]int32, n)
	phase := 0.0
	for i := range out {
		t := float64(i) / float64(sampleRate)
		instFreq := carrierFreq * (1 + modDepthFraction*math.Sin(2*math.Pi*modFreq*t))
		phase += 2 * math.Pi * instFreq / float64(sampleRate)
		out[i] = int32(amplitude * math.Sin(phase))
	}
	return out
}

// synthNoise generates deterministic pseudo-random broadband noise via a
// linear congruential generator (matching this repository's existing
// testutil_test.go convention of avoiding math/rand in test fixtures).
func synthNoise(sampleRate int, durationSec, amplitude float64, seed uint32) []int32 {
	n := int(durationSec * float64(sampleRate))
	out := make([]int32, n)
	state := seed
	for i := range out {
		state = state*1664525 + 1013904223
		v := (float64(state)/float64(0xFFFFFFFF))*2.0 - 1.0
		out[i] = int32(amplitude * v)
	}
	return out
}

func concat(parts ...[]int32) []int32 {
	var out []int32
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// TestEndToEndScenarios implements spec.md §8's literal S1-S6 table.
func TestEndToEndScenarios(t *testing.T) {
	const sr = 48000
	const freq = 3150.0

	t.Run("S1_silence", func(t *testing.T) {
		s := NewSession(sr, freq)
		samples := make([]int32, WindowsPerCall*(sr/10))
		if err := s.Process(samples, FilterDIN); err != nil {
			t.Fatalf("Process: %v", err)
		}
		r := s.Results()
		if r.RMSPercent != 0 || r.QuasiPeak != 0 || r.FrequencyHz != 0 {
			t.Errorf("silence: got %+v, want all zero", r)
		}
	})

	t.Run("S2_pure_tone", func(t *testing.T) {
		s := NewSession(sr, freq)
		samples := synthTone(sr, 10, freq, 10000)
		if err := s.Process(samples, FilterUnweighted); err != nil {
			t.Fatalf("Process: %v", err)
		}
		r := s.Results()
		if r.RMSPercent >= 0.01 {
			t.Errorf("rms = %v, want < 0.01", r.RMSPercent)
		}
		if r.QuasiPeak >= 0.05 {
			t.Errorf("peak = %v, want < 0.05", r.QuasiPeak)
		}
		if r.FrequencyHz < 3149.5 || r.FrequencyHz > 3150.5 {
			t.Errorf("freq = %v, want in [3149.5, 3150.5]", r.FrequencyHz)
		}
	})

	t.Run("S3_flutter_band", func(t *testing.T) {
		s := NewSession(sr, freq)
		samples := synthModulatedTone(sr, 10, freq, 10000, 0.005, 4)
		if err := s.Process(samples, FilterFlutter); err != nil {
			t.Fatalf("Process: %v", err)
		}
		r := s.Results()
		if r.RMSPercent <= 0.3 {
			t.Errorf("rms = %v, want > 0.3", r.RMSPercent)
		}
		if r.FrequencyHz < 3149 || r.FrequencyHz > 3151 {
			t.Errorf("freq = %v, want in [3149, 3151]", r.FrequencyHz)
		}
	})

	t.Run("S4_wow_band", func(t *testing.T) {
		s := NewSession(sr, freq)
		samples := synthModulatedTone(sr, 10, freq, 10000, 0.01, 1)
		if err := s.Process(samples, FilterWow); err != nil {
			t.Fatalf("Process: %v", err)
		}
		r := s.Results()
		if r.RMSPercent <= 0.6 {
			t.Errorf("rms = %v, want > 0.6", r.RMSPercent)
		}
		if !(r.QuasiPeak > r.RMSPercent) {
			t.Errorf("peak %v, want > rms %v", r.QuasiPeak, r.RMSPercent)
		}
	})

	t.Run("S5_below_gate_threshold", func(t *testing.T) {
		s := NewSession(sr, freq)
		samples := synthTone(sr, 10, freq, 30)
		if err := s.Process(samples, FilterDIN); err != nil {
			t.Fatalf("Process: %v", err)
		}
		r := s.Results()
		if r.RMSPercent != 0 || r.QuasiPeak != 0 || r.FrequencyHz != 0 {
			t.Errorf("below-threshold tone: got %+v, want all zero", r)
		}
	})

	t.Run("S6_tone_then_out_of_band_noise", func(t *testing.T) {
		s := NewSession(sr, freq)
		tone := synthTone(sr, 5, freq, 10000)
		noise := synthNoise(sr, 5, 10000, 99)
		samples := concat(tone, noise)
		if err := s.Process(samples, FilterUnweighted); err != nil {
			t.Fatalf("Process: %v", err)
		}
		r := s.Results()
		if r.FrequencyHz < 3140 || r.FrequencyHz > 3160 {
			t.Errorf("freq = %v, want close to 3150 (reflecting only the first 5s)", r.FrequencyHz)
		}
		ref := NewSession(sr, freq)
		if err := ref.Process(concat(tone, make([]int32, 5*sr)), FilterUnweighted); err != nil {
			t.Fatalf("Process: %v", err)
		}
		if r != ref.Results() {
			t.Errorf("tone+noise = %+v, want %+v as for tone+silence (noise half gated out)", r, ref.Results())
		}
	})
}

// TestInsufficientSamples checks spec.md §6/§7's InsufficientSamples error.
func TestInsufficientSamples(t *testing.T) {
	s := NewSession(48000, 3150)
	err := s.Process(make([]int32, 100), FilterUnweighted)
	if err != ErrInsufficientSamples {
		t.Errorf("err = %v, want ErrInsufficientSamples", err)
	}
}

// TestResetIdempotence implements spec.md §8 property 2 at the session
// level: init twice is equivalent to init once.
func TestResetIdempotence(t *testing.T) {
	samples := synthTone(48000, 10, 3150, 10000)

	a := NewSession(48000, 3150)
	if err := a.Process(samples, FilterDIN); err != nil {
		t.Fatalf("Process: %v", err)
	}

	b := NewSession(48000, 3150)
	b.Init(48000, 3150)
	if err := b.Process(samples, FilterDIN); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if a.Results() != b.Results() {
		t.Errorf("double-init session diverged: %+v vs %+v", a.Results(), b.Results())
	}
}

// TestGateExclusionMatchesSilence implements spec.md §8 property 4.
func TestGateExclusionMatchesSilence(t *testing.T) {
	quiet := NewSession(48000, 3150)
	if err := quiet.Process(synthTone(48000, 10, 3150, 30), FilterUnweighted); err != nil {
		t.Fatalf("Process: %v", err)
	}

	silent := NewSession(48000, 3150)
	if err := silent.Process(make([]int32, WindowsPerCall*4800), FilterUnweighted); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if quiet.Results() != silent.Results() {
		t.Errorf("below-threshold tone %+v != silence %+v", quiet.Results(), silent.Results())
	}
}

// TestMonotoneAttack implements spec.md §8 property 6 against the real
// envelope update inside dspPass: a loud tone following silence must pull
// s.qp toward the measurement with the fast /500 attack step, not the slow
// /6000 decay step, on the very first crossing that sees it.
func TestMonotoneAttack(t *testing.T) {
	s := NewSession(48000, 3150)

	crossings := 0
	for _, raw := range synthTone(48000, 1, 3150, 10000) {
		prevQP := s.qp
		var freqSum float64
		var freqCount int
		s.dspPass([]int32{raw}, FilterUnweighted, &freqSum, &freqCount)
		if s.qp == prevQP {
			continue
		}
		crossings++
		if s.qp < prevQP {
			t.Fatalf("crossing %d: qp decreased from %v to %v on an attack", crossings, prevQP, s.qp)
		}
		weighted := s.errHistory[(s.errHead+errorHistoryLen-1)%errorHistoryLen]
		if m := math.Abs(weighted) * 10000.0 / 85.0; m > prevQP {
			if want := prevQP + (m-prevQP)/500; s.qp != want {
				t.Fatalf("crossing %d: qp = %v, want %v (fast /500 attack step)", crossings, s.qp, want)
			}
		}
		if crossings >= 3 {
			break
		}
	}
	if crossings == 0 {
		t.Fatal("no crossings observed; test tone never moved qp")
	}
}

// TestWarmupSkipsExactlyOneCrossing implements spec.md §8 property 7: the
// first detected crossing in a session is discarded by the warmup
// mechanism and does not contribute to the accumulator, but every
// subsequent crossing does.
func TestWarmupSkipsExactlyOneCrossing(t *testing.T) {
	s := NewSession(48000, 3150)
	samples := synthTone(48000, 10, 3150, 10000)
	if err := s.Process(samples, FilterUnweighted); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if s.cross.warmupPending {
		t.Error("warmup still pending after a 10s tone; expected it to fire once early on")
	}

	w := NewSession(48000, 3150)
	var freqSum float64
	var freqCount int
	discarded, counted := false, false
	for _, raw := range synthTone(48000, 1, 3150, 10000) {
		pending := w.cross.warmupPending
		w.dspPass([]int32{raw}, FilterUnweighted, &freqSum, &freqCount)
		if pending && !w.cross.warmupPending {
			discarded = true
			if w.acc.validCount != 0 || freqCount != 0 {
				t.Fatalf("warmup crossing was counted: validCount=%d freqCount=%d", w.acc.validCount, freqCount)
			}
			continue
		}
		if discarded && w.acc.validCount > 0 {
			counted = true
			if w.acc.validCount != 1 || freqCount != 1 {
				t.Fatalf("second crossing: validCount=%d freqCount=%d, want 1 and 1", w.acc.validCount, freqCount)
			}
			break
		}
	}
	if !discarded || !counted {
		t.Fatalf("discarded=%v counted=%v, want both true", discarded, counted)
	}
}
