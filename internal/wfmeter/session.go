package wfmeter

import (
	"errors"
	"math"
)

// ErrInsufficientSamples is returned by Process when fewer than
// WindowsPerCall*samplesPer100ms samples are supplied. It is the only
// error kind the core surfaces; everything else (degenerate denominators,
// invalid gate blocks, out-of-range filter selectors) is recovered from
// internally and never reaches the caller.
var ErrInsufficientSamples = errors.New("wfmeter: insufficient samples for a 10s measurement window")

// WindowsPerCall is the number of 100ms windows a single Process call
// advances: exactly 10 seconds of measurement.
const WindowsPerCall = 100

// errorHistoryLen is the size of the diagnostic weighted-error ring kept
// for the spectral diagnostic (SPEC_FULL.md §D.4). It does not feed any
// §4 computation.
const errorHistoryLen = 1024

// config holds the derived, immutable-after-init constants of a session.
type config struct {
	sampleRateHz         int
	testFrequencyHz      float64
	nanosecondsPerSample float64
	expectedHalfPeriodNs float64
	samplesPer100ms      int
	minCrossings100ms    int
	maxCrossings100ms    int
}

// newConfig derives the invariants of spec.md §3. The crossing-count band
// is computed using the reference's truncated-integer test frequency (the
// C source assigns the double parameter into a static int before dividing
// by 5), while expected_half_period_ns uses the full-precision value — the
// reference computes it from the double parameter, before truncation.
func newConfig(sampleRateHz int, testFrequencyHz float64) config {
	testFreqInt := int(testFrequencyHz)
	return config{
		sampleRateHz:         sampleRateHz,
		testFrequencyHz:      testFrequencyHz,
		nanosecondsPerSample: 1e9 / float64(sampleRateHz),
		expectedHalfPeriodNs: 0.5 * 1e9 / testFrequencyHz,
		samplesPer100ms:      sampleRateHz / 10,
		minCrossings100ms:    int(float64(testFreqInt/5) * 0.95),
		maxCrossings100ms:    int(float64(testFreqInt/5) * 1.05),
	}
}

// crossingState tracks the sub-sample zero-crossing detector across
// samples within and between 100ms blocks.
type crossingState struct {
	previousFiltered int64
	accumulatingNs   float64
	carryRemainderNs float64
	warmupPending    bool
}

// accumulator holds the 1-second error/interval accumulation (reset at
// every 1-second publication boundary).
type accumulator struct {
	validCount    int
	intervalSumNs float64
}

// ring is the three-array window history of spec.md §3's WindowRing.
type ring struct {
	rms1secSums [10]float64
	maxRMSSlots [50]float64
	peakSlots   [50]float64
	idx100ms    int
	idx5sec     int
}

// Results is the last-published snapshot returned by Session.Results.
type Results struct {
	RMSPercent  float64
	QuasiPeak   float64
	FrequencyHz float64
}

// Session owns all mutable state for one measurement run. The reference
// implementation keeps this as module-scoped static variables; spec.md §9
// calls for replacing that with an explicit handle so independent sessions
// can run concurrently. A Session itself is not safe for concurrent use.
type Session struct {
	cfg   config
	bank  filterBank
	gate  int16 // previous raw sample, persists across 100ms blocks
	cross crossingState
	acc   accumulator
	win   ring
	qp    float64
	res   Results

	errHistory [errorHistoryLen]float64
	errHead    int
	errFilled  int
}

// NewSession creates and initializes a session for the given sample rate
// and test tone frequency.
func NewSession(sampleRateHz int, testFrequencyHz float64) *Session {
	s := &Session{}
	s.Init(sampleRateHz, testFrequencyHz)
	return s
}

// Init (re-)configures the session: zeroes results, resets all filter
// buffers, crossing state, and window ring, and recomputes the derived
// configuration. Init is idempotent — calling it twice with the same
// arguments is equivalent to calling it once.
//
// Init deliberately leaves s.gate untouched. In the reference, the previous
// raw sample tracked by the gate pass is a function-local static inside
// process_samples that flutterMeter_init never resets; it persists across
// re-init for the life of the process, and this session preserves that
// behavior (see DESIGN.md).
func (s *Session) Init(sampleRateHz int, testFrequencyHz float64) {
	s.cfg = newConfig(sampleRateHz, testFrequencyHz)
	s.bank = newFilterBank()
	s.cross = crossingState{warmupPending: true}
	s.acc = accumulator{}
	s.win = ring{}
	s.qp = 0
	s.res = Results{}
	s.errHead = 0
	s.errFilled = 0
}

// Results returns the last values published at a 1-second boundary. Before
// the first boundary it reads as the zero value.
func (s *Session) Results() Results {
	return s.res
}

// ErrorHistory returns up to the most recent errorHistoryLen weighted-error
// samples, oldest first. This is a diagnostic aid (SPEC_FULL.md §D.4); it
// does not participate in any measurement computation.
func (s *Session) ErrorHistory() []float64 {
	if s.errFilled < errorHistoryLen {
		return append([]float64(nil), s.errHistory[:s.errFilled]...)
	}
	out := make([]float64, errorHistoryLen)
	copy(out, s.errHistory[s.errHead:])
	copy(out[errorHistoryLen-s.errHead:], s.errHistory[:s.errHead])
	return out
}

func (s *Session) recordError(v float64) {
	s.errHistory[s.errHead] = v
	s.errHead = (s.errHead + 1) % errorHistoryLen
	if s.errFilled < errorHistoryLen {
		s.errFilled++
	}
}

// Process advances the measurement by exactly WindowsPerCall (100) 100ms
// windows — 10 seconds — consuming samples from the front of the slice.
// samples carries 16-bit PCM values widened to 32 bits, per spec.md §6;
// the gate and isolator truncate to 16-bit signed on entry.
func (s *Session) Process(samples []int32, filterType FilterType) error {
	need := WindowsPerCall * s.cfg.samplesPer100ms
	if len(samples) < need {
		return ErrInsufficientSamples
	}

	var freqSum float64
	var freqCount int

	offset := 0
	for w := 0; w < WindowsPerCall; w++ {
		block := samples[offset : offset+s.cfg.samplesPer100ms]
		offset += s.cfg.samplesPer100ms

		maxAmplitude, crossings := s.gatePass(block)
		if maxAmplitude < 50 || crossings < s.cfg.minCrossings100ms || crossings > s.cfg.maxCrossings100ms {
			continue
		}

		sumSquares, lastQP := s.dspPass(block, filterType, &freqSum, &freqCount)
		s.publishWindow(sumSquares, lastQP, freqSum, freqCount)
	}
	return nil
}

// gatePass implements spec.md §4.2: a single pass over the raw samples of
// one block computing the positive-side peak amplitude and the
// zero-crossing count, with previous_raw persisting across blocks.
func (s *Session) gatePass(block []int32) (maxAmplitude int16, crossings int) {
	prev := s.gate
	for _, raw := range block {
		sample := int16(raw)
		if sample > maxAmplitude {
			maxAmplitude = sample
		}
		if (sample >= 0 && prev < 0) || (sample < 0 && prev >= 0) {
			crossings++
		}
		prev = sample
	}
	s.gate = prev
	return maxAmplitude, crossings
}

// dspPass implements spec.md §4.3–§4.6 for one valid block: isolator,
// crossing detection, timing-error/weighting, quasi-peak envelope, and the
// per-block sum-of-squares/frequency accumulation.
func (s *Session) dspPass(block []int32, ft FilterType, freqSum *float64, freqCount *int) (sumSquares, lastQP float64) {
	for _, raw := range block {
		sample := int16(raw)
		filtered := s.bank.isolator.step(float64(sample))
		current := int64(filtered)

		isCrossing := false
		switch {
		case current > 0 && s.cross.previousFiltered < 0, current < 0 && s.cross.previousFiltered > 0:
			denom := float64(current - s.cross.previousFiltered)
			if math.Abs(denom) < 1e-9 {
				if denom >= 0 {
					denom = 1e-9
				} else {
					denom = -1e-9
				}
			}
			crossingOffsetNs := -float64(s.cross.previousFiltered) * s.cfg.nanosecondsPerSample / denom
			s.cross.accumulatingNs += crossingOffsetNs
			s.cross.carryRemainderNs = s.cfg.nanosecondsPerSample - crossingOffsetNs
			isCrossing = true
		default:
			s.cross.accumulatingNs += s.cfg.nanosecondsPerSample
		}

		if current == 0 {
			s.cross.carryRemainderNs = 0
			isCrossing = true
		}
		s.cross.previousFiltered = current

		if !isCrossing {
			continue
		}

		if s.cross.warmupPending {
			s.acc.validCount = 0
			s.cross.warmupPending = false
			continue
		}

		timingError := (s.cfg.expectedHalfPeriodNs - s.cross.accumulatingNs) / s.cfg.expectedHalfPeriodNs
		weighted := s.bank.weight(ft, timingError)
		s.recordError(weighted)
		measurement := math.Abs(weighted) * 10000.0 / 85.0

		if measurement > s.qp {
			s.qp += (measurement - s.qp) / 500
		} else {
			s.qp += (measurement - s.qp) / 6000
		}
		lastQP = s.qp

		sumSquares += weighted * weighted
		s.acc.validCount++
		s.acc.intervalSumNs += s.cross.accumulatingNs
		s.cross.accumulatingNs = s.cross.carryRemainderNs

		averageIntervalNs := s.acc.intervalSumNs / float64(s.acc.validCount)
		measuredFrequencyHz := 1e9 / averageIntervalNs / 2
		*freqSum += measuredFrequencyHz
		*freqCount++
	}
	return sumSquares, lastQP
}

// publishWindow implements the end-of-100ms-block bookkeeping of
// spec.md §4.6, including the preserved index-reuse quirk of §9 open
// question 1: the per-second RMS value is written into max_rms_slots at
// the post-increment idx_5sec, one slot past the one the peak write just
// used (the slot the next peak write will use).
func (s *Session) publishWindow(sumSquares, lastQP float64, freqSum float64, freqCount int) {
	s.win.rms1secSums[s.win.idx100ms] = sumSquares
	s.win.peakSlots[s.win.idx5sec] = lastQP
	s.win.idx5sec = (s.win.idx5sec + 1) % 50

	s.win.idx100ms++
	if s.win.idx100ms != 10 {
		return
	}

	var totalSS float64
	for _, v := range s.win.rms1secSums {
		totalSS += v
	}
	var rmsPercent float64
	if s.acc.validCount > 0 {
		rmsPercent = math.Sqrt(totalSS/float64(s.acc.validCount)) * 100
	}
	s.win.maxRMSSlots[s.win.idx5sec] = rmsPercent

	var maxRMS, maxPeak float64
	for i := 0; i < 50; i++ {
		if s.win.maxRMSSlots[i] > maxRMS {
			maxRMS = s.win.maxRMSSlots[i]
		}
		if s.win.peakSlots[i] > maxPeak {
			maxPeak = s.win.peakSlots[i]
		}
	}
	s.res.RMSPercent = maxRMS
	s.res.QuasiPeak = maxPeak
	if freqCount > 0 {
		s.res.FrequencyHz = freqSum / float64(freqCount)
	}

	s.acc.validCount = 0
	s.acc.intervalSumNs = 0
	s.win.idx100ms = 0
}
