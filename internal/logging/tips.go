package logging

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/linuxmatters/wowflutter/internal/mains"
	"github.com/linuxmatters/wowflutter/internal/processor"
	"github.com/linuxmatters/wowflutter/internal/spectrum"
)

// Tip represents a single piece of actionable diagnostic advice derived
// from a completed wow-and-flutter measurement run.
type Tip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "rms_flutter_high")
}

// MaxTips is the maximum number of tips to return.
const MaxTips = 5

// GenerateTips analyses a completed measurement run and returns
// prioritised diagnostic suggestions about the transport under test.
func GenerateTips(summary *processor.Summary, testFrequencyHz float64) []Tip {
	if summary == nil {
		return nil
	}

	var tips []Tip
	fired := make(map[string]bool)

	rules := []func(*processor.Summary, float64) *Tip{
		tipRMSFlutterHigh,
		tipRMSFlutterModerate,
		tipQuasiPeakSpike,
		tipFrequencyOffset,
		tipSilentRun,
		tipMainsCorrelation,
	}

	for _, rule := range rules {
		if tip := rule(summary, testFrequencyHz); tip != nil {
			tips = append(tips, *tip)
			fired[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, fired)

	sort.Slice(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}

	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. "rms_flutter_moderate" is subsumed by the "high"
// variant, and a silent run makes every other frequency-domain tip moot.
func applyExclusions(tips []Tip, fired map[string]bool) []Tip {
	var result []Tip
	for _, tip := range tips {
		switch tip.RuleID {
		case "rms_flutter_moderate":
			if fired["rms_flutter_high"] {
				continue
			}
		case "frequency_offset", "mains_correlation", "quasi_peak_spike":
			if fired["silent_run"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// tipRMSFlutterHigh fires when the final RMS flutter reading reaches 0.5%,
// well beyond what a healthy transport should produce.
func tipRMSFlutterHigh(s *processor.Summary, _ float64) *Tip {
	if s.Final.RMSPercent < 0.5 {
		return nil
	}
	return &Tip{
		Priority: 10,
		RuleID:   "rms_flutter_high",
		Message: fmt.Sprintf(
			"RMS flutter is %.3f%%, well above what a healthy transport should show. Check belt tension, capstan bearings, and pinch roller condition.",
			s.Final.RMSPercent,
		),
	}
}

// tipRMSFlutterModerate fires for a moderate but still noticeable flutter
// reading, from 0.1% up to the 0.5% high-flutter cutoff above.
func tipRMSFlutterModerate(s *processor.Summary, _ float64) *Tip {
	if s.Final.RMSPercent < 0.1 || s.Final.RMSPercent >= 0.5 {
		return nil
	}
	return &Tip{
		Priority: 6,
		RuleID:   "rms_flutter_moderate",
		Message: fmt.Sprintf(
			"RMS flutter is %.3f%%, slightly elevated for a well-maintained transport. Worth a closer look if this deviates from a recent baseline measurement.",
			s.Final.RMSPercent,
		),
	}
}

// tipQuasiPeakSpike fires when the quasi-peak reading is much larger than
// the RMS reading, indicating brief but severe speed excursions rather
// than steady-state flutter.
func tipQuasiPeakSpike(s *processor.Summary, _ float64) *Tip {
	if s.Final.RMSPercent <= 0 || s.Final.QuasiPeak < 3*s.Final.RMSPercent {
		return nil
	}
	return &Tip{
		Priority: 7,
		RuleID:   "quasi_peak_spike",
		Message: fmt.Sprintf(
			"Quasi-peak flutter (%.3f%%) is much higher than the RMS reading (%.3f%%), suggesting brief speed excursions rather than steady drift. Inspect the transport for an intermittent binding point over one full revolution.",
			s.Final.QuasiPeak, s.Final.RMSPercent,
		),
	}
}

// tipFrequencyOffset fires when the measured average tone frequency drifts
// noticeably from the nominal test tone, indicating the transport is
// running persistently fast or slow rather than just fluttering around
// the correct speed.
func tipFrequencyOffset(s *processor.Summary, testFrequencyHz float64) *Tip {
	if s.Final.FrequencyHz == 0 || testFrequencyHz == 0 {
		return nil
	}
	deviationPercent := 100 * (s.Final.FrequencyHz - testFrequencyHz) / testFrequencyHz
	if math.Abs(deviationPercent) < 0.3 {
		return nil
	}
	direction := "fast"
	if deviationPercent < 0 {
		direction = "slow"
	}
	return &Tip{
		Priority: 8,
		RuleID:   "frequency_offset",
		Message: fmt.Sprintf(
			"The measured tone averages %.2f Hz against a %.0f Hz reference, about %.2f%% too %s. Check capstan speed or reference-tape calibration before trusting the flutter figures.",
			s.Final.FrequencyHz, testFrequencyHz, math.Abs(deviationPercent), direction,
		),
	}
}

// tipSilentRun fires when no window ever accumulated a valid measurement,
// meaning the gate rejected every 100ms block of the run.
func tipSilentRun(s *processor.Summary, _ float64) *Tip {
	if s.Final.FrequencyHz != 0 {
		return nil
	}
	return &Tip{
		Priority: 10,
		RuleID:   "silent_run",
		Message:  "No window produced a valid measurement. Confirm the test tone is present, loud enough, and close to the expected frequency before re-running.",
	}
}

// tipMainsCorrelation fires when any of the eight strongest bins of the
// weighted-error spectrum lands within 0.5 Hz of the local mains frequency
// or its second harmonic, suggesting motor-supply hum is modulating transport speed
// rather than mechanical wear.
func tipMainsCorrelation(s *processor.Summary, testFrequencyHz float64) *Tip {
	if len(s.ErrorHistory) < 64 || testFrequencyHz == 0 {
		return nil
	}
	peaks := spectrum.Analyze(s.ErrorHistory, 2*testFrequencyHz, 8)
	if len(peaks) == 0 {
		return nil
	}
	hz := float64(mains.Frequency())
	for _, p := range peaks {
		if math.Abs(p.FrequencyHz-hz) < 0.5 || math.Abs(p.FrequencyHz-2*hz) < 0.5 {
			return &Tip{
				Priority: 9,
				RuleID:   "mains_correlation",
				Message: fmt.Sprintf(
					"A strong component of the speed-error signal sits at %.1f Hz, close to the local %.0f Hz mains frequency. This points to motor-supply ripple rather than mechanical wear.",
					p.FrequencyHz, hz,
				),
			}
		}
	}
	return nil
}
