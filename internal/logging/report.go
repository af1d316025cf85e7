package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/wowflutter/internal/mains"
	"github.com/linuxmatters/wowflutter/internal/processor"
	"github.com/linuxmatters/wowflutter/internal/spectrum"
	"github.com/linuxmatters/wowflutter/internal/wfmeter"
)

var (
	reportHeadingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	reportNoteStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888"))
)

// ReportOptions controls which optional sections WriteReport includes.
type ReportOptions struct {
	IncludeTips     bool
	IncludeSpectrum bool
}

// WriteReport renders a full measurement report for one file: per-window
// results, the final published figures, a mains-frequency diagnostic
// note, and the optional tips and spectrum sections.
func WriteReport(w io.Writer, filename string, summary *processor.Summary, testFrequencyHz float64, filterType wfmeter.FilterType, opts ReportOptions) error {
	fmt.Fprintln(w, reportHeadingStyle.Render(filename))
	fmt.Fprintf(w, "%d Hz, %d channel(s), %d-bit · test tone %.0f Hz · filter %s\n",
		summary.Metadata.SampleRate, summary.Metadata.Channels, summary.Metadata.BitsPerSample,
		testFrequencyHz, filterType)

	table := NewWindowTable()
	for _, win := range summary.Windows {
		label := fmt.Sprintf("Window %d", win.Index+1)
		table.AddWindowRow(label, win.Results.RMSPercent, win.Results.QuasiPeak, win.Results.FrequencyHz)
	}
	fmt.Fprint(w, table.String())

	fmt.Fprintln(w, reportHeadingStyle.Render("Final"))
	fmt.Fprintf(w, "RMS flutter: %s%%\n", formatMetricPercent(summary.Final.RMSPercent, 4))
	fmt.Fprintf(w, "Quasi-peak flutter: %s%%\n", formatMetricPercent(summary.Final.QuasiPeak, 4))
	fmt.Fprintf(w, "Measured frequency: %s Hz\n", formatMetricHz(summary.Final.FrequencyHz, 2))
	fmt.Fprintf(w, "Deviation from test tone: %s Hz\n", formatFrequencyDeviation(summary.Final.FrequencyHz, testFrequencyHz))

	hz := mains.Frequency()
	fmt.Fprintln(w, reportNoteStyle.Render(fmt.Sprintf("local mains frequency assumed %d Hz for hum-correlation diagnostics", hz)))

	if opts.IncludeSpectrum {
		writeSpectrumSection(w, summary, testFrequencyHz)
	}
	if opts.IncludeTips {
		writeTipsSection(w, summary, testFrequencyHz)
	}

	return nil
}

func writeSpectrumSection(w io.Writer, summary *processor.Summary, testFrequencyHz float64) {
	if len(summary.ErrorHistory) < 4 || testFrequencyHz == 0 {
		return
	}
	peaks := spectrum.Analyze(summary.ErrorHistory, 2*testFrequencyHz, 5)
	if len(peaks) == 0 {
		return
	}
	fmt.Fprintln(w, reportHeadingStyle.Render("Weighted-error spectrum (diagnostic only)"))
	for _, p := range peaks {
		fmt.Fprintf(w, "  %8.2f Hz  magnitude %.4f\n", p.FrequencyHz, p.Magnitude)
	}
}

func writeTipsSection(w io.Writer, summary *processor.Summary, testFrequencyHz float64) {
	tips := GenerateTips(summary, testFrequencyHz)
	if len(tips) == 0 {
		return
	}
	fmt.Fprintln(w, reportHeadingStyle.Render("Tips"))
	for _, tip := range tips {
		fmt.Fprintf(w, "  - %s\n", wrapText(tip.Message, 76, "    "))
	}
}
