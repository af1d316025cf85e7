// Package logging renders measurement reports: a column-aligned table of
// completed windows plus free-text summary sections.
package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow represents a single row in a comparison table. Values are
// pre-formatted strings to allow for mixed formatting (decimals,
// scientific notation).
type MetricRow struct {
	Label          string   // Row label, e.g., "Window 3"
	Values         []string // One value per header column
	Unit           string   // Unit suffix, e.g., "%", "Hz", "" for unitless
	Interpretation string   // Optional interpretation text (only shown if non-empty)
}

// MetricTable formats aligned columns for a sequence of measurement rows.
// Handles variable column widths, missing values, and an optional
// interpretation column.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// String renders the table with aligned columns.
// - Labels are left-aligned
// - Numeric values are right-aligned within their column
// - Units are appended after the last value column
// - Interpretation column only shown if any row has one
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasInterpretation := false
	for _, row := range t.Rows {
		if row.Interpretation != "" {
			hasInterpretation = true
			break
		}
	}

	labelWidth := 0
	for _, row := range t.Rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) && len(val) > valueWidths[i] {
				valueWidths[i] = len(val)
			}
		}
	}

	unitWidth := 0
	for _, row := range t.Rows {
		if len(row.Unit) > unitWidth {
			unitWidth = len(row.Unit)
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
	}
	if unitWidth > 0 {
		sb.WriteString(strings.Repeat(" ", unitWidth+1))
	}
	if hasInterpretation {
		sb.WriteString("Interpretation")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))

		for i := 0; i < len(t.Headers); i++ {
			val := "-"
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}

		if unitWidth > 0 {
			sb.WriteString(fmt.Sprintf("%-*s ", unitWidth, row.Unit))
		}
		if hasInterpretation {
			sb.WriteString(row.Interpretation)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// MissingValue is the placeholder for unavailable measurements.
const MissingValue = "-"

// formatMetric formats a numeric value with appropriate precision.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}
	format := fmt.Sprintf("%%.%df", decimals)
	return fmt.Sprintf(format, value)
}

// formatMetricPercent formats a wow-and-flutter RMS or quasi-peak
// percentage value.
func formatMetricPercent(value float64, decimals int) string {
	return formatMetric(value, decimals)
}

// formatMetricHz formats a measured frequency, showing MissingValue until
// the first result has actually been published (frequency_hz == 0 before
// any 1-second boundary, per spec.md §3).
func formatMetricHz(value float64, decimals int) string {
	if value == 0 {
		return MissingValue
	}
	return formatMetric(value, decimals)
}

// formatMetricSigned formats a value with an explicit sign for positive
// values, e.g. a deviation from the test tone frequency.
func formatMetricSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	format := fmt.Sprintf("%%+.%df", decimals)
	return fmt.Sprintf(format, value)
}

// formatFrequencyDeviation reports how far the measured frequency sits from
// the test tone, showing MissingValue until a frequency has actually been
// published (mirrors formatMetricHz's unpublished guard).
func formatFrequencyDeviation(measuredHz, testFrequencyHz float64) string {
	if measuredHz == 0 {
		return MissingValue
	}
	return formatMetricSigned(measuredHz-testFrequencyHz, 2)
}

// NewWindowTable creates the standard per-window results table: one row
// per completed 10-second Process call, columns RMS%, Peak, Freq.
func NewWindowTable() *MetricTable {
	return &MetricTable{Headers: []string{"RMS%", "Peak", "Freq (Hz)"}}
}

// AddWindowRow appends one completed window's published results.
func (t *MetricTable) AddWindowRow(label string, rmsPercent, quasiPeak, frequencyHz float64) {
	t.Rows = append(t.Rows, MetricRow{
		Label: label,
		Values: []string{
			formatMetricPercent(rmsPercent, 4),
			formatMetricPercent(quasiPeak, 4),
			formatMetricHz(frequencyHz, 2),
		},
	})
}
