// Package spectrum computes a diagnostic frequency-domain view of the
// weighted-error sequence retained by wfmeter.Session.ErrorHistory. It is
// purely informational: nothing here feeds back into the measurement core.
package spectrum

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Peak is one bin of the magnitude spectrum: its frequency and magnitude.
type Peak struct {
	FrequencyHz float64
	Magnitude   float64
}

// Analyze computes the magnitude spectrum of errs (a weighted-error
// history sampled at one value per zero-crossing) and returns the n bins
// of largest magnitude, sorted descending. Bins are not reduced to local
// maxima, so neighbouring bins of one broad peak can each appear. The DC
// bin is skipped. crossingRateHz is the average
// rate at which errs was sampled (roughly 2x the test tone frequency),
// used to convert FFT bins back to an approximate Hz scale.
func Analyze(errs []float64, crossingRateHz float64, n int) []Peak {
	if len(errs) < 4 {
		return nil
	}

	fft := fourier.NewFFT(len(errs))
	coeffs := fft.Coefficients(nil, errs)

	binHz := crossingRateHz / float64(len(errs))
	peaks := make([]Peak, 0, len(coeffs)/2)
	for i := 1; i < len(coeffs)/2; i++ {
		mag := abs(coeffs[i])
		peaks = append(peaks, Peak{FrequencyHz: float64(i) * binHz, Magnitude: mag})
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Magnitude > peaks[j].Magnitude })
	if n > 0 && len(peaks) > n {
		peaks = peaks[:n]
	}
	return peaks
}

func abs(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}
