// Package wfmeter implements the wow-and-flutter measurement core: a
// fixed-coefficient filter bank, sub-sample zero-crossing detection, a
// timing-error/weighting pipeline, a quasi-peak envelope, and a windowed
// RMS/peak aggregator.
package wfmeter

// biquadSection is one second-order section of a cascade, evaluated in the
// Transposed-Direct-Form-II-style recurrence shared by all five filters.
type biquadSection struct {
	a, b   float64
	negFIR bool // true: fir -= 2*buf[j]; false: fir += 2*buf[j]
}

// filterSpec is the fixed, reference-derived definition of one filter: an
// input scale factor and an ordered list of sections. All five filters in
// the bank share this single parameterized shape instead of five
// duplicated step functions.
type filterSpec struct {
	scale    float64
	sections []biquadSection
}

// The coefficient tables below are lifted verbatim, in order, from
// _examples/original_source/WFmeter/filters.c. Do not "clean up" or
// renormalize these; bit-exact reproduction of the reference depends on
// using these literals exactly as given.

var isolatorSpec = filterSpec{
	scale: 0.001207405190260069,
	sections: []biquadSection{
		{a: 0.9483625336008361, b: -1.73410899821474, negFIR: true},
		{a: 0.9533938855978508, b: -1.781298800713404, negFIR: false},
	},
}

var dinSpec = filterSpec{
	scale: 9.886712475608222e-007,
	sections: []biquadSection{
		{a: 0.9718381574433894, b: -1.971551266567659, negFIR: true},
		{a: 0.9982440100378892, b: -1.998242909436813, negFIR: false},
		{a: 0.6434545131997782, b: -1.591050960239724, negFIR: false},
		{a: 0.9997284329050403, b: -1.999728408318806, negFIR: true},
	},
}

var unweightedSpec = filterSpec{
	scale: 0.0003306520826380572,
	sections: []biquadSection{
		{a: 0.6753463035083248, b: -1.591483463373453, negFIR: true},
		{a: 0.9997682212465883, b: -1.999768186333123, negFIR: true},
		{a: 0.5771462662841257, b: -1.514102287557188, negFIR: false},
		{a: 0.9995984565721876, b: -1.999598412629212, negFIR: false},
	},
}

var wowSpec = filterSpec{
	scale: 3.386435216458736e-010,
	sections: []biquadSection{
		{a: 0.9889822559361133, b: -1.988898714745282, negFIR: true},
		{a: 0.9997639015233543, b: -1.999763863368945, negFIR: true},
		{a: 0.9849666019626395, b: -1.984903954482672, negFIR: false},
		{a: 0.9995704510105757, b: -1.999570400238568, negFIR: false},
	},
}

var flutterSpec = filterSpec{
	scale: 0.0002980764585582655,
	sections: []biquadSection{
		{a: 0.6858715731999449, b: -1.605649703918556, negFIR: true},
		{a: 0.9953215690037556, b: -1.995306892110805, negFIR: true},
		{a: 0.5910983651395704, b: -1.532453681510474, negFIR: false},
		{a: 0.9916845997627537, b: -1.991665582083071, negFIR: false},
	},
}

// cascade is the mutable runtime state for one filterSpec: a flat buffer
// of length 2*len(sections), matching the reference's buf2nd_order /
// buf_din / buf_unw / buf_wow / buf_flutter arrays.
type cascade struct {
	spec *filterSpec
	buf  []float64
}

func newCascade(spec *filterSpec) *cascade {
	return &cascade{spec: spec, buf: make([]float64, 2*len(spec.sections))}
}

func (c *cascade) reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
}

// step advances the cascade by one sample, reproducing the reference's
// shift-then-cascade recurrence: the buffer's first element is captured,
// the buffer is shifted left by one, and each section reads and overwrites
// its pair of post-shift slots in turn.
func (c *cascade) step(input float64) float64 {
	buf := c.buf
	tmp := buf[0]
	copy(buf[:len(buf)-1], buf[1:])

	val := input * c.spec.scale
	last := len(c.spec.sections) - 1
	for i, s := range c.spec.sections {
		j := 2 * i
		iir := val - s.a*tmp
		fir := tmp
		iir -= s.b * buf[j]
		if s.negFIR {
			fir -= 2 * buf[j]
		} else {
			fir += 2 * buf[j]
		}
		fir += iir

		if i < last {
			tmp = buf[j+1]
		}
		buf[j+1] = iir
		val = fir
	}
	return val
}

// FilterType selects the weighting filter applied to the timing-error
// sequence. The zero value is Unweighted, matching the reference's
// "unknown selector defaults to Unweighted" rule.
type FilterType int

const (
	FilterUnweighted FilterType = 0
	FilterDIN        FilterType = 1
	FilterWow        FilterType = 2
	FilterFlutter    FilterType = 3
)

// String implements fmt.Stringer so FilterType prints its mnemonic name
// in reports and CLI help rather than a bare integer.
func (ft FilterType) String() string {
	switch ft {
	case FilterUnweighted:
		return "unweighted"
	case FilterDIN:
		return "din"
	case FilterWow:
		return "wow"
	case FilterFlutter:
		return "flutter"
	default:
		return "unweighted"
	}
}

// filterBank owns the isolator and the four weighting cascades.
type filterBank struct {
	isolator   *cascade
	unweighted *cascade
	din        *cascade
	wow        *cascade
	flutter    *cascade
}

func newFilterBank() filterBank {
	return filterBank{
		isolator:   newCascade(&isolatorSpec),
		unweighted: newCascade(&unweightedSpec),
		din:        newCascade(&dinSpec),
		wow:        newCascade(&wowSpec),
		flutter:    newCascade(&flutterSpec),
	}
}

func (b *filterBank) reset() {
	b.isolator.reset()
	b.unweighted.reset()
	b.din.reset()
	b.wow.reset()
	b.flutter.reset()
}

// weight runs the timing-error value through the selected weighting
// filter, defaulting to Unweighted for any value outside the four known
// selectors.
func (b *filterBank) weight(ft FilterType, value float64) float64 {
	switch ft {
	case FilterDIN:
		return b.din.step(value)
	case FilterWow:
		return b.wow.step(value)
	case FilterFlutter:
		return b.flutter.step(value)
	default:
		return b.unweighted.step(value)
	}
}
