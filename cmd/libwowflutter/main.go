// Command libwowflutter builds a c-shared library exposing the
// measurement core with C linkage, matching the three operations of
// _examples/original_source/WFmeter/flutter_meter.h. This is a thin
// adapter, not part of the measurement design (spec.md §6); per spec.md
// §9 it keeps a single hidden global session to preserve the original
// ABI, guarded by a mutex since foreign callers may not respect the
// core's single-threaded contract.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/linuxmatters/wowflutter/internal/wfmeter"
)

var (
	mu      sync.Mutex
	session *wfmeter.Session
)

// wfm_init mirrors flutterMeter_init(sample_rate_hz, test_frequency_hz).
//
//export wfm_init
func wfm_init(sampleRateHz C.int, testFrequencyHz C.double) {
	mu.Lock()
	defer mu.Unlock()
	session = wfmeter.NewSession(int(sampleRateHz), float64(testFrequencyHz))
}

// wfm_process mirrors process_samples(samples, num_samples, filter_type),
// returning -1 when the buffer is too short for a 10s window and 0 on
// success, matching the reference's return-code convention.
//
//export wfm_process
func wfm_process(samples *C.int32_t, numSamples C.int, filterType C.int) C.int {
	mu.Lock()
	defer mu.Unlock()
	if session == nil {
		return -1
	}

	n := int(numSamples)
	src := unsafe.Slice((*C.int32_t)(unsafe.Pointer(samples)), n)
	buf := make([]int32, n)
	for i := 0; i < n; i++ {
		buf[i] = int32(src[i])
	}

	if err := session.Process(buf, wfmeter.FilterType(filterType)); err != nil {
		return -1
	}
	return 0
}

// wfm_get_results mirrors get_results(&peak, &rms, &freq).
//
//export wfm_get_results
func wfm_get_results(quasiPeak, rmsPercent, frequencyHz *C.double) {
	mu.Lock()
	defer mu.Unlock()
	if session == nil {
		*quasiPeak, *rmsPercent, *frequencyHz = 0, 0, 0
		return
	}
	r := session.Results()
	*quasiPeak = C.double(r.QuasiPeak)
	*rmsPercent = C.double(r.RMSPercent)
	*frequencyHz = C.double(r.FrequencyHz)
}

func main() {}
