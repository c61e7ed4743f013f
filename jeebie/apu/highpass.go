package apu

import "math"

// HighPassMode selects how the mixer removes the DC bias every active
// channel's DAC introduces before samples reach the ring buffer.
type HighPassMode int

const (
	// HighPassOff passes the mixed signal through unmodified, matching
	// real hardware's un-filtered analog output.
	HighPassOff HighPassMode = iota
	// HighPassAccurate applies a single-pole filter with a charge factor
	// derived from the per-sample cycle count, approximating the
	// capacitor-coupling behavior of the real output stage.
	HighPassAccurate
	// HighPassRemoveDC tracks a slowly-adapting DC baseline per channel
	// lane and subtracts it; less physically accurate but removes bias
	// introduced by channels that enable/disable mid-stream.
	HighPassRemoveDC
)

// highPassFilter is per-APU-instance state for whichever mode is active.
type highPassFilter struct {
	mode HighPassMode

	charge                 float64
	capacitorL, capacitorR float64

	dcL, dcR float64
}

const dcTrackingAlpha = 0.001

// setChargeFactor derives the accurate-mode capacitor charge factor from
// the current cycles-per-sample ratio: 0.999958^(cycles_per_sample).
func (f *highPassFilter) setChargeFactor(cyclesPerSample float64) {
	f.charge = math.Pow(0.999958, cyclesPerSample)
}

func (f *highPassFilter) apply(left, right float64) (float64, float64) {
	switch f.mode {
	case HighPassAccurate:
		outL := left - f.capacitorL
		f.capacitorL = left - outL*f.charge
		outR := right - f.capacitorR
		f.capacitorR = right - outR*f.charge
		return outL, outR
	case HighPassRemoveDC:
		f.dcL += (left - f.dcL) * dcTrackingAlpha
		f.dcR += (right - f.dcR) * dcTrackingAlpha
		return left - f.dcL, right - f.dcR
	default:
		return left, right
	}
}
