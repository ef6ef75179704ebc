package audio

import "math"

const (
	volumeCurveExponent = 0.5
	minVolumeGain       = -10.0
)

// volumeToGain maps a linear 0..1 volume onto the base-2 exponent used by
// effects.Volume. The square-root curve keeps low settings audible.
func volumeToGain(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return minVolumeGain
	}
	if v >= 1 {
		return 0
	}
	return (1.0 - math.Pow(v, volumeCurveExponent)) * minVolumeGain
}
