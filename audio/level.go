package audio

import "math"

// RMS is the root mean square of x, 0 for an empty slice.
func RMS(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

// DBToAmplitude converts decibels relative to full scale into a linear level.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// AmplitudeToDB converts a linear level into decibels, -Inf for zero.
func AmplitudeToDB(a float64) float64 {
	return 20 * math.Log10(a)
}

// Clamp limits every sample to [-1, 1] in place.
func Clamp(x []float32) {
	for i, v := range x {
		switch {
		case v > 1:
			x[i] = 1
		case v < -1:
			x[i] = -1
		}
	}
}
