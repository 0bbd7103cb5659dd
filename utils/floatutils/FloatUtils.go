// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// Argmax returns the index of the first maximum value in a slice. It
// returns -1 for an empty slice.
func Argmax(values []float64) int {
	if len(values) == 0 {
		return -1
	}

	max := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[max] {
			max = i
		}
	}
	return max
}

// ArgmaxOver returns the element of indices whose value is the first
// maximum. It returns -1 if indices is empty.
func ArgmaxOver(values []float64, indices []int) int {
	if len(indices) == 0 {
		return -1
	}

	max := indices[0]
	for _, i := range indices[1:] {
		if values[i] > values[max] {
			max = i
		}
	}
	return max
}

// Max calculates and returns the maximum float64 in a list
func Max(floats ...float64) float64 {
	max := floats[0]
	for _, val := range floats {
		if val > max {
			max = val
		}
	}
	return max
}
