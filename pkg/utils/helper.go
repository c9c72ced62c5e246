package utils

import "math"

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}

// RoundRate rounds a percentage to two decimal places, half away from zero.
func RoundRate(rate float64) float64 {
	return math.Round(rate*100) / 100
}
