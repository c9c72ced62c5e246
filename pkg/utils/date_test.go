package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountBusinessDays(t *testing.T) {
	// 2025-08-04 is a Monday, 2025-08-08 a Friday.
	mon := date(2025, time.August, 4)
	fri := date(2025, time.August, 8)
	sat := date(2025, time.August, 9)
	sun := date(2025, time.August, 10)
	nextMon := date(2025, time.August, 11)

	testCases := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{name: "same day", start: mon, end: mon, expected: 0},
		{name: "end before start", start: fri, end: mon, expected: 0},
		{name: "friday to saturday", start: fri, end: sat, expected: 0},
		{name: "friday to sunday", start: fri, end: sun, expected: 0},
		{name: "friday to monday", start: fri, end: nextMon, expected: 1},
		{name: "monday to friday", start: mon, end: fri, expected: 4},
		{name: "monday to next monday", start: mon, end: nextMon, expected: 5},
		{name: "saturday to sunday", start: sat, end: sun, expected: 0},
		{name: "saturday to monday", start: sat, end: nextMon, expected: 1},
		{name: "two full weeks", start: mon, end: date(2025, time.August, 18), expected: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CountBusinessDays(tc.start, tc.end))
		})
	}
}

func TestCountBusinessDays_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.August, 4, 23, 59, 0, 0, time.UTC)
	end := time.Date(2025, time.August, 5, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, CountBusinessDays(start, end))
}

func TestRoundRate(t *testing.T) {
	testCases := []struct {
		in       float64
		expected float64
	}{
		{49.904, 49.9},
		{49.905, 49.91}, // half rounds away from zero
		{-49.905, -49.91},
		{50.0, 50.0},
		{0.0, 0.0},
		{33.333333, 33.33},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, RoundRate(tc.in), 1e-9)
	}
}
