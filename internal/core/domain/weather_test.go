package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLocation_Display verifies the display string degrades gracefully
// when only part of the location is known, as with coordinate-only
// weather queries.
func TestLocation_Display(t *testing.T) {
	tests := []struct {
		name     string
		location Location
		expected string
	}{
		{
			name:     "city and country",
			location: Location{City: "Cairo", Country: "Egypt"},
			expected: "Cairo, Egypt",
		},
		{
			name:     "city only",
			location: Location{City: "Cairo"},
			expected: "Cairo",
		},
		{
			name:     "country only",
			location: Location{Country: "Egypt"},
			expected: "Egypt",
		},
		{
			name:     "coordinates only",
			location: Location{Lat: 51.5074, Lon: -0.1278},
			expected: "51.51, -0.13",
		},
		{
			name:     "nothing known",
			location: Location{},
			expected: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.location.Display())
		})
	}
}
