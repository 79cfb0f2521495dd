package kinematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplacement(t *testing.T) {
	assert.InDelta(t, 0.0, Displacement(0, 0, 4), 1e-9)
	assert.InDelta(t, 8.0, Displacement(0, 2, 4), 1e-9)
	assert.InDelta(t, 15.0, Displacement(10, 2, -2.5), 1e-9)
	assert.InDelta(t, 5.0, FinalVelocity(10, 2, -2.5), 1e-9)
}

func TestEasedDisplacement(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		duration float64
		time     float64
		want     float64
	}{
		{name: "start", distance: 100, duration: 40, time: 0, want: 0},
		{name: "halfway", distance: 100, duration: 40, time: 20, want: 50},
		{name: "quarter", distance: 100, duration: 40, time: 10, want: 12.5},
		{name: "three quarters", distance: 100, duration: 40, time: 30, want: 87.5},
		{name: "end", distance: 100, duration: 40, time: 40, want: 100},
		{name: "past end", distance: -60, duration: 10, time: 15, want: -60},
		{name: "backwards", distance: -60, duration: 10, time: 5, want: -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EasedDisplacement(tt.distance, tt.duration, tt.time), 1e-9)
		})
	}
}
