package kinematic

// This package includes the kinematic equations used to move the synthetic
// cursor. Distances are in playfield units and times in frames.

// Displacement returns the displacement of an object given its initial velocity, time, and acceleration.
func Displacement(initialVelocity float64, time float64, acceleration float64) float64 {
	return initialVelocity*time + 0.5*acceleration*time*time
}

// FinalVelocity returns the final velocity of an object given its initial velocity, time, and acceleration.
func FinalVelocity(initialVelocity float64, time float64, acceleration float64) float64 {
	return initialVelocity + acceleration*time
}

// EaseAcceleration returns the acceleration that covers half of distance in
// half of duration when starting from rest. Decelerating at the same rate for
// the second half brings the object to rest at distance.
func EaseAcceleration(distance float64, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return 4 * distance / (duration * duration)
}

// EasedDisplacement returns how far an eased object has moved towards
// distance after time, for a move lasting duration.
func EasedDisplacement(distance float64, duration float64, time float64) float64 {
	if time <= 0 {
		return 0
	}
	if time >= duration {
		return distance
	}
	a := EaseAcceleration(distance, duration)
	half := duration / 2
	if time <= half {
		return Displacement(0, time, a)
	}
	peak := FinalVelocity(0, half, a)
	return distance/2 + Displacement(peak, time-half, -a)
}
