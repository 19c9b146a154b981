package transform

import "math"

// Airmass returns the relative atmospheric path length for a target at the
// given altitude (degrees above the horizon), approximated as the secant of
// the zenith angle. The plane-parallel approximation is accurate for zenith
// angles below roughly 75°; near and below the horizon the secant diverges
// and turns negative, and callers are expected to discard those samples.
func Airmass(altitudeDeg float64) float64 {
	zenith := (90.0 - altitudeDeg) * degToRad
	return 1.0 / math.Cos(zenith)
}
