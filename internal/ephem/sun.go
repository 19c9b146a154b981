// Package ephem supplies the solar ephemeris used to frame nighttime
// observing windows. The series is the low-accuracy solar theory from Meeus
// "Astronomical Algorithms" Ch. 25, good to about 0.01° — more than enough
// for day/night classification and for anchoring visibility calculations.
package ephem

import (
	"math"
	"time"

	"github.com/skyvis/skyvis/internal/transform"
)

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Position is an apparent-of-date equatorial position of the Sun.
type Position struct {
	Time   time.Time
	RADeg  float64
	DecDeg float64
}

// Sun returns the Sun's apparent right ascension and declination (degrees,
// equinox of date) at the given time. Pure function of its input.
func Sun(t time.Time) Position {
	T := (transform.JulianDate(t) - 2451545.0) / 36525.0

	// Geometric mean longitude and mean anomaly.
	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T
	M := (357.52911 + 35999.05029*T - 0.0001537*T*T) * degToRad

	// Equation of center.
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(M) +
		(0.019993-0.000101*T)*math.Sin(2*M) +
		0.000289*math.Sin(3*M)

	trueLon := L0 + C

	// Apparent longitude: correct for nutation and aberration.
	omega := (125.04 - 1934.136*T) * degToRad
	lambda := (trueLon - 0.00569 - 0.00478*math.Sin(omega)) * degToRad

	// Obliquity, corrected for the same nutation term.
	eps := (23.439291111 - 0.013004167*T - 0.000000164*T*T + 0.000000504*T*T*T +
		0.00256*math.Cos(omega)) * degToRad

	sinLambda := math.Sin(lambda)
	ra := math.Atan2(math.Cos(eps)*sinLambda, math.Cos(lambda))
	if ra < 0 {
		ra += 2 * math.Pi
	}
	dec := math.Asin(math.Sin(eps) * sinLambda)

	return Position{
		Time:   t,
		RADeg:  ra * radToDeg,
		DecDeg: dec * radToDeg,
	}
}
