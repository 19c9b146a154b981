// Package transform provides the coordinate and time-scale math behind
// airmass computation: Julian dates, sidereal time, the apparent-place
// reduction of catalog coordinates, and the equatorial-to-horizontal
// transform for a ground observer.
//
// Reference: Meeus, "Astronomical Algorithms" (2nd ed.) for the apparent
// place chain; Vallado, "Fundamentals of Astrodynamics" for GMST.
package transform

import (
	"math"
	"time"
)

// j2000 is the Julian Date of the J2000.0 epoch (January 1, 2000, 12:00:00 TT).
const j2000 = 2451545.0

// mjdOffset converts Julian Date to Modified Julian Date.
const mjdOffset = 2400000.5

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
	// arcsecToRad converts arcseconds to radians.
	arcsecToRad = degToRad / 3600.0
)

// JulianDate converts a time.Time (UTC) to Julian Date.
// Uses the standard astronomical algorithm valid for dates after March 1, 4801 BC.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())
	h := float64(t.Hour())
	min := float64(t.Minute())
	s := float64(t.Second()) + float64(t.Nanosecond())/1e9

	// Adjust year/month for Jan/Feb (treat as months 13/14 of previous year).
	if m <= 2 {
		y -= 1
		m += 12
	}

	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	jd := math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + B - 1524.5
	jd += (h + min/60.0 + s/3600.0) / 24.0

	return jd
}

// MJD converts a time.Time (UTC) to Modified Julian Date (JD - 2400000.5).
func MJD(t time.Time) float64 {
	return JulianDate(t) - mjdOffset
}

// julianCenturies returns centuries of 36525 days from J2000.0 for the given JD.
func julianCenturies(jd float64) float64 {
	return (jd - j2000) / 36525.0
}

// GMST calculates Greenwich Mean Sidereal Time in radians for a given UTC time.
// Uses the IAU-82 model as described in Vallado "Fundamentals of Astrodynamics".
//
// Formula (Vallado Eq 3-47):
//
//	θ_GMST = 67310.54841 + (876600h + 8640184.812866)*T + 0.093104*T² - 6.2e-6*T³
//
// where T is Julian centuries of UT1 from J2000.0, result is in seconds of time.
func GMST(t time.Time) float64 {
	tUT1 := julianCenturies(JulianDate(t))

	// GMST in seconds of time.
	// 876600h = 876600 * 3600 = 3155760000 seconds.
	gmstSec := 67310.54841 +
		(3155760000.0+8640184.812866)*tUT1 +
		0.093104*tUT1*tUT1 -
		6.2e-6*tUT1*tUT1*tUT1

	// Normalize to [0, 86400) seconds, then convert to radians.
	gmstSec = math.Mod(gmstSec, 86400.0)
	if gmstSec < 0 {
		gmstSec += 86400.0
	}
	gmstRad := gmstSec / 86400.0 * 2.0 * math.Pi

	return gmstRad
}

// GAST calculates Greenwich Apparent Sidereal Time in radians: GMST corrected
// by the equation of the equinoxes (nutation in longitude projected onto the
// equator). The correction stays under ~1.2 seconds of time but matters when
// the result is compared against a reference ephemeris.
func GAST(t time.Time) float64 {
	T := julianCenturies(JulianDate(t))
	dpsi, _ := nutation(T)
	eps := meanObliquity(T)

	gast := GMST(t) + dpsi*math.Cos(eps)
	return normalizeRadians(gast)
}

// normalizeRadians wraps an angle to [0, 2π).
func normalizeRadians(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
