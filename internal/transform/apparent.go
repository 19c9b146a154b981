package transform

import (
	"math"
	"time"
)

// meanObliquity returns the mean obliquity of the ecliptic in radians for the
// given Julian centuries from J2000.0 (Meeus Eq 22.2).
func meanObliquity(T float64) float64 {
	// 23°26'21.448" expressed in arcseconds, plus the polynomial drift.
	eps := 84381.448 - 46.8150*T - 0.00059*T*T + 0.001813*T*T*T
	return eps * arcsecToRad
}

// nutation returns nutation in longitude (Δψ) and obliquity (Δε) in radians
// for the given Julian centuries from J2000.0.
//
// Truncated series keeping the four dominant terms of the IAU 1980 theory
// (Meeus Ch. 22). Accurate to ~0.5 arcseconds, which is far below the
// airmass precision this engine targets.
func nutation(T float64) (dpsi, deps float64) {
	// Longitude of the ascending node of the Moon's mean orbit.
	omega := (125.04452 - 1934.136261*T) * degToRad
	// Mean longitudes of the Sun and the Moon.
	ls := (280.4665 + 36000.7698*T) * degToRad
	lm := (218.3165 + 481267.8813*T) * degToRad

	dpsi = (-17.20*math.Sin(omega) - 1.32*math.Sin(2*ls) -
		0.23*math.Sin(2*lm) + 0.21*math.Sin(2*omega)) * arcsecToRad
	deps = (9.20*math.Cos(omega) + 0.57*math.Cos(2*ls) +
		0.10*math.Cos(2*lm) - 0.09*math.Cos(2*omega)) * arcsecToRad
	return dpsi, deps
}

// precessFromJ2000 precesses J2000.0 equatorial coordinates (radians) to the
// mean equinox of date using the IAU 1976 precession angles ζ, z, θ
// (Meeus Eq 21.2, 21.4).
func precessFromJ2000(ra, dec, T float64) (float64, float64) {
	zeta := (2306.2181*T + 0.30188*T*T + 0.017998*T*T*T) * arcsecToRad
	z := (2306.2181*T + 1.09468*T*T + 0.018203*T*T*T) * arcsecToRad
	theta := (2004.3109*T - 0.42665*T*T - 0.041833*T*T*T) * arcsecToRad

	sinDec := math.Sin(dec)
	cosDec := math.Cos(dec)
	sinTheta := math.Sin(theta)
	cosTheta := math.Cos(theta)

	A := cosDec * math.Sin(ra+zeta)
	B := cosTheta*cosDec*math.Cos(ra+zeta) - sinTheta*sinDec
	C := sinTheta*cosDec*math.Cos(ra+zeta) + cosTheta*sinDec

	raOut := math.Atan2(A, B) + z
	decOut := math.Asin(C)
	return normalizeRadians(raOut), decOut
}

// aberrationConstant is the constant of annual aberration κ in arcseconds.
const aberrationConstant = 20.49552

// solarOrbit returns the Sun's true geometric longitude, the eccentricity of
// Earth's orbit, and the longitude of perihelion (radians / dimensionless) for
// the aberration correction (Meeus Ch. 25).
func solarOrbit(T float64) (trueLon, ecc, perihelion float64) {
	L0 := (280.46646 + 36000.76983*T + 0.0003032*T*T) * degToRad
	M := (357.52911 + 35999.05029*T - 0.0001537*T*T) * degToRad
	C := ((1.914602-0.004817*T-0.000014*T*T)*math.Sin(M) +
		(0.019993-0.000101*T)*math.Sin(2*M) +
		0.000289*math.Sin(3*M)) * degToRad

	trueLon = normalizeRadians(L0 + C)
	ecc = 0.016708634 - 0.000042037*T
	perihelion = (102.93735 + 1.71946*T) * degToRad
	return trueLon, ecc, perihelion
}

// ApparentEquatorial reduces ICRS/J2000 catalog coordinates (degrees) to the
// apparent place of date: precession to the equinox of date, nutation, and
// annual aberration (Meeus Eq 23.1, 23.2). Proper motion and parallax are not
// modeled; the engine only handles fixed-coordinate targets.
func ApparentEquatorial(raDeg, decDeg float64, t time.Time) (float64, float64) {
	T := julianCenturies(JulianDate(t))

	ra, dec := precessFromJ2000(raDeg*degToRad, decDeg*degToRad, T)

	dpsi, deps := nutation(T)
	eps := meanObliquity(T)

	sinRA := math.Sin(ra)
	cosRA := math.Cos(ra)
	sinDec := math.Sin(dec)
	cosDec := math.Cos(dec)
	tanDec := sinDec / cosDec
	sinEps := math.Sin(eps)
	cosEps := math.Cos(eps)

	// Nutation in right ascension and declination.
	dRA := (cosEps+sinEps*sinRA*tanDec)*dpsi - cosRA*tanDec*deps
	dDec := sinEps*cosRA*dpsi + sinRA*deps

	// Annual aberration.
	sunLon, ecc, peri := solarOrbit(T)
	kappa := aberrationConstant * arcsecToRad
	sinSun := math.Sin(sunLon)
	cosSun := math.Cos(sunLon)
	sinPeri := math.Sin(peri)
	cosPeri := math.Cos(peri)

	tanEps := sinEps / cosEps

	dRA += -kappa*(cosRA*cosSun*cosEps+sinRA*sinSun)/cosDec +
		ecc*kappa*(cosRA*cosPeri*cosEps+sinRA*sinPeri)/cosDec
	dDec += -kappa*(cosSun*cosEps*(tanEps*cosDec-sinRA*sinDec)+cosRA*sinDec*sinSun) +
		ecc*kappa*(cosPeri*cosEps*(tanEps*cosDec-sinRA*sinDec)+cosRA*sinDec*sinPeri)

	return normalizeRadians(ra+dRA) * radToDeg, (dec + dDec) * radToDeg
}
