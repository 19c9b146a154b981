package transform

import (
	"math"
	"time"
)

// Observer is a ground observing site in geodetic coordinates.
// Latitude and longitude in degrees (east positive), elevation in meters.
// Elevation is carried for completeness; without refraction or parallax
// modeling it does not enter the horizontal transform.
type Observer struct {
	LatDeg, LonDeg, ElevM float64
}

// Horizontal holds a sky position in the observer's horizontal frame.
type Horizontal struct {
	AltitudeDeg float64 // 0 = horizon, 90 = zenith, negative = below horizon
	AzimuthDeg  float64 // 0 = North, measured clockwise through East
}

// AltAzApparent transforms apparent-of-date equatorial coordinates (degrees)
// to the observer's horizontal frame at time t. Use this for positions that
// are already referred to the equinox of date, such as solar ephemeris output.
func AltAzApparent(raDeg, decDeg float64, obs Observer, t time.Time) Horizontal {
	// Local apparent sidereal time, then the hour angle of the target.
	last := GAST(t) + obs.LonDeg*degToRad
	H := last - raDeg*degToRad

	lat := obs.LatDeg * degToRad
	dec := decDeg * degToRad

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	sinDec := math.Sin(dec)
	cosDec := math.Cos(dec)
	sinH := math.Sin(H)
	cosH := math.Cos(H)

	sinAlt := sinLat*sinDec + cosLat*cosDec*cosH
	alt := math.Asin(sinAlt)

	// Azimuth measured clockwise from North.
	az := math.Atan2(-cosDec*sinH, sinDec*cosLat-cosDec*sinLat*cosH)
	if az < 0 {
		az += 2 * math.Pi
	}

	return Horizontal{
		AltitudeDeg: alt * radToDeg,
		AzimuthDeg:  az * radToDeg,
	}
}

// AltAzICRS transforms ICRS/J2000 catalog coordinates (degrees) to the
// observer's horizontal frame at time t, applying the full apparent-place
// reduction first.
func AltAzICRS(raDeg, decDeg float64, obs Observer, t time.Time) Horizontal {
	appRA, appDec := ApparentEquatorial(raDeg, decDeg, t)
	return AltAzApparent(appRA, appDec, obs, t)
}
