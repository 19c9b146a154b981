package visibility

// TargetType classifies how a target's sky position evolves.
type TargetType string

const (
	// TargetSidereal is a target with fixed equatorial coordinates.
	TargetSidereal TargetType = "SIDEREAL"
	// TargetNonSidereal is a target requiring a time-dependent ephemeris.
	// The engine produces no visibility data for these.
	TargetNonSidereal TargetType = "NON_SIDEREAL"
)

// Target is a read-only snapshot of an astronomical target. RA and Dec are
// ICRS degrees; only SIDEREAL targets carry a usable fixed position.
type Target struct {
	Name string
	RA   float64
	Dec  float64
	Type TargetType
}
