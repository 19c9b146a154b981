// Package site models observing facilities and their ground sites, and holds
// the typed registry the visibility engine queries. Facilities are registered
// once at process start from explicit configuration; there is no dynamic
// name-based resolution.
package site

// Location is a site's geographic position. Latitude and longitude in
// degrees (east positive), elevation in meters.
type Location struct {
	Latitude  float64 `mapstructure:"latitude" json:"latitude"`
	Longitude float64 `mapstructure:"longitude" json:"longitude"`
	Elevation float64 `mapstructure:"elevation" json:"elevation"`
}

// Site is one observing site belonging to a facility.
type Site struct {
	Name     string   `mapstructure:"name" json:"name"`
	Location Location `mapstructure:",squash" json:"location"`
}

// Facility supplies the observing sites of one configured facility.
// Sites may fail for facilities backed by remote services; the engine treats
// such a failure as "skip this facility", never as a fatal error.
type Facility interface {
	Name() string
	Sites() ([]Site, error)
}

// StaticFacility is a Facility with a fixed site list, built from
// configuration.
type StaticFacility struct {
	name  string
	sites []Site
}

// NewStaticFacility creates a facility with the given name and sites.
func NewStaticFacility(name string, sites ...Site) *StaticFacility {
	return &StaticFacility{
		name:  name,
		sites: append([]Site(nil), sites...),
	}
}

// Name returns the facility name.
func (f *StaticFacility) Name() string {
	return f.name
}

// Sites returns a copy of the facility's site list. Never fails.
func (f *StaticFacility) Sites() ([]Site, error) {
	return append([]Site(nil), f.sites...), nil
}
