// Package timegrid builds the ordered timestamp sequence a visibility
// computation is evaluated on, together with the solar context for the window.
//
// Short windows approximate the Sun as fixed at the middle of the grid: the
// Sun drifts only ~4 minutes of right ascension per day, so re-evaluating the
// ephemeris per sample buys nothing at that scale and the single evaluation
// speeds the computation up severalfold. Long windows carry a per-sample
// moving position, since multi-day solar drift shifts the nighttime intervals
// being framed.
package timegrid

import (
	"time"

	"github.com/skyvis/skyvis/internal/ephem"
)

// Mode tags the shape of a SunContext.
type Mode int

const (
	// ModeFixed means a single solar position approximates the whole window.
	ModeFixed Mode = iota
	// ModeMoving means one solar position per grid sample.
	ModeMoving
)

// SunContext is the solar frame for a time grid: either one fixed position or
// a per-sample series, tagged by Mode.
type SunContext struct {
	Mode   Mode
	Fixed  ephem.Position   // valid when Mode == ModeFixed
	Moving []ephem.Position // parallel to the grid when Mode == ModeMoving
}

// At returns the solar position for grid index i.
func (c SunContext) At(i int) ephem.Position {
	if c.Mode == ModeFixed {
		return c.Fixed
	}
	return c.Moving[i]
}

// Build constructs the evaluation grid for [start, end] stepped by interval,
// plus its solar context. Inputs are assumed validated by the caller:
// start before end, interval positive.
//
// Short windows are end-inclusive (duration/interval + 1 samples, the last
// coinciding with end); long windows span the range end-exclusive at the same
// stride. The short/long split is the fixed-sun condition below.
func Build(start, end time.Time, interval time.Duration) (SunContext, []time.Time) {
	steps := int(end.Sub(start) / interval)
	days := end.Sub(start).Hours() / 24.0

	// Fixed-sun approximation condition: the Sun moves ~4 minutes per day,
	// so windows where that total drift is small against the sample interval
	// can share one solar position.
	fixed := days*4 < interval.Minutes()/2

	n := steps
	if fixed {
		n = steps + 1
	}
	if n < 1 {
		n = 1
	}

	grid := make([]time.Time, n)
	for i := range grid {
		grid[i] = start.Add(time.Duration(i) * interval)
	}

	if fixed {
		return SunContext{
			Mode:  ModeFixed,
			Fixed: ephem.Sun(grid[len(grid)/2]),
		}, grid
	}

	moving := make([]ephem.Position, n)
	for i, t := range grid {
		moving[i] = ephem.Sun(t)
	}
	return SunContext{
		Mode:   ModeMoving,
		Moving: moving,
	}, grid
}
