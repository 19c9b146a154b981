// Package visibility computes time-resolved airmass curves for sidereal
// targets across all configured observing sites.
package visibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/skyvis/skyvis/internal/metrics"
	"github.com/skyvis/skyvis/internal/site"
	"github.com/skyvis/skyvis/internal/timegrid"
	"github.com/skyvis/skyvis/internal/transform"
)

// ErrInvalidTimeRange reports a window whose start does not precede its end.
var ErrInvalidTimeRange = errors.New("start must be before end")

// ErrInvalidInterval reports a non-positive sampling interval.
var ErrInvalidInterval = errors.New("interval must be positive")

// DefaultAirmassLimit is used when the caller does not supply a limit.
const DefaultAirmassLimit = 10.0

// twilightAltitudeDeg is the solar altitude of astronomical twilight.
// Samples with the Sun above this are daytime and excluded.
const twilightAltitudeDeg = -18.0

// Series is one site's airmass curve: parallel, chronologically ordered
// timestamp and airmass slices of equal length.
type Series struct {
	Times   []time.Time `json:"times"`
	Airmass []float64   `json:"airmass"`
}

// Result maps a site label, "(facility_name) site_name", to its airmass
// series. Sites with no qualifying samples are absent. A Result is built
// fresh per call and never mutated after return.
type Result map[string]Series

// Engine computes visibility across the facilities of a site registry.
type Engine struct {
	registry *site.Registry
	logger   *slog.Logger
	workers  int
}

// NewEngine creates a visibility engine. workers bounds the number of sites
// evaluated concurrently; values below 1 fall back to runtime.NumCPU().
func NewEngine(registry *site.Registry, logger *slog.Logger, workers int) *Engine {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		registry: registry,
		logger:   logger,
		workers:  workers,
	}
}

// siteJob is one (facility, site) pair to evaluate.
type siteJob struct {
	label string
	site  site.Site
}

// Visibility computes the airmass curve of target at every configured site
// over [start, end] sampled at interval, keeping only samples at or below
// airmassLimit that fall in astronomical night. A non-positive airmassLimit
// selects DefaultAirmassLimit.
//
// A non-SIDEREAL target yields an empty result, not an error. A facility
// whose site list cannot be obtained is skipped and the computation proceeds
// for the remaining facilities.
func (e *Engine) Visibility(ctx context.Context, target Target, start, end time.Time, interval time.Duration, airmassLimit float64) (Result, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w (start=%s end=%s)",
			ErrInvalidTimeRange, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w (interval=%s)", ErrInvalidInterval, interval)
	}

	if target.Type != TargetSidereal {
		e.logger.Info("airmass computation is only supported for sidereal targets",
			"target", target.Name,
			"type", string(target.Type),
		)
		return Result{}, nil
	}

	if airmassLimit <= 0 {
		airmassLimit = DefaultAirmassLimit
	}

	computeStart := time.Now()
	sunCtx, grid := timegrid.Build(start, end, interval)

	// Resolve the site list up front so the result can be assembled in a
	// deterministic order. Facilities that fail to enumerate are skipped.
	var jobs []siteJob
	for _, facility := range e.registry.Facilities() {
		sites, err := facility.Sites()
		if err != nil {
			metrics.IncSitesSkipped()
			e.logger.Warn("facility site lookup failed, skipping",
				"facility", facility.Name(),
				"error", err,
			)
			continue
		}
		for _, s := range sites {
			jobs = append(jobs, siteJob{
				label: fmt.Sprintf("(%s) %s", facility.Name(), s.Name),
				site:  s,
			})
		}
	}

	// Airmass evaluation is a pure function of (site, timestamp), so sites
	// are evaluated concurrently, bounded by a semaphore. Results land in a
	// slice indexed by job so assembly stays deterministic.
	series := make([]Series, len(jobs))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job siteJob) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			series[idx] = e.evaluateSite(target, job.site, grid, sunCtx, airmassLimit)
		}(i, job)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make(Result)
	samples := 0
	for i, job := range jobs {
		if len(series[i].Times) == 0 {
			continue
		}
		result[job.label] = series[i]
		samples += len(series[i].Times)
	}

	metrics.RecordVisibility(time.Since(computeStart), samples)
	e.logger.Debug("visibility computed",
		"target", target.Name,
		"sites_evaluated", len(jobs),
		"sites_with_data", len(result),
		"samples", samples,
		"grid_points", len(grid),
	)

	return result, nil
}

// evaluateSite computes the filtered airmass series for one site over the
// grid. Retained samples satisfy 1 < airmass <= limit with the Sun at or
// below astronomical twilight, in original chronological order.
func (e *Engine) evaluateSite(target Target, s site.Site, grid []time.Time, sunCtx timegrid.SunContext, limit float64) Series {
	obs := transform.Observer{
		LatDeg: s.Location.Latitude,
		LonDeg: s.Location.Longitude,
		ElevM:  s.Location.Elevation,
	}

	var out Series
	for i, t := range grid {
		horiz := transform.AltAzICRS(target.RA, target.Dec, obs, t)
		airmass := transform.Airmass(horiz.AltitudeDeg)
		if airmass <= 1 || airmass > limit {
			continue
		}

		sun := sunCtx.At(i)
		sunHoriz := transform.AltAzApparent(sun.RADeg, sun.DecDeg, obs, t)
		if sunHoriz.AltitudeDeg > twilightAltitudeDeg {
			continue
		}

		out.Times = append(out.Times, t)
		out.Airmass = append(out.Airmass, airmass)
	}
	return out
}
