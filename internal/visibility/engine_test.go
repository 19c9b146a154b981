package visibility

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyvis/skyvis/internal/ephem"
	"github.com/skyvis/skyvis/internal/site"
	"github.com/skyvis/skyvis/internal/transform"
)

var testStart = time.Date(2018, 10, 9, 13, 56, 16, 0, time.UTC)

// sunEpoch is the reference epoch the anti-sun test target is derived from.
var sunEpoch = time.Date(2019, 10, 9, 13, 56, 0, 0, time.UTC)

var sidingSpring = site.Site{
	Name: "Siding Spring",
	Location: site.Location{
		Latitude:  -31.272,
		Longitude: 149.07,
		Elevation: 1116,
	},
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine(facilities ...site.Facility) *Engine {
	registry := site.NewRegistry()
	for _, f := range facilities {
		registry.Register(f)
	}
	return NewEngine(registry, testLogger(), 4)
}

// antiSunTarget builds a sidereal target diametrically opposite the Sun at
// the given epoch, so it culminates near local midnight in an October window.
// The anti-solar point is known in the equinox of date; the engine expects
// catalog coordinates, so the apparent-place reduction is inverted by
// fixed-point iteration (the correction is small, so this converges fast).
func antiSunTarget(mid time.Time) Target {
	sun := ephem.Sun(mid)
	raApp := math.Mod(sun.RADeg+180, 360)
	decApp := -sun.DecDeg

	ra, dec := raApp, decApp
	for i := 0; i < 5; i++ {
		gotRA, gotDec := transform.ApparentEquatorial(ra, dec, mid)
		ra += wrapDeg(raApp - gotRA)
		dec += decApp - gotDec
	}

	return Target{
		Name: "anti-sun",
		RA:   math.Mod(ra+360, 360),
		Dec:  dec,
		Type: TargetSidereal,
	}
}

// wrapDeg maps an angle difference into (-180, 180].
func wrapDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

func TestVisibility_AntiSunTarget(t *testing.T) {
	engine := testEngine(site.NewStaticFacility("Fake Facility", sidingSpring))

	end := testStart.Add(time.Hour)
	target := antiSunTarget(sunEpoch)

	result, err := engine.Visibility(context.Background(), target, testStart, end, 10*time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, result, 1)

	series, ok := result["(Fake Facility) Siding Spring"]
	require.True(t, ok, "result keyed by \"(facility) site\", got %v", keys(result))

	wantAirmass := []float64{
		1.2619096566629477,
		1.2648181328558852,
		1.2703522349950636,
		1.2785703053923894,
		1.2895601364316183,
		1.3034413026227516,
		1.3203684217446099,
	}
	require.Len(t, series.Airmass, len(wantAirmass))
	require.Len(t, series.Times, len(wantAirmass))
	for i, want := range wantAirmass {
		assert.InDelta(t, want, series.Airmass[i], 1e-3, "airmass sample %d", i)
	}

	// Samples are the full end-inclusive grid in chronological order.
	for i, ts := range series.Times {
		assert.Equal(t, testStart.Add(time.Duration(i)*10*time.Minute), ts)
	}
}

func TestVisibility_NonSiderealIsEmpty(t *testing.T) {
	engine := testEngine(site.NewStaticFacility("Fake Facility", sidingSpring))

	target := Target{Name: "rock", RA: 10, Dec: 10, Type: TargetType("Invalid Type")}
	result, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(time.Hour), 10*time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NotNil(t, result)
}

func TestVisibility_InvalidTimeRange(t *testing.T) {
	engine := testEngine(site.NewStaticFacility("Fake Facility", sidingSpring))

	start := time.Date(2018, 10, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2018, 10, 9, 0, 0, 0, 0, time.UTC)

	target := antiSunTarget(sunEpoch)
	_, err := engine.Visibility(context.Background(), target, start, end, 10*time.Minute, 10)
	require.ErrorIs(t, err, ErrInvalidTimeRange)
	assert.Contains(t, err.Error(), "start must be before end")

	_, err = engine.Visibility(context.Background(), target, start, start, 10*time.Minute, 10)
	assert.ErrorIs(t, err, ErrInvalidTimeRange, "equal start and end is invalid")
}

func TestVisibility_InvalidInterval(t *testing.T) {
	engine := testEngine(site.NewStaticFacility("Fake Facility", sidingSpring))

	target := antiSunTarget(sunEpoch)
	_, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(time.Hour), 0, 10)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestVisibility_EmptyRegistry(t *testing.T) {
	engine := testEngine()

	target := antiSunTarget(sunEpoch)
	result, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(time.Hour), 10*time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, result)
}

type brokenFacility struct{}

func (brokenFacility) Name() string { return "Broken Facility" }

func (brokenFacility) Sites() ([]site.Site, error) {
	return nil, assert.AnError
}

func TestVisibility_FailingFacilitySkipped(t *testing.T) {
	engine := testEngine(
		brokenFacility{},
		site.NewStaticFacility("Fake Facility", sidingSpring),
	)

	target := antiSunTarget(sunEpoch)
	result, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(time.Hour), 10*time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Contains(t, result, "(Fake Facility) Siding Spring")
}

func TestVisibility_AirmassLimitEnforced(t *testing.T) {
	engine := testEngine(site.NewStaticFacility("Fake Facility", sidingSpring))

	// With the fixture values peaking near 1.32, a limit of 1.27 must drop
	// the later samples while keeping the curve in order.
	target := antiSunTarget(sunEpoch)
	result, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(time.Hour), 10*time.Minute, 1.27)
	require.NoError(t, err)
	require.Contains(t, result, "(Fake Facility) Siding Spring")

	series := result["(Fake Facility) Siding Spring"]
	require.NotEmpty(t, series.Airmass)
	assert.Less(t, len(series.Airmass), 7)
	for i, a := range series.Airmass {
		assert.LessOrEqual(t, a, 1.27, "sample %d exceeds limit", i)
		assert.Greater(t, a, 1.0, "sample %d at or below unit airmass", i)
	}
}

func TestVisibility_DefaultLimit(t *testing.T) {
	engine := testEngine(site.NewStaticFacility("Fake Facility", sidingSpring))

	target := antiSunTarget(sunEpoch)
	explicit, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(time.Hour), 10*time.Minute, DefaultAirmassLimit)
	require.NoError(t, err)
	defaulted, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(time.Hour), 10*time.Minute, 0)
	require.NoError(t, err)
	assert.Equal(t, explicit, defaulted)
}

func TestVisibility_Deterministic(t *testing.T) {
	engine := testEngine(
		site.NewStaticFacility("Fake Facility", sidingSpring),
		site.NewStaticFacility("Gemini",
			site.Site{Name: "Gemini South", Location: site.Location{Latitude: -30.24, Longitude: -70.74, Elevation: 2722}},
		),
	)

	target := antiSunTarget(sunEpoch)
	first, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(24*time.Hour), 10*time.Minute, 10)
	require.NoError(t, err)
	second, err := engine.Visibility(context.Background(), target, testStart, testStart.Add(24*time.Hour), 10*time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVisibility_CancelledContext(t *testing.T) {
	engine := testEngine(site.NewStaticFacility("Fake Facility", sidingSpring))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := antiSunTarget(sunEpoch)
	_, err := engine.Visibility(ctx, target, testStart, testStart.Add(time.Hour), 10*time.Minute, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func keys(r Result) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}
