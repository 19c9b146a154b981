package timegrid

import (
	"math"
	"testing"
	"time"

	"github.com/skyvis/skyvis/internal/ephem"
	"github.com/skyvis/skyvis/internal/transform"
)

var fixtureStart = time.Date(2018, 10, 9, 13, 56, 16, 0, time.UTC)

// TestBuild_LongWindow checks the multi-day grid against reference ephemeris
// values: a 2-day window at 10-minute intervals yields 288 samples with a
// per-sample moving solar context.
func TestBuild_LongWindow(t *testing.T) {
	end := fixtureStart.Add(48 * time.Hour)
	sunCtx, grid := Build(fixtureStart, end, 10*time.Minute)

	if sunCtx.Mode != ModeMoving {
		t.Fatalf("sun context mode = %v, want ModeMoving", sunCtx.Mode)
	}
	if len(grid) != 288 {
		t.Fatalf("grid length = %d, want 288", len(grid))
	}
	if len(sunCtx.Moving) != len(grid) {
		t.Fatalf("moving sun series length = %d, want %d", len(sunCtx.Moving), len(grid))
	}

	expectedMJD := []float64{
		58400.58074074052, 58400.92796296533,
		58401.27518519014, 58401.62240741495,
		58401.96962963976, 58402.31685186457,
	}
	for i, want := range expectedMJD {
		got := transform.MJD(grid[i*50])
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("MJD at index %d = %.11f, want %.11f", i*50, got, want)
		}
	}
}

// TestBuild_ShortWindow checks the short-window grid: end-inclusive with
// count = duration/interval + 1, and a single fixed solar position.
func TestBuild_ShortWindow(t *testing.T) {
	end := fixtureStart.Add(10 * time.Hour)
	sunCtx, grid := Build(fixtureStart, end, 10*time.Minute)

	if sunCtx.Mode != ModeFixed {
		t.Fatalf("sun context mode = %v, want ModeFixed", sunCtx.Mode)
	}
	if len(grid) != 61 {
		t.Fatalf("grid length = %d, want 61", len(grid))
	}
	if !grid[0].Equal(fixtureStart) {
		t.Errorf("first sample = %v, want %v", grid[0], fixtureStart)
	}
	if !grid[len(grid)-1].Equal(end) {
		t.Errorf("last sample = %v, want window end %v", grid[len(grid)-1], end)
	}

	expectedMJD := []float64{
		58400.58074074052, 58400.71962963045,
		58400.85851852037, 58400.997407410294,
	}
	for i, want := range expectedMJD {
		got := transform.MJD(grid[i*20])
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("MJD at index %d = %.11f, want %.11f", i*20, got, want)
		}
	}
}

// TestBuild_FixedSunAtMiddleSample verifies the fixed approximation uses the
// middle grid sample, and At() returns it for every index.
func TestBuild_FixedSunAtMiddleSample(t *testing.T) {
	end := fixtureStart.Add(time.Hour)
	sunCtx, grid := Build(fixtureStart, end, 10*time.Minute)

	if len(grid) != 7 {
		t.Fatalf("grid length = %d, want 7", len(grid))
	}

	want := ephem.Sun(grid[len(grid)/2])
	for i := range grid {
		got := sunCtx.At(i)
		if got.RADeg != want.RADeg || got.DecDeg != want.DecDeg {
			t.Errorf("At(%d) = (%.6f, %.6f), want middle-sample position (%.6f, %.6f)",
				i, got.RADeg, got.DecDeg, want.RADeg, want.DecDeg)
		}
	}
}

// TestBuild_SampleSpacing verifies consecutive samples differ by exactly the
// interval, for both regimes.
func TestBuild_SampleSpacing(t *testing.T) {
	tests := []struct {
		name     string
		window   time.Duration
		interval time.Duration
	}{
		{"short", 10 * time.Hour, 10 * time.Minute},
		{"long", 48 * time.Hour, 10 * time.Minute},
		{"coarse", 6 * time.Hour, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, grid := Build(fixtureStart, fixtureStart.Add(tt.window), tt.interval)
			for i := 1; i < len(grid); i++ {
				if got := grid[i].Sub(grid[i-1]); got != tt.interval {
					t.Fatalf("spacing at %d = %v, want %v", i, got, tt.interval)
				}
			}
		})
	}
}

// TestBuild_ThresholdFollowsInterval verifies the fixed/moving split scales
// with the interval: the same multi-day window is fixed under a coarse
// interval and moving under a fine one.
func TestBuild_ThresholdFollowsInterval(t *testing.T) {
	end := fixtureStart.Add(48 * time.Hour)

	if ctx, _ := Build(fixtureStart, end, 10*time.Minute); ctx.Mode != ModeMoving {
		t.Error("2-day window at 10m interval should use the moving sun")
	}
	if ctx, _ := Build(fixtureStart, end, 24*time.Hour); ctx.Mode != ModeFixed {
		t.Error("2-day window at 24h interval should use the fixed-sun approximation")
	}
}
