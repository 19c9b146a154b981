// Command diag computes a visibility curve from the command line, for checking
// a deployment's facility configuration and the engine itself without going
// through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/skyvis/skyvis/internal/site"
	"github.com/skyvis/skyvis/internal/transform"
	"github.com/skyvis/skyvis/internal/visibility"
)

func main() {
	var (
		ra       = flag.Float64("ra", 0, "target right ascension (ICRS degrees)")
		dec      = flag.Float64("dec", 0, "target declination (ICRS degrees)")
		startStr = flag.String("start", "", "window start (RFC3339, default now)")
		hours    = flag.Float64("hours", 24, "window length in hours")
		interval = flag.Float64("interval", 10, "sampling interval in minutes")
		limit    = flag.Float64("limit", 10, "airmass limit")
		lat      = flag.Float64("lat", -31.272, "site latitude (degrees)")
		lon      = flag.Float64("lon", 149.07, "site longitude (degrees east)")
		elev     = flag.Float64("elev", 1116, "site elevation (meters)")
		name     = flag.String("site", "Siding Spring", "site name")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	start := time.Now().UTC()
	if *startStr != "" {
		var err error
		start, err = time.Parse(time.RFC3339, *startStr)
		if err != nil {
			fmt.Println("ERROR parsing -start:", err)
			os.Exit(1)
		}
	}
	end := start.Add(time.Duration(*hours * float64(time.Hour)))

	registry := site.NewRegistry()
	registry.Register(site.NewStaticFacility("Diag", site.Site{
		Name:     *name,
		Location: site.Location{Latitude: *lat, Longitude: *lon, Elevation: *elev},
	}))

	engine := visibility.NewEngine(registry, logger, 0)
	target := visibility.Target{Name: "diag target", RA: *ra, Dec: *dec, Type: visibility.TargetSidereal}

	fmt.Printf("Target RA=%.4f Dec=%.4f, window %s .. %s, interval %.0fm, limit %.1f\n",
		*ra, *dec, start.Format(time.RFC3339), end.Format(time.RFC3339), *interval, *limit)

	result, err := engine.Visibility(context.Background(), target, start, end,
		time.Duration(*interval*float64(time.Minute)), *limit)
	if err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}

	if len(result) == 0 {
		fmt.Println("No visibility in this window.")
		return
	}

	labels := make([]string, 0, len(result))
	for label := range result {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		series := result[label]
		best := series.Airmass[0]
		bestAt := series.Times[0]
		for i, x := range series.Airmass {
			if x < best {
				best = x
				bestAt = series.Times[i]
			}
		}
		fmt.Printf("  %s: %d samples, best airmass %.4f at %s (MJD %.5f)\n",
			label, len(series.Times), best, bestAt.Format(time.RFC3339), transform.MJD(bestAt))
	}
}
