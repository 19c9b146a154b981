package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/skyvis/skyvis/internal/cache"
	"github.com/skyvis/skyvis/internal/site"
	"github.com/skyvis/skyvis/internal/visibility"
)

// visibilityResponse is the JSON shape of a visibility computation.
type visibilityResponse struct {
	Target     targetJSON                   `json:"target"`
	Start      time.Time                    `json:"start"`
	End        time.Time                    `json:"end"`
	IntervalM  float64                      `json:"interval_minutes"`
	Limit      float64                      `json:"airmass_limit"`
	Visibility map[string]visibility.Series `json:"visibility"`
}

type targetJSON struct {
	Name string  `json:"name,omitempty"`
	RA   float64 `json:"ra"`
	Dec  float64 `json:"dec"`
	Type string  `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// visibilityHandler serves GET /api/v1/visibility.
//
// Query parameters: ra, dec (degrees, required), type (default SIDEREAL),
// start, end (RFC3339, default [now, now+window]), interval (minutes,
// default 10), airmass_limit (default 10).
func (s *Server) visibilityHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ra, err := strconv.ParseFloat(q.Get("ra"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ra must be a number in degrees")
		return
	}
	dec, err := strconv.ParseFloat(q.Get("dec"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "dec must be a number in degrees")
		return
	}

	targetType := visibility.TargetSidereal
	if v := q.Get("type"); v != "" {
		targetType = visibility.TargetType(v)
	}

	now := s.clock.Now().UTC()
	start := now
	if v := q.Get("start"); v != "" {
		start, err = time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be an RFC3339 timestamp")
			return
		}
	}
	end := start.Add(s.config.DefaultWindow)
	if v := q.Get("end"); v != "" {
		end, err = time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be an RFC3339 timestamp")
			return
		}
	}

	interval := s.config.DefaultInterval
	if v := q.Get("interval"); v != "" {
		minutes, err := strconv.ParseFloat(v, 64)
		if err != nil || minutes <= 0 {
			writeError(w, http.StatusBadRequest, "interval must be a positive number of minutes")
			return
		}
		interval = time.Duration(minutes * float64(time.Minute))
	}

	limit := visibility.DefaultAirmassLimit
	if v := q.Get("airmass_limit"); v != "" {
		limit, err = strconv.ParseFloat(v, 64)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "airmass_limit must be a positive number")
			return
		}
	}

	target := visibility.Target{
		Name: q.Get("name"),
		RA:   ra,
		Dec:  dec,
		Type: targetType,
	}

	key := cache.NewKey(target, start, end, interval, limit)
	result, ok := s.results.Get(key)
	if !ok {
		result, err = s.engine.Visibility(r.Context(), target, start, end, interval, limit)
		if err != nil {
			switch {
			case errors.Is(err, visibility.ErrInvalidTimeRange),
				errors.Is(err, visibility.ErrInvalidInterval):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				s.logger.Error("visibility computation failed", "error", err)
				writeError(w, http.StatusInternalServerError, "visibility computation failed")
			}
			return
		}
		s.results.Put(key, result)
	}

	writeJSON(w, http.StatusOK, visibilityResponse{
		Target: targetJSON{
			Name: target.Name,
			RA:   target.RA,
			Dec:  target.Dec,
			Type: string(target.Type),
		},
		Start:      start.UTC(),
		End:        end.UTC(),
		IntervalM:  interval.Minutes(),
		Limit:      limit,
		Visibility: result,
	})
}

// facilityJSON is the JSON shape of one configured facility.
type facilityJSON struct {
	Name  string      `json:"name"`
	Sites []site.Site `json:"sites,omitempty"`
	Error string      `json:"error,omitempty"`
}

// facilitiesHandler serves GET /api/v1/facilities: the configured registry
// with each facility's sites, or the lookup error for unavailable ones.
func (s *Server) facilitiesHandler(w http.ResponseWriter, r *http.Request) {
	facilities := s.registry.Facilities()
	out := make([]facilityJSON, 0, len(facilities))
	for _, f := range facilities {
		fj := facilityJSON{Name: f.Name()}
		sites, err := f.Sites()
		if err != nil {
			fj.Error = err.Error()
		} else {
			fj.Sites = sites
		}
		out = append(out, fj)
	}
	writeJSON(w, http.StatusOK, map[string]any{"facilities": out})
}
