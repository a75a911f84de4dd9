// Package geo renders pragmatic solutions as GeoJSON so generic map front
// ends can display them.
package geo

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"vrpsolve/internal/model"
)

// tourPalette colors tours so adjacent routes are distinguishable on a
// map. Cycled when a solution has more tours than colors.
var tourPalette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#008080",
}

// FeatureCollection converts a solution into a GeoJSON feature collection:
// a LineString per tour and a Point per stop, with rendering hints in the
// simplestyle properties (marker-color, stroke).
func FeatureCollection(s *model.Solution) (*geojson.FeatureCollection, error) {
	if s == nil || len(s.Tours) == 0 {
		return nil, fmt.Errorf("solution has no tours")
	}
	fc := geojson.NewFeatureCollection()
	for ti, tour := range s.Tours {
		color := tourPalette[ti%len(tourPalette)]
		line := make(orb.LineString, 0, len(tour.Stops))
		for si, stop := range tour.Stops {
			pt := orb.Point{stop.Location.Lng, stop.Location.Lat}
			line = append(line, pt)
			f := geojson.NewFeature(pt)
			f.Properties["vehicleId"] = tour.VehicleID
			f.Properties["tourIdx"] = ti
			f.Properties["stopIdx"] = si
			f.Properties["jobIds"] = jobIDs(stop)
			f.Properties["activityTypes"] = activityTypes(stop)
			f.Properties["arrival"] = stop.Time.Arrival
			f.Properties["departure"] = stop.Time.Departure
			f.Properties["distance"] = stop.Distance
			f.Properties["load"] = stop.Load
			f.Properties["marker-color"] = color
			fc.Append(f)
		}
		lf := geojson.NewFeature(line)
		lf.Properties["vehicleId"] = tour.VehicleID
		lf.Properties["shiftIndex"] = tour.ShiftIndex
		lf.Properties["stops"] = len(tour.Stops)
		lf.Properties["distance"] = tour.Statistic.Distance
		lf.Properties["stroke"] = color
		lf.Properties["stroke-width"] = 4
		fc.Append(lf)
	}
	return fc, nil
}

// Write writes the solution as GeoJSON.
func Write(w io.Writer, s *model.Solution) error {
	fc, err := FeatureCollection(s)
	if err != nil {
		return err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func jobIDs(stop model.Stop) []string {
	out := make([]string, 0, len(stop.Activities))
	for _, a := range stop.Activities {
		out = append(out, a.JobID)
	}
	return out
}

func activityTypes(stop model.Stop) []string {
	out := make([]string, 0, len(stop.Activities))
	for _, a := range stop.Activities {
		out = append(out, a.Type)
	}
	return out
}
