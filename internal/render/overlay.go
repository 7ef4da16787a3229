package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// boundariesGeoJSON is a coarse set of state borders and coastline for the
// default Gulf-coast bounding box. It stands in for a full cartographic
// dataset; point a BOUNDARIES_PATH GeoJSON at the renderer for more detail.
//
//go:embed boundaries.geojson
var boundariesGeoJSON []byte

// polyline is a sequence of lon/lat vertices drawn as connected segments.
type polyline [][2]float64

// EmbeddedBoundaries parses the built-in boundary set.
func EmbeddedBoundaries() ([]polyline, error) {
	return parseBoundaries(boundariesGeoJSON)
}

// LoadBoundaries reads boundary polylines from a GeoJSON file. LineString,
// MultiLineString, Polygon, and MultiPolygon geometries are supported; other
// geometry types are skipped.
func LoadBoundaries(path string) ([]polyline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	lines, err := parseBoundaries(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries %s: %w", path, err)
	}
	return lines, nil
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func parseBoundaries(data []byte) ([]polyline, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}

	var lines []polyline
	for _, f := range fc.Features {
		got, err := f.Geometry.polylines()
		if err != nil {
			return nil, err
		}
		lines = append(lines, got...)
	}
	return lines, nil
}

func (g *geometry) polylines() ([]polyline, error) {
	switch g.Type {
	case "LineString":
		var line polyline
		if err := json.Unmarshal(g.Coordinates, &line); err != nil {
			return nil, err
		}
		return []polyline{line}, nil

	case "MultiLineString", "Polygon":
		// A polygon's rings draw the same way as line strings.
		var multi []polyline
		if err := json.Unmarshal(g.Coordinates, &multi); err != nil {
			return nil, err
		}
		return multi, nil

	case "MultiPolygon":
		var polys [][]polyline
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, err
		}
		var lines []polyline
		for _, rings := range polys {
			lines = append(lines, rings...)
		}
		return lines, nil

	default:
		return nil, nil
	}
}
