// Package geojson computes the longitude/latitude extent of decoded GeoJSON
// documents.
//
// Documents are the generic values produced by encoding/json (or
// structpb.Struct.AsMap): map[string]interface{}, []interface{} and float64.
// Two root shapes are recognized, a FeatureCollection holding "features" and a
// Feature-like object holding "geometry". Any other root contains no geometry.
package geojson

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/nearbyflights/geobounds/bbox"
)

var (
	// ErrNoGeometry is returned when the document holds neither "features" nor
	// a non-null "geometry".
	ErrNoGeometry = errors.New("no valid geometries found")

	// ErrNoCoordinates is returned when geometries were found but none of them
	// contributed a coordinate pair. It matches ErrNoGeometry with errors.Is.
	ErrNoCoordinates = fmt.Errorf("%w: no coordinates visited", ErrNoGeometry)

	// ErrShape is matched by every *ShapeError.
	ErrShape = errors.New("malformed geometry")
)

// ShapeError reports coordinate data whose nesting does not match the declared
// geometry type. Path locates the offending value, e.g. features[1].geometry.coordinates[0].
type ShapeError struct {
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v at %s: %s", ErrShape, e.Path, e.Reason)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

type accumulator struct {
	minLon, maxLon float64
	minLat, maxLat float64
}

func newAccumulator() accumulator {
	return accumulator{
		minLon: math.Inf(1),
		maxLon: math.Inf(-1),
		minLat: math.Inf(1),
		maxLat: math.Inf(-1),
	}
}

// add folds one pair into the extrema. NaN compares false and is never kept.
func (a *accumulator) add(lon float64, lat float64) {
	if lon < a.minLon {
		a.minLon = lon
	}
	if lon > a.maxLon {
		a.maxLon = lon
	}
	if lat < a.minLat {
		a.minLat = lat
	}
	if lat > a.maxLat {
		a.maxLat = lat
	}
}

func (a *accumulator) empty() bool {
	return math.IsInf(a.minLon, 1)
}

func (a *accumulator) box() bbox.BoundingBox {
	return bbox.BoundingBox{
		MinLongitude: a.minLon,
		MaxLongitude: a.maxLon,
		MinLatitude:  a.minLat,
		MaxLatitude:  a.maxLat,
	}
}

// Extract returns the bounding box of every coordinate pair reachable from
// document. It fails with ErrNoGeometry (or ErrNoCoordinates) when nothing
// was found, and with a *ShapeError when coordinates are nested incorrectly.
func Extract(document interface{}) (bbox.BoundingBox, error) {
	acc := newAccumulator()

	root, ok := document.(map[string]interface{})
	if !ok {
		return bbox.BoundingBox{}, ErrNoGeometry
	}

	if features, ok := root["features"]; ok {
		list, ok := features.([]interface{})
		if !ok {
			return bbox.BoundingBox{}, shapeError("features", "expected an array", features)
		}

		for i, feature := range list {
			path := "features[" + strconv.Itoa(i) + "]"

			f, ok := feature.(map[string]interface{})
			if !ok {
				return bbox.BoundingBox{}, shapeError(path, "expected an object", feature)
			}

			geometry := f["geometry"]
			if geometry == nil {
				continue
			}

			if err := visit(&acc, geometry, path+".geometry"); err != nil {
				return bbox.BoundingBox{}, err
			}
		}
	} else if geometry := root["geometry"]; geometry != nil {
		if err := visit(&acc, geometry, "geometry"); err != nil {
			return bbox.BoundingBox{}, err
		}
	} else {
		return bbox.BoundingBox{}, ErrNoGeometry
	}

	if acc.empty() {
		return bbox.BoundingBox{}, ErrNoCoordinates
	}

	return acc.box(), nil
}

func visit(acc *accumulator, geometry interface{}, path string) error {
	g, ok := geometry.(map[string]interface{})
	if !ok {
		return shapeError(path, "expected an object", geometry)
	}

	kind := ParseKind(g["type"])

	switch kind {
	case Unknown:
		return nil
	case GeometryCollection:
		members, ok := g["geometries"]
		if !ok {
			return nil
		}

		list, ok := members.([]interface{})
		if !ok {
			return shapeError(path+".geometries", "expected an array", members)
		}

		for i, member := range list {
			if err := visit(acc, member, path+".geometries["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}

		return nil
	default:
		coordinates, ok := g["coordinates"]
		if !ok {
			return nil
		}

		return walk(acc, coordinates, kind.depth(), path+".coordinates")
	}
}

// walk descends depth sequence levels and folds every pair found there.
func walk(acc *accumulator, v interface{}, depth int, path string) error {
	if depth == 0 {
		lon, lat, err := pair(v, path)
		if err != nil {
			return err
		}

		acc.add(lon, lat)

		return nil
	}

	list, ok := v.([]interface{})
	if !ok {
		return shapeError(path, "expected an array", v)
	}

	for i, child := range list {
		if err := walk(acc, child, depth-1, path+"["+strconv.Itoa(i)+"]"); err != nil {
			return err
		}
	}

	return nil
}

func pair(v interface{}, path string) (float64, float64, error) {
	p, ok := v.([]interface{})
	if !ok {
		return 0, 0, shapeError(path, "expected a coordinate pair", v)
	}

	if len(p) < 2 {
		return 0, 0, &ShapeError{Path: path, Reason: fmt.Sprintf("coordinate pair has %d element(s)", len(p))}
	}

	lon, ok := p[0].(float64)
	if !ok {
		return 0, 0, shapeError(path+"[0]", "expected a number", p[0])
	}

	lat, ok := p[1].(float64)
	if !ok {
		return 0, 0, shapeError(path+"[1]", "expected a number", p[1])
	}

	return lon, lat, nil
}

func shapeError(path string, expected string, got interface{}) *ShapeError {
	return &ShapeError{Path: path, Reason: fmt.Sprintf("%s, got %T", expected, got)}
}
