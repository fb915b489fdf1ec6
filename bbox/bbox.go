package bbox

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type BoundingBox struct {
	MinLongitude float64
	MaxLongitude float64
	MinLatitude  float64
	MaxLatitude  float64
}

var earthCircumference float64 = 40075000

// String uses the bboxfinder.com ordering: minLon,minLat,maxLon,maxLat.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%v,%v,%v,%v", b.MinLongitude, b.MinLatitude, b.MaxLongitude, b.MaxLatitude)
}

// NewBoundingBox returns the box covering radius meters around a point.
func NewBoundingBox(latitude float64, longitude float64, radius float64) BoundingBox {
	dY := (360 * radius) / earthCircumference
	dX := dY * math.Cos(rad(latitude))

	return BoundingBox{
		MinLongitude: longitude - dX,
		MaxLongitude: longitude + dX,
		MinLatitude:  latitude - dY,
		MaxLatitude:  latitude + dY,
	}
}

func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if other.MinLongitude < b.MinLongitude {
		b.MinLongitude = other.MinLongitude
	}
	if other.MaxLongitude > b.MaxLongitude {
		b.MaxLongitude = other.MaxLongitude
	}
	if other.MinLatitude < b.MinLatitude {
		b.MinLatitude = other.MinLatitude
	}
	if other.MaxLatitude > b.MaxLatitude {
		b.MaxLatitude = other.MaxLatitude
	}

	return b
}

func (b BoundingBox) Contains(longitude float64, latitude float64) bool {
	return longitude >= b.MinLongitude && longitude <= b.MaxLongitude &&
		latitude >= b.MinLatitude && latitude <= b.MaxLatitude
}

func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLongitude, b.MinLatitude},
		Max: orb.Point{b.MaxLongitude, b.MaxLatitude},
	}
}

// Feature renders the box as a GeoJSON Polygon feature with the extrema as properties.
func (b BoundingBox) Feature() *geojson.Feature {
	f := geojson.NewFeature(b.Bound().ToPolygon())
	f.BBox = geojson.NewBBox(b.Bound())
	f.Properties["min_lon"] = b.MinLongitude
	f.Properties["max_lon"] = b.MaxLongitude
	f.Properties["min_lat"] = b.MinLatitude
	f.Properties["max_lat"] = b.MaxLatitude

	return f
}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}
