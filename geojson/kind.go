package geojson

// Kind is the closed set of geometry types the extractor understands.
type Kind int

const (
	Unknown Kind = iota
	Point
	LineString
	MultiPoint
	Polygon
	MultiLineString
	MultiPolygon
	GeometryCollection
)

var kindNames = map[string]Kind{
	"Point":              Point,
	"LineString":         LineString,
	"MultiPoint":         MultiPoint,
	"Polygon":            Polygon,
	"MultiLineString":    MultiLineString,
	"MultiPolygon":       MultiPolygon,
	"GeometryCollection": GeometryCollection,
}

// ParseKind maps a GeoJSON "type" member to a Kind. Anything unrecognized,
// including a non-string value, is Unknown.
func ParseKind(v interface{}) Kind {
	name, ok := v.(string)
	if !ok {
		return Unknown
	}

	return kindNames[name]
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}

	return "Unknown"
}

// depth is the number of sequence levels wrapping each coordinate pair.
func (k Kind) depth() int {
	switch k {
	case Point:
		return 0
	case LineString, MultiPoint:
		return 1
	case Polygon, MultiLineString:
		return 2
	case MultiPolygon:
		return 3
	}

	return -1
}
