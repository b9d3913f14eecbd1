// Package conflate matches features from an external dataset (the
// "primary" source, e.g. a USFS road dataset or a field survey export)
// against an existing OSM-style dataset (the "secondary" source),
// merging tags where a match is found and flagging genuinely new
// features for import.
package conflate

import "github.com/paulmach/orb"

// GeomType identifies which orb shape a Geometry holds.
type GeomType int

const (
	GeomPoint GeomType = iota
	GeomLineString
	GeomPolygon
)

// Geometry is a tagged union over the three shapes the matching engine
// understands. Only one of the fields matching Type is meaningful.
type Geometry struct {
	Type    GeomType
	Point   orb.Point
	Line    orb.LineString
	Polygon orb.Polygon
}

func NewPointGeometry(p orb.Point) Geometry {
	return Geometry{Type: GeomPoint, Point: p}
}

func NewLineGeometry(ls orb.LineString) Geometry {
	return Geometry{Type: GeomLineString, Line: ls}
}

func NewPolygonGeometry(p orb.Polygon) Geometry {
	return Geometry{Type: GeomPolygon, Polygon: p}
}

// Bound returns the geometry's bounding box in its native coordinate
// space (WGS84 degrees for features read from GeoJSON).
func (g Geometry) Bound() orb.Bound {
	switch g.Type {
	case GeomPoint:
		return g.Point.Bound()
	case GeomLineString:
		return g.Line.Bound()
	case GeomPolygon:
		return g.Polygon.Bound()
	default:
		return orb.Bound{}
	}
}

// Feature is one tagged geometry, the unit both the primary and
// secondary datasets are made of.
type Feature struct {
	Geometry   Geometry
	Properties map[string]string
}

// Clone returns a deep copy of the feature's tag bag; the Geometry
// value itself is copied by value (its backing slices are not mutated
// by anything in this package, so a shallow copy is safe).
func (f Feature) Clone() Feature {
	props := make(map[string]string, len(f.Properties))
	for k, v := range f.Properties {
		props[k] = v
	}
	return Feature{Geometry: f.Geometry, Properties: props}
}

// MatchKeys is the ordered set of tag keys TagComparator scores for a
// fuzzy or exact match. Order matters: it is the tie-break order used
// when more than one key scores a hit (see TagComparator).
var MatchKeys = []string{"name", "ref", "ref:usfs"}

// Config holds the tunable thresholds and knobs for one Conflate run.
// There is no YAML/flag parsing here by design — see runconfig for the
// ambient configuration layer that produces one of these.
type Config struct {
	// PointDistThreshold and LineDistThreshold are the maximum planar
	// distance in meters between a primary and secondary candidate's
	// geometry for the candidate to be considered at all. Defaults are
	// 7.0 for point-like primaries and 2.0 for linear primaries;
	// DistThresholdFor picks one by the primary's geometry type.
	PointDistThreshold float64
	LineDistThreshold  float64

	// AngleThreshold is the maximum angular deviation in degrees between
	// two line segments' local bearing before they're considered
	// geometrically divergent.
	AngleThreshold float64

	// SlopeThreshold is the maximum slope-delta in planar units before
	// two line segments are considered geometrically divergent.
	SlopeThreshold float64

	// FuzzRatioThreshold is the Levenshtein-based similarity ratio,
	// 0-100, that two match-key values must exceed (strictly) to count
	// as a tag hit.
	FuzzRatioThreshold int

	// MaxLengthDelta is the maximum absolute difference in rune length
	// between two match-key values that still counts as a hit, even
	// when FuzzRatioThreshold is met.
	MaxLengthDelta int

	// MaxCandidates bounds how many secondary candidates FeatureMatcher
	// will evaluate for a single primary feature before stopping.
	MaxCandidates int

	// Workers is the number of goroutines ParallelDispatcher fans the
	// primary slice across. Zero means runtime.NumCPU().
	Workers int

	// ReferenceLatitude is the latitude (degrees) GeometryOps.Project
	// centers its equirectangular projection on. Zero means "derive
	// from the data" (the mean latitude of the primary set).
	ReferenceLatitude float64

	// EmitUnchanged controls whether a primary whose best match merges
	// to tags identical to the secondary's (an Unchanged decision) is
	// still appended to Result.Updated, marked with a status tag. When
	// false (the default), Unchanged decisions are suppressed entirely.
	EmitUnchanged bool
}

// DefaultConfig returns the thresholds taken directly from the matching
// engine's reference behavior: 7.0m / 2.0m distance, 20 degrees angle,
// 4.0 slope, fuzz ratio 85, length delta 3, 5 candidates, Unchanged
// decisions suppressed from Updated.
func DefaultConfig() Config {
	return Config{
		PointDistThreshold: 7.0,
		LineDistThreshold:  2.0,
		AngleThreshold:     20.0,
		SlopeThreshold:     4.0,
		FuzzRatioThreshold: 85,
		MaxLengthDelta:     3,
		MaxCandidates:      5,
		Workers:            0,
		ReferenceLatitude:  0,
		EmitUnchanged:      false,
	}
}

// DistThresholdFor returns the distance threshold to use when primary
// has geometry type t: point-like features get the POI threshold,
// linear and polygon features get the road threshold.
func (c Config) DistThresholdFor(t GeomType) float64 {
	if t == GeomPoint {
		return c.PointDistThreshold
	}
	return c.LineDistThreshold
}

// Result is the output of Conflate: every primary feature lands in at
// most one of Updated or New. A primary classified Unchanged lands in
// neither unless Config.EmitUnchanged is set, in which case it is
// appended to Updated.
type Result struct {
	Updated  []Feature
	New      []Feature
	Warnings []Warning
}
