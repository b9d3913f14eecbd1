package conflate

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// earthRadiusMeters is the mean radius used by the equirectangular
// projection below; it is the same constant used throughout the
// surveying literature for "local AOI, not geodesy" conversions.
const earthRadiusMeters = 6371008.8

// GeometryOps implements the projection, distance, slope/angle, and
// centroid primitives the rest of the package builds on. It holds no
// state; every method is a pure function of its arguments.
type GeometryOps struct{}

// Project converts a WGS84 (longitude, latitude in decimal degrees)
// geometry into planar meters using an equirectangular projection
// centered on refLatDeg. This is deliberately not a Web Mercator
// projection: Mercator's distortion grows with distance from the
// equator, while centering an equirectangular projection on the AOI's
// own reference latitude keeps local distances uniformly accurate to a
// few parts per thousand regardless of where on Earth the AOI sits.
func (GeometryOps) Project(g Geometry, refLatDeg float64) Geometry {
	cosRef := math.Cos(refLatDeg * math.Pi / 180)
	project := func(p orb.Point) orb.Point {
		lon, lat := p[0], p[1]
		x := (lon * math.Pi / 180) * earthRadiusMeters * cosRef
		y := (lat * math.Pi / 180) * earthRadiusMeters
		return orb.Point{x, y}
	}

	switch g.Type {
	case GeomPoint:
		return NewPointGeometry(project(g.Point))
	case GeomLineString:
		out := make(orb.LineString, len(g.Line))
		for i, p := range g.Line {
			out[i] = project(p)
		}
		return NewLineGeometry(out)
	case GeomPolygon:
		out := make(orb.Polygon, len(g.Polygon))
		for i, ring := range g.Polygon {
			r := make(orb.Ring, len(ring))
			for j, p := range ring {
				r[j] = project(p)
			}
			out[i] = r
		}
		return NewPolygonGeometry(out)
	default:
		return g
	}
}

// ReferenceLatitude returns the mean latitude of a set of already
// WGS84-projected-or-not geometries, used as Config.ReferenceLatitude
// when the caller hasn't picked one explicitly.
func (GeometryOps) ReferenceLatitude(features []Feature) float64 {
	if len(features) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, f := range features {
		c := GeometryOps{}.Centroid(f.Geometry)
		sum += c[1]
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Centroid returns a representative point for any geometry: itself for
// a Point, the mean of its vertices for a LineString, the mean of its
// outer ring's vertices for a Polygon.
func (GeometryOps) Centroid(g Geometry) orb.Point {
	switch g.Type {
	case GeomPoint:
		return g.Point
	case GeomLineString:
		return meanPoint(g.Line)
	case GeomPolygon:
		if len(g.Polygon) == 0 {
			return orb.Point{}
		}
		return meanPoint(g.Polygon[0])
	default:
		return orb.Point{}
	}
}

func meanPoint(pts []orb.Point) orb.Point {
	if len(pts) == 0 {
		return orb.Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(pts))
	return orb.Point{sx / n, sy / n}
}

// Distance computes the planar distance (in the same units as the
// geometries, meters once projected) between a and b, dispatching on
// the pair of geometry types involved.
//
// A Point compared against a LineString is a deliberate incomparable
// case: a stray point-of-interest should never be treated as a
// candidate match for a road, so this returns +Inf, which reliably
// fails every downstream distance threshold and removes the pair from
// consideration.
func (ops GeometryOps) Distance(a, b Geometry) float64 {
	switch {
	case a.Type == GeomPoint && b.Type == GeomPoint:
		return planar.Distance(a.Point, b.Point)
	case a.Type == GeomPoint && b.Type == GeomLineString:
		return math.Inf(1)
	case a.Type == GeomLineString && b.Type == GeomPoint:
		return math.Inf(1)
	case a.Type == GeomPoint && b.Type == GeomPolygon:
		return planar.Distance(a.Point, ops.Centroid(b))
	case a.Type == GeomPolygon && b.Type == GeomPoint:
		return planar.Distance(ops.Centroid(a), b.Point)
	case a.Type == GeomLineString && b.Type == GeomLineString:
		return lineToLineDistance(a.Line, b.Line)
	default:
		// Polygon-Polygon, Polygon-LineString, LineString-Polygon: no
		// finer-grained geometry comparison is defined, so fall back to
		// centroid distance, same as the reference implementation does
		// for its least-common geometry pairs.
		return planar.Distance(ops.Centroid(a), ops.Centroid(b))
	}
}

// lineToLineDistance is the minimum distance between any segment of a
// and any segment of b.
func lineToLineDistance(a, b orb.LineString) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	if len(a) == 1 && len(b) == 1 {
		return planar.Distance(a[0], b[0])
	}

	best := math.Inf(1)
	segs := func(ls orb.LineString) []orb.LineString {
		if len(ls) < 2 {
			return []orb.LineString{ls}
		}
		out := make([]orb.LineString, 0, len(ls)-1)
		for i := 0; i+1 < len(ls); i++ {
			out = append(out, orb.LineString{ls[i], ls[i+1]})
		}
		return out
	}

	for _, sa := range segs(a) {
		for _, sb := range segs(b) {
			d := segmentToSegmentDistance(sa, sb)
			if d < best {
				best = d
			}
		}
	}
	return best
}

func segmentToSegmentDistance(a, b orb.LineString) float64 {
	if len(a) < 2 {
		return pointToSegmentDistance(a[0], b)
	}
	if len(b) < 2 {
		return pointToSegmentDistance(b[0], a)
	}
	// Segments that properly cross are at distance zero even though no
	// endpoint lies on the other segment.
	cross := func(o, p, q orb.Point) float64 {
		return (p[0]-o[0])*(q[1]-o[1]) - (p[1]-o[1])*(q[0]-o[0])
	}
	c1, c2 := cross(a[0], a[1], b[0]), cross(a[0], a[1], b[1])
	c3, c4 := cross(b[0], b[1], a[0]), cross(b[0], b[1], a[1])
	if ((c1 > 0 && c2 < 0) || (c1 < 0 && c2 > 0)) && ((c3 > 0 && c4 < 0) || (c3 < 0 && c4 > 0)) {
		return 0
	}
	d1 := pointToSegmentDistance(a[0], b)
	d2 := pointToSegmentDistance(a[1], b)
	d3 := pointToSegmentDistance(b[0], a)
	d4 := pointToSegmentDistance(b[1], a)
	return math.Min(math.Min(d1, d2), math.Min(d3, d4))
}

func pointToSegmentDistance(p orb.Point, seg orb.LineString) float64 {
	if len(seg) < 2 {
		if len(seg) == 1 {
			return planar.Distance(p, seg[0])
		}
		return math.Inf(1)
	}
	a, b := seg[0], seg[1]
	abx, aby := b[0]-a[0], b[1]-a[1]
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return planar.Distance(p, a)
	}
	t := ((p[0]-a[0])*abx + (p[1]-a[1])*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := orb.Point{a[0] + t*abx, a[1] + t*aby}
	return planar.Distance(p, proj)
}

// SlopeAndAngle compares the local bearing of two line strings near
// their endpoints. Each line is sampled at index 2 from the start and 2
// from the end (or just its two endpoints when it has fewer than 5
// vertices), giving a local slope (rise/run) for each; SlopeDelta is
// the raw difference m1-m2 and AngleDeg is the absolute angle in
// degrees between the two local bearings, computed via
// atan((m2-m1)/(1+m1*m2)) the way two line bearings are conventionally
// compared. Both a and b must be LineStrings; non-LineString input
// yields a zero result, matching the "no slope defined" convention
// applied everywhere else a Point or Polygon is compared for
// divergence.
func (GeometryOps) SlopeAndAngle(a, b Geometry) (slopeDelta, angleDeg float64) {
	if a.Type != GeomLineString || b.Type != GeomLineString {
		return 0, 0
	}
	m1 := localSlope(a.Line)
	m2 := localSlope(b.Line)

	slopeDelta = m1 - m2

	angle := math.Atan((m2-m1)/(1+m1*m2)) * 180 / math.Pi
	if math.IsNaN(angle) {
		angle = 0
	}
	angleDeg = math.Abs(angle)
	return slopeDelta, angleDeg
}

// localSlope returns the slope of the line between a point 2 indices
// from the start and a point 2 indices from the end, falling back to
// the plain endpoints when the line has fewer than 5 vertices.
func localSlope(ls orb.LineString) float64 {
	if len(ls) < 2 {
		return 0
	}
	var p0, p1 orb.Point
	if len(ls) >= 5 {
		p0 = ls[2]
		p1 = ls[len(ls)-3]
	} else {
		p0 = ls[0]
		p1 = ls[len(ls)-1]
	}
	dx := p1[0] - p0[0]
	if dx == 0 {
		return 0
	}
	slope := (p1[1] - p0[1]) / dx
	if math.IsNaN(slope) {
		return 0
	}
	return slope
}
