// Package transform implements the per-tile rewrite: decoding an MVT tile,
// resolving which filter regions apply to which layers, evaluating feature
// and tag predicates, and re-encoding the surviving tile.
package transform

import (
	"math"

	"github.com/paulmach/orb"
)

// Intersects reports whether two geometries intersect. orb does not expose a
// general geometry/geometry intersection test, so this implements the
// bounding-box fast-reject followed by a point-in-polygon and
// segment-intersection test sufficient for the geometry kinds MVT produces
// (point, multipoint, line, multiline, polygon, multipolygon).
func Intersects(a, b orb.Geometry) bool {
	if a == nil || b == nil {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}
	return geomIntersects(a, b)
}

func geomIntersects(a, b orb.Geometry) bool {
	switch ga := a.(type) {
	case orb.Point:
		return pointIntersectsGeom(ga, b)
	case orb.MultiPoint:
		for _, p := range ga {
			if pointIntersectsGeom(p, b) {
				return true
			}
		}
		return false
	case orb.LineString:
		return lineIntersectsGeom(ga, b)
	case orb.MultiLineString:
		for _, ls := range ga {
			if lineIntersectsGeom(ls, b) {
				return true
			}
		}
		return false
	case orb.Ring:
		return lineIntersectsGeom(orb.LineString(ga), b)
	case orb.Polygon:
		return polygonIntersectsGeom(ga, b)
	case orb.MultiPolygon:
		for _, poly := range ga {
			if polygonIntersectsGeom(poly, b) {
				return true
			}
		}
		return false
	case orb.Collection:
		for _, g := range ga {
			if geomIntersects(g, b) {
				return true
			}
		}
		return false
	default:
		return a.Bound().Intersects(b.Bound())
	}
}

func pointIntersectsGeom(p orb.Point, b orb.Geometry) bool {
	switch gb := b.(type) {
	case orb.Point:
		return p == gb
	case orb.MultiPoint:
		for _, q := range gb {
			if p == q {
				return true
			}
		}
		return false
	case orb.LineString:
		return pointOnLine(p, gb)
	case orb.MultiLineString:
		for _, ls := range gb {
			if pointOnLine(p, ls) {
				return true
			}
		}
		return false
	case orb.Ring:
		return pointInRing(p, gb) || pointOnLine(p, orb.LineString(gb))
	case orb.Polygon:
		return pointInPolygon(p, gb)
	case orb.MultiPolygon:
		for _, poly := range gb {
			if pointInPolygon(p, poly) {
				return true
			}
		}
		return false
	default:
		return b.Bound().Contains(p)
	}
}

func lineIntersectsGeom(l orb.LineString, b orb.Geometry) bool {
	switch gb := b.(type) {
	case orb.Point:
		return pointOnLine(gb, l)
	case orb.MultiPoint:
		for _, p := range gb {
			if pointOnLine(p, l) {
				return true
			}
		}
		return false
	case orb.LineString:
		return linesIntersect(l, gb)
	case orb.MultiLineString:
		for _, ls := range gb {
			if linesIntersect(l, ls) {
				return true
			}
		}
		return false
	case orb.Ring:
		return linesIntersect(l, orb.LineString(gb)) || lineInsideRing(l, gb)
	case orb.Polygon:
		return lineIntersectsPolygon(l, gb)
	case orb.MultiPolygon:
		for _, poly := range gb {
			if lineIntersectsPolygon(l, poly) {
				return true
			}
		}
		return false
	default:
		return l.Bound().Intersects(b.Bound())
	}
}

func polygonIntersectsGeom(poly orb.Polygon, b orb.Geometry) bool {
	switch gb := b.(type) {
	case orb.Point:
		return pointInPolygon(gb, poly)
	case orb.MultiPoint:
		for _, p := range gb {
			if pointInPolygon(p, poly) {
				return true
			}
		}
		return false
	case orb.LineString:
		return lineIntersectsPolygon(gb, poly)
	case orb.MultiLineString:
		for _, ls := range gb {
			if lineIntersectsPolygon(ls, poly) {
				return true
			}
		}
		return false
	case orb.Ring:
		return lineIntersectsPolygon(orb.LineString(gb), poly) || lineInsideRing(poly[0], gb)
	case orb.Polygon:
		return polygonsIntersect(poly, gb)
	case orb.MultiPolygon:
		for _, other := range gb {
			if polygonsIntersect(poly, other) {
				return true
			}
		}
		return false
	default:
		return poly.Bound().Intersects(b.Bound())
	}
}

func polygonsIntersect(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if lineIntersectsPolygon(orb.LineString(a[0]), b) {
		return true
	}
	// Disjoint boundaries: either one polygon's outer ring is fully nested
	// inside the other's, or they don't intersect at all.
	if pointInPolygon(a[0][0], b) {
		return true
	}
	if pointInPolygon(b[0][0], a) {
		return true
	}
	return false
}

func lineIntersectsPolygon(l orb.LineString, poly orb.Polygon) bool {
	if len(poly) == 0 {
		return false
	}
	if linesIntersect(l, orb.LineString(poly[0])) {
		return true
	}
	for _, hole := range poly[1:] {
		if linesIntersect(l, orb.LineString(hole)) {
			return true
		}
	}
	for _, p := range l {
		if pointInPolygon(p, poly) {
			return true
		}
	}
	return false
}

func lineInsideRing(l orb.LineString, ring orb.Ring) bool {
	if len(l) == 0 {
		return false
	}
	return pointInRing(l[0], ring)
}

func pointInPolygon(p orb.Point, poly orb.Polygon) bool {
	if len(poly) == 0 || !pointInRing(p, poly[0]) {
		return false
	}
	for _, hole := range poly[1:] {
		if pointInRing(p, hole) {
			return false
		}
	}
	return true
}

// pointInRing implements the standard ray-casting point-in-polygon test.
func pointInRing(p orb.Point, ring orb.Ring) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > p[1]) != (yj > p[1]) {
			xCross := xi + (p[1]-yi)/(yj-yi)*(xj-xi)
			if p[0] < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func pointOnLine(p orb.Point, l orb.LineString) bool {
	for i := 1; i < len(l); i++ {
		if pointOnSegment(p, l[i-1], l[i]) {
			return true
		}
	}
	return false
}

func pointOnSegment(p, a, b orb.Point) bool {
	const eps = 1e-12
	cross := (p[0]-a[0])*(b[1]-a[1]) - (p[1]-a[1])*(b[0]-a[0])
	if math.Abs(cross) > eps {
		return false
	}
	if p[0] < math.Min(a[0], b[0])-eps || p[0] > math.Max(a[0], b[0])+eps {
		return false
	}
	if p[1] < math.Min(a[1], b[1])-eps || p[1] > math.Max(a[1], b[1])+eps {
		return false
	}
	return true
}

func linesIntersect(a, b orb.LineString) bool {
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if segmentsIntersect(a[i-1], a[i], b[j-1], b[j]) {
				return true
			}
		}
	}
	return false
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := orient(p3, p4, p1)
	d2 := orient(p3, p4, p2)
	d3 := orient(p1, p2, p3)
	d4 := orient(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}
