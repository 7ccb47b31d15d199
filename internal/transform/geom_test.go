package transform

import (
	"testing"

	"github.com/paulmach/orb"
)

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0},
	}}
}

func TestIntersectsPointInPolygon(t *testing.T) {
	poly := square(0, 0, 10, 10)
	if !Intersects(orb.Point{5, 5}, poly) {
		t.Error("point inside polygon should intersect")
	}
	if Intersects(orb.Point{20, 20}, poly) {
		t.Error("point outside polygon should not intersect")
	}
}

func TestIntersectsPolygonWithHole(t *testing.T) {
	poly := orb.Polygon{
		orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		orb.Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}
	if Intersects(orb.Point{5, 5}, poly) {
		t.Error("point inside the hole should not intersect the polygon")
	}
	if !Intersects(orb.Point{1, 1}, poly) {
		t.Error("point inside the outer ring but outside the hole should intersect")
	}
}

func TestIntersectsDisjointPolygons(t *testing.T) {
	a := square(0, 0, 5, 5)
	b := square(100, 100, 105, 105)
	if Intersects(a, b) {
		t.Error("far-apart polygons should not intersect")
	}
}

func TestIntersectsOverlappingPolygons(t *testing.T) {
	a := square(0, 0, 10, 10)
	b := square(5, 5, 15, 15)
	if !Intersects(a, b) {
		t.Error("overlapping polygons should intersect")
	}
}

func TestIntersectsNestedPolygon(t *testing.T) {
	outer := square(0, 0, 10, 10)
	inner := square(2, 2, 4, 4)
	if !Intersects(outer, inner) {
		t.Error("a polygon fully nested inside another should intersect")
	}
}

func TestIntersectsLineCrossingPolygon(t *testing.T) {
	poly := square(0, 0, 10, 10)
	line := orb.LineString{{-5, 5}, {15, 5}}
	if !Intersects(line, poly) {
		t.Error("a line crossing a polygon should intersect")
	}
}
