package transform

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// lonLatToTileLocal projects a geographic point into tile-local pixel space
// at the given extent, using the exact Web-Mercator tile formula: the point
// is expressed as a fraction of the world at the tile's zoom level, then
// rebased against the tile's own origin and scaled by extent.
func lonLatToTileLocal(p orb.Point, tile maptile.Tile, extent float64) orb.Point {
	n := math.Exp2(float64(tile.Z))
	latRad := p[1] * math.Pi / 180

	xFrac := (p[0] + 180) / 360 * n
	yFrac := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n

	x := (xFrac - float64(tile.X)) * extent
	y := (yFrac - float64(tile.Y)) * extent
	return orb.Point{x, y}
}

// ProjectRegionToTile reprojects a filter region's geometry (in lon/lat)
// into the tile-local coordinate space used by MVT feature geometry, so it
// can be intersection-tested directly against decoded tile features.
func ProjectRegionToTile(geom orb.Geometry, tile maptile.Tile, extent int) (orb.Geometry, orb.Bound) {
	projected := orb.Transform(geom, func(p orb.Point) orb.Point {
		return lonLatToTileLocal(p, tile, float64(extent))
	})
	return projected, projected.Bound()
}

// tileBound returns the tile's own bound in lon/lat, used to query the
// region collection's spatial index before any per-feature projection.
func tileBound(tile maptile.Tile) orb.Bound {
	return tile.Bound()
}
