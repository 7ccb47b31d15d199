package transform

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

func TestLonLatToTileLocalOrigin(t *testing.T) {
	// The tile's own northwest corner should project to tile-local (0, 0).
	tile := maptile.New(8362, 5956, 14)
	bound := tile.Bound()
	nw := orb.Point{bound.Min[0], bound.Max[1]}
	p := lonLatToTileLocal(nw, tile, 4096)
	if abs(p[0]) > 1e-6 || abs(p[1]) > 1e-6 {
		t.Errorf("tile northwest corner projected to (%v,%v), want (0,0)", p[0], p[1])
	}
}

func TestLonLatToTileLocalCenterIsHalfExtent(t *testing.T) {
	tile := maptile.New(0, 0, 1)
	bound := tile.Bound()
	centerLon := (bound.Min[0] + bound.Max[0]) / 2
	p := lonLatToTileLocal(orb.Point{centerLon, 0}, tile, 4096)
	if abs(p[0]-2048) > 1.0 {
		t.Errorf("tile-local x at horizontal center = %v, want ~2048", p[0])
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
