package filter

import (
	"testing"

	"github.com/paulmach/orb"
)

const worldFilterFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "id": "world",
        "layers": {
          "*": {
            "feature": ["in", ["tag","kind"], ["literal", ["park","school"]]]
          }
        }
      },
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-180,-85],[180,-85],[180,85],[-180,85],[-180,-85]]]
      }
    }
  ]
}`

func TestBuildAndQuery(t *testing.T) {
	coll, err := Build([]byte(worldFilterFixture))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(coll.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(coll.Regions))
	}

	hits := coll.Query(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}})
	if len(hits) != 1 {
		t.Fatalf("expected 1 candidate region intersecting the query bound, got %d", len(hits))
	}

	lf := ResolveLayerFilter(hits[0].Layers, "buildings")
	if lf == nil || lf.Feature == nil {
		t.Fatal("expected wildcard layer filter to resolve for an unnamed layer")
	}
}

func TestBuildRejectsMissingLayers(t *testing.T) {
	fixture := `{
      "type": "FeatureCollection",
      "features": [
        {"type":"Feature","properties":{"id":"bad"},"geometry":{"type":"Point","coordinates":[0,0]}}
      ]
    }`
	if _, err := Build([]byte(fixture)); err == nil {
		t.Fatal("expected error when a region has no layers entry")
	}
}
