package filter

import (
	"encoding/json"
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/valpere/mvtfilter/internal/errs"
)

// LayerFilter holds the two optional predicates for one layer name (or the
// wildcard "*") inside a filter region.
type LayerFilter struct {
	Feature *Expr
	Tag     *Expr
}

// Region is one filter region: a geographic geometry plus its per-layer
// predicates.
type Region struct {
	ID          string
	Description string
	Geometry    orb.Geometry
	Bound       orb.Bound
	Layers      map[string]*LayerFilter
}

// Collection is the compiled, immutable filter collection: a list of
// regions plus an R-tree keyed by each region's lon/lat bounding box.
// Built once at startup and shared read-only across worker goroutines.
type Collection struct {
	Regions []*Region
	tree    *rtreego.Rtree
}

type regionEntry struct {
	idx  int
	rect *rtreego.Rect
}

func (r *regionEntry) Bounds() *rtreego.Rect { return r.rect }

func boundToRect(b orb.Bound) (*rtreego.Rect, error) {
	const eps = 1e-9
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	if w <= 0 {
		w = eps
	}
	if h <= 0 {
		h = eps
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
}

// regionProperties mirrors the JSON shape of one filter-region Feature's
// properties, since geojson.Feature's Properties field is an untyped map and
// the layers/id/description fields must be pulled out of it by hand.
type regionProperties struct {
	ID          string                     `json:"id"`
	Description string                     `json:"description"`
	Layers      map[string]json.RawMessage `json:"layers"`
}

type rawLayerFilter struct {
	Feature json.RawMessage `json:"feature"`
	Tag     json.RawMessage `json:"tag"`
}

// Empty returns a Collection with no regions. Its Query always returns no
// candidates, so tiles pushed through it are decoded and re-encoded with
// every feature and tag left untouched. Used when no filter was given.
func Empty() *Collection {
	return &Collection{tree: rtreego.NewTree(2, 25, 50)}
}

// Build parses a GeoJSON FeatureCollection of filter regions and compiles it
// into an immutable Collection with its spatial index.
func Build(data []byte) (*Collection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errs.New(errs.CodeFilterParse, "filter file is not a valid GeoJSON FeatureCollection", err)
	}

	regions := make([]*Region, 0, len(fc.Features))
	entries := make([]rtreego.Spatial, 0, len(fc.Features))

	for i, ft := range fc.Features {
		if ft.Type != "" && ft.Type != "Feature" {
			return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d: type must be \"Feature\"", i), nil)
		}
		if ft.Geometry == nil {
			return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d: missing geometry", i), nil)
		}

		propsJSON, err := json.Marshal(map[string]interface{}(ft.Properties))
		if err != nil {
			return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d: invalid properties", i), err)
		}
		var props regionProperties
		if err := json.Unmarshal(propsJSON, &props); err != nil {
			return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d: invalid properties", i), err)
		}
		if len(props.Layers) == 0 {
			return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d: layers must have at least one entry", i), nil)
		}

		layers := make(map[string]*LayerFilter, len(props.Layers))
		for name, raw := range props.Layers {
			var rlf rawLayerFilter
			if err := json.Unmarshal(raw, &rlf); err != nil {
				return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d layer %q: invalid layer filter", i, name), err)
			}
			lf := &LayerFilter{}
			if len(rlf.Feature) > 0 {
				var v interface{}
				if err := json.Unmarshal(rlf.Feature, &v); err != nil {
					return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d layer %q: invalid feature expression", i, name), err)
				}
				expr, err := Compile(v)
				if err != nil {
					return nil, err
				}
				lf.Feature = expr
			}
			if len(rlf.Tag) > 0 {
				var v interface{}
				if err := json.Unmarshal(rlf.Tag, &v); err != nil {
					return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d layer %q: invalid tag expression", i, name), err)
				}
				expr, err := Compile(v)
				if err != nil {
					return nil, err
				}
				lf.Tag = expr
			}
			layers[name] = lf
		}

		bound := ft.Geometry.Bound()
		region := &Region{
			ID:          props.ID,
			Description: props.Description,
			Geometry:    ft.Geometry,
			Bound:       bound,
			Layers:      layers,
		}
		regions = append(regions, region)

		rect, err := boundToRect(bound)
		if err != nil {
			return nil, errs.New(errs.CodeFilterParse, fmt.Sprintf("filter region %d: degenerate bounding box", i), err)
		}
		entries = append(entries, &regionEntry{idx: len(regions) - 1, rect: rect})
	}

	tree := rtreego.NewTree(2, 25, 50)
	for _, e := range entries {
		tree.Insert(e)
	}

	return &Collection{Regions: regions, tree: tree}, nil
}

// Query returns the candidate regions whose lon/lat bounding box intersects
// bound's bounding box. The caller performs the finer per-feature
// intersection test; this is the R-tree reduction step only.
func (c *Collection) Query(bound orb.Bound) []*Region {
	rect, err := boundToRect(bound)
	if err != nil {
		return nil
	}
	hits := c.tree.SearchIntersect(rect)
	seen := make(map[int]struct{}, len(hits))
	out := make([]*Region, 0, len(hits))
	for _, h := range hits {
		re := h.(*regionEntry)
		if _, dup := seen[re.idx]; dup {
			continue
		}
		seen[re.idx] = struct{}{}
		out = append(out, c.Regions[re.idx])
	}
	return out
}

// ResolveLayerFilter applies the layer-specific-then-wildcard resolution
// order used by both the feature and tag predicates.
func ResolveLayerFilter(layers map[string]*LayerFilter, layerName string) *LayerFilter {
	if lf, ok := layers[layerName]; ok {
		return lf
	}
	if lf, ok := layers["*"]; ok {
		return lf
	}
	return nil
}
