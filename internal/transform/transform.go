package transform

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/maptile"

	"github.com/valpere/mvtfilter/internal/errs"
	"github.com/valpere/mvtfilter/internal/filter"
)

// Options carries the inputs a tile transform needs beyond the raw bytes:
// the compiled filter collection shared read-only across goroutines.
type Options struct {
	Collection *filter.Collection
}

// candidateRegion pairs a region with its tile-local reprojection, computed
// once per layer rather than once per feature.
type candidateRegion struct {
	region   *filter.Region
	geometry orb.Geometry
	bound    orb.Bound
}

// Tile decodes, filters, and re-encodes one MVT tile at (z, x, y).
func Tile(z, x, y uint32, data []byte, opts *Options) ([]byte, error) {
	layers, err := mvt.Unmarshal(data)
	if err != nil {
		return nil, errs.New(errs.CodeTileDecode, fmt.Sprintf("decode tile %d/%d/%d", z, x, y), err)
	}

	t := maptile.New(x, y, maptile.Zoom(z))
	candidates := opts.Collection.Query(tileBound(t))

	for _, layer := range layers {
		name := layer.Name
		extent := layer.Extent
		if extent == 0 {
			extent = 4096
		}

		effective := make([]candidateRegion, 0, len(candidates))
		for _, region := range candidates {
			lf := filter.ResolveLayerFilter(region.Layers, name)
			if lf == nil {
				continue
			}
			geom, bound := ProjectRegionToTile(region.Geometry, t, extent)
			tileBox := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{float64(extent), float64(extent)}}
			if !bound.Intersects(tileBox) {
				continue
			}
			effective = append(effective, candidateRegion{region: region, geometry: geom, bound: bound})
		}

		kept := layer.Features[:0]
		for _, feat := range layer.Features {
			props := materializeProperties(feat.Properties)
			kind := geometryKind(feat.Geometry)

			intersecting := make([]candidateRegion, 0, len(effective))
			for _, c := range effective {
				if Intersects(feat.Geometry, c.geometry) {
					intersecting = append(intersecting, c)
				}
			}

			if featureRemoved(name, kind, props, intersecting) {
				continue
			}

			feat.Properties = filterTags(name, kind, props, intersecting)
			kept = append(kept, feat)
		}
		layer.Features = kept
	}

	out, err := mvt.Marshal(layers)
	if err != nil {
		return nil, errs.New(errs.CodeTileDecode, fmt.Sprintf("encode tile %d/%d/%d", z, x, y), err)
	}
	return out, nil
}

func materializeProperties(tags map[string]interface{}) map[string]filter.Value {
	props := make(map[string]filter.Value, len(tags))
	for k, v := range tags {
		props[k] = toExprValue(v)
	}
	return props
}

func toExprValue(v interface{}) filter.Value {
	switch t := v.(type) {
	case string:
		return filter.String(t)
	case bool:
		return filter.Boolean(t)
	case int:
		return filter.Number(int64(t))
	case int32:
		return filter.Number(int64(t))
	case int64:
		return filter.Number(t)
	case uint32:
		return filter.Number(int64(t))
	case uint64:
		return filter.Number(int64(t))
	case float32:
		f := float64(t)
		if f == float64(int64(f)) {
			return filter.Number(int64(f))
		}
		return filter.Float(filter.CanonicalFloat(f))
	case float64:
		if t == float64(int64(t)) {
			return filter.Number(int64(t))
		}
		return filter.Float(filter.CanonicalFloat(t))
	case nil:
		return filter.Null()
	default:
		return filter.String(fmt.Sprintf("%v", t))
	}
}

// geometryKind maps the six MVT geometry variants down to the three base
// kinds exposed to the `type` context terminal.
func geometryKind(g orb.Geometry) string {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return "Point"
	case orb.LineString, orb.MultiLineString:
		return "LineString"
	case orb.Polygon, orb.MultiPolygon, orb.Ring:
		return "Polygon"
	default:
		return ""
	}
}

func featureRemoved(layerName, kind string, props map[string]filter.Value, candidates []candidateRegion) bool {
	ctx := &filter.Context{Properties: props, Layer: layerName, Geometry: kind}
	for _, c := range candidates {
		lf := filter.ResolveLayerFilter(c.region.Layers, layerName)
		if lf == nil || lf.Feature == nil {
			continue
		}
		if filter.EvaluateBool(lf.Feature, ctx) {
			return true
		}
	}
	return false
}

func filterTags(layerName, kind string, props map[string]filter.Value, candidates []candidateRegion) map[string]interface{} {
	kept := make(map[string]interface{}, len(props))
	for key, val := range props {
		keyCopy := key
		ctx := &filter.Context{Properties: props, Layer: layerName, Geometry: kind, Key: &keyCopy}
		dropped := false
		for _, c := range candidates {
			lf := filter.ResolveLayerFilter(c.region.Layers, layerName)
			if lf == nil || lf.Tag == nil {
				continue
			}
			if filter.EvaluateBool(lf.Tag, ctx) {
				dropped = true
				break
			}
		}
		if !dropped {
			kept[key] = renderNative(val)
		}
	}
	return kept
}

// renderNative converts a filter.Value back into the native Go type mvt.Marshal
// expects when rebuilding the layer's value dictionary.
func renderNative(v filter.Value) interface{} {
	switch v.Kind {
	case filter.KindString:
		return v.Str()
	case filter.KindNumber:
		return v.Num()
	case filter.KindFloat:
		f, err := strconv.ParseFloat(v.Str(), 64)
		if err != nil {
			return v.Render()
		}
		return f
	case filter.KindBoolean:
		return v.Bool()
	case filter.KindArray:
		return v.Render()
	default:
		return nil
	}
}
