// Package geoio is the GeoJSON boundary: it converts between the wire
// format (a FeatureCollection of loosely-typed JSON) and the
// conflate.Feature values the matching engine operates on.
package geoio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/paulmach/orb"

	"github.com/hotosm/conflate/conflate"
)

// wireGeometry mirrors a GeoJSON geometry object. Coordinates are kept
// as raw JSON and decoded according to Type, since a Point, a
// LineString, and a Polygon all shape their coordinates differently.
type wireGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// wireFeature mirrors a GeoJSON Feature. Most properties are read and
// written as plain strings: every tag in this domain (OSM keys, USFS
// refs) is naturally textual. The reserved keys id, version, and refs
// are the exception spec.md's wire contract calls out by name, and are
// handled by wireProperties' custom (Un)MarshalJSON below so they
// round-trip as JSON numbers/arrays the way other GeoJSON tooling
// expects, instead of quoted strings.
type wireFeature struct {
	Type       string         `json:"type"`
	Geometry   *wireGeometry  `json:"geometry"`
	Properties wireProperties `json:"properties"`
}

// wireProperties is a conflate.Feature property bag as it appears on
// the wire. Internally (conflate.Feature.Properties) every value is a
// string, including a ";"-joined refs list, matching the rest of this
// package's multi-value convention (see conflate.NameRefNormalizer);
// on the wire, id/version serialize as bare JSON numbers when they
// look like integers, and refs serializes as a JSON array whose
// integer-looking entries are themselves JSON numbers.
type wireProperties map[string]string

// integerLikePattern matches a bare (optionally negative) integer
// literal, the same shape id/version/refs entries take in this domain.
var integerLikePattern = regexp.MustCompile(`^-?[0-9]+$`)

func (p wireProperties) MarshalJSON() ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(p))
	for k, v := range p {
		enc, err := encodePropertyValue(k, v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		raw[k] = enc
	}
	return json.Marshal(raw)
}

func (p *wireProperties) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(wireProperties, len(raw))
	for k, v := range raw {
		s, err := decodePropertyValue(v)
		if err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = s
	}
	*p = out
	return nil
}

func encodePropertyValue(key, value string) (json.RawMessage, error) {
	switch key {
	case "id", "version":
		if integerLikePattern.MatchString(value) {
			return json.RawMessage(value), nil
		}
	case "refs":
		parts := strings.Split(value, ";")
		items := make([]json.RawMessage, len(parts))
		for i, part := range parts {
			part = strings.TrimSpace(part)
			if integerLikePattern.MatchString(part) {
				items[i] = json.RawMessage(part)
				continue
			}
			enc, err := json.Marshal(part)
			if err != nil {
				return nil, err
			}
			items[i] = enc
		}
		return json.Marshal(items)
	}
	return json.Marshal(value)
}

func decodePropertyValue(data json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", nil
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", err
		}
		parts := make([]string, len(items))
		for i, item := range items {
			s, err := decodeScalarValue(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ";"), nil
	}
	return decodeScalarValue(trimmed)
}

func decodeScalarValue(data json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	// A JSON number or bool: keep its literal token text verbatim.
	return string(trimmed), nil
}

type wireFeatureCollection struct {
	Type     string        `json:"type"`
	Features []wireFeature `json:"features"`
}

// ReadFeatures parses a GeoJSON FeatureCollection file into
// conflate.Features, skipping any feature whose geometry is missing.
// A feature with a geometry of an unsupported type (MultiPoint/
// MultiLineString/MultiPolygon/GeometryCollection are out of scope for
// this engine) makes the whole read fail with an error.
func ReadFeatures(path string) ([]conflate.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var fc wireFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing GeoJSON in %s: %w", path, err)
	}

	features := make([]conflate.Feature, 0, len(fc.Features))
	for i, wf := range fc.Features {
		if wf.Geometry == nil {
			continue
		}
		geom, err := decodeGeometry(wf.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%s: feature %d: %w", path, i, err)
		}
		props := map[string]string(wf.Properties)
		if props == nil {
			props = map[string]string{}
		}
		features = append(features, conflate.Feature{Geometry: geom, Properties: props})
	}
	return features, nil
}

// WriteFeatures writes features to path as a GeoJSON FeatureCollection.
func WriteFeatures(path string, features []conflate.Feature) error {
	fc := wireFeatureCollection{Type: "FeatureCollection"}
	for _, f := range features {
		wg, err := encodeGeometry(f.Geometry)
		if err != nil {
			return fmt.Errorf("encoding geometry: %w", err)
		}
		fc.Features = append(fc.Features, wireFeature{
			Type:       "Feature",
			Geometry:   wg,
			Properties: wireProperties(f.Properties),
		})
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func decodeGeometry(g *wireGeometry) (conflate.Geometry, error) {
	switch g.Type {
	case "Point":
		var c [2]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return conflate.Geometry{}, fmt.Errorf("decoding Point coordinates: %w", err)
		}
		return conflate.NewPointGeometry(orb.Point{c[0], c[1]}), nil

	case "LineString":
		var coords [][2]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return conflate.Geometry{}, fmt.Errorf("decoding LineString coordinates: %w", err)
		}
		ls := make(orb.LineString, len(coords))
		for i, c := range coords {
			ls[i] = orb.Point{c[0], c[1]}
		}
		return conflate.NewLineGeometry(ls), nil

	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return conflate.Geometry{}, fmt.Errorf("decoding Polygon coordinates: %w", err)
		}
		poly := make(orb.Polygon, len(rings))
		for i, ring := range rings {
			r := make(orb.Ring, len(ring))
			for j, c := range ring {
				r[j] = orb.Point{c[0], c[1]}
			}
			poly[i] = r
		}
		return conflate.NewPolygonGeometry(poly), nil

	default:
		return conflate.Geometry{}, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func encodeGeometry(g conflate.Geometry) (*wireGeometry, error) {
	switch g.Type {
	case conflate.GeomPoint:
		coords, err := json.Marshal([2]float64{g.Point[0], g.Point[1]})
		if err != nil {
			return nil, err
		}
		return &wireGeometry{Type: "Point", Coordinates: coords}, nil

	case conflate.GeomLineString:
		out := make([][2]float64, len(g.Line))
		for i, p := range g.Line {
			out[i] = [2]float64{p[0], p[1]}
		}
		coords, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return &wireGeometry{Type: "LineString", Coordinates: coords}, nil

	case conflate.GeomPolygon:
		rings := make([][][2]float64, len(g.Polygon))
		for i, ring := range g.Polygon {
			r := make([][2]float64, len(ring))
			for j, p := range ring {
				r[j] = [2]float64{p[0], p[1]}
			}
			rings[i] = r
		}
		coords, err := json.Marshal(rings)
		if err != nil {
			return nil, err
		}
		return &wireGeometry{Type: "Polygon", Coordinates: coords}, nil

	default:
		return nil, fmt.Errorf("unsupported geometry type %v", g.Type)
	}
}
