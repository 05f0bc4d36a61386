// Package jsonfg ingests RFC 7946 GeoJSON geometries (with the
// coordRefSys CRS extension) and emits JSON-FG features, per spec.md §6.
// It works directly off encoding/json rather than paulmach/orb/geojson,
// following gotiler.go's "read raw bytes, produce typed structs" idiom,
// because orb.Geometry carries no CRS tag and this package's whole job
// is carrying one.
package jsonfg

import (
	"encoding/json"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tmserr"
)

type rawGeometry struct {
	Type        string            `json:"type"`
	Coordinates json.RawMessage   `json:"coordinates,omitempty"`
	Geometries  []json.RawMessage `json:"geometries,omitempty"`
	CoordRefSys json.RawMessage   `json:"coordRefSys,omitempty"`
}

type namedCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// ParseGeometry decodes a GeoJSON geometry object. defaultCRS is used
// when the object (and any ancestor, for GeometryCollection members)
// carries no coordRefSys field, per RFC 7946's CRS84 default.
func ParseGeometry(data []byte, defaultCRS geom.CRS) (geom.Geometry, error) {
	var raw rawGeometry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, tmserr.Wrap(tmserr.Validation, "decoding geojson geometry", err)
	}
	return parseRaw(raw, defaultCRS)
}

func parseRaw(raw rawGeometry, defaultCRS geom.CRS) (geom.Geometry, error) {
	crs, err := resolveCoordRefSys(raw.CoordRefSys, defaultCRS)
	if err != nil {
		return nil, err
	}

	switch raw.Type {
	case "Point":
		pos, err := decodePosition(raw.Coordinates)
		if err != nil {
			return nil, err
		}
		return geom.NewPoint(pos, crs)
	case "LineString":
		positions, err := decodePositions(raw.Coordinates)
		if err != nil {
			return nil, err
		}
		return geom.NewLineString(positions, crs)
	case "Polygon":
		rings, err := decodeRings(raw.Coordinates)
		if err != nil {
			return nil, err
		}
		return geom.NewPolygon(rings, crs)
	case "GeometryCollection":
		members := make([]geom.Geometry, len(raw.Geometries))
		for i, m := range raw.Geometries {
			var memberRaw rawGeometry
			if err := json.Unmarshal(m, &memberRaw); err != nil {
				return nil, tmserr.Wrap(tmserr.Validation, "decoding geometry collection member", err)
			}
			g, err := parseRaw(memberRaw, crs)
			if err != nil {
				return nil, err
			}
			members[i] = g
		}
		return geom.NewGeometryCollection(members, crs)
	default:
		return nil, tmserr.Validationf("unsupported geojson geometry type %q", raw.Type)
	}
}

func resolveCoordRefSys(raw json.RawMessage, defaultCRS geom.CRS) (geom.CRS, error) {
	if len(raw) == 0 {
		return defaultCRS, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return geom.CRS(asString), nil
	}

	var named namedCRS
	if err := json.Unmarshal(raw, &named); err != nil {
		return "", tmserr.Wrap(tmserr.Validation, "decoding coordRefSys", err)
	}
	if named.Properties.Name == "" {
		return "", tmserr.Validationf("coordRefSys object missing properties.name")
	}
	return geom.CRS(named.Properties.Name), nil
}

func decodePosition(raw json.RawMessage) (geom.Position, error) {
	var c [2]float64
	if err := json.Unmarshal(raw, &c); err != nil {
		return geom.Position{}, tmserr.Wrap(tmserr.Validation, "decoding position", err)
	}
	return geom.NewPosition(c[0], c[1])
}

func decodePositions(raw json.RawMessage) ([]geom.Position, error) {
	var cs [][2]float64
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, tmserr.Wrap(tmserr.Validation, "decoding position list", err)
	}
	out := make([]geom.Position, len(cs))
	for i, c := range cs {
		p, err := geom.NewPosition(c[0], c[1])
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func decodeRings(raw json.RawMessage) ([][]geom.Position, error) {
	var rs [][][2]float64
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, tmserr.Wrap(tmserr.Validation, "decoding polygon rings", err)
	}
	out := make([][]geom.Position, len(rs))
	for i, r := range rs {
		positions := make([]geom.Position, len(r))
		for j, c := range r {
			p, err := geom.NewPosition(c[0], c[1])
			if err != nil {
				return nil, err
			}
			positions[j] = p
		}
		out[i] = positions
	}
	return out, nil
}
