package jsonfg

import (
	"encoding/json"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tmserr"
)

// Feature is a JSON-FG feature envelope, per spec.md §6: the geometry
// goes in Geometry when its CRS is the default CRS84, otherwise in
// Place with CoordRefSys naming the actual CRS.
type Feature struct {
	Type        string          `json:"type"`
	Time        *string         `json:"time"`
	Place       json.RawMessage `json:"place"`
	Geometry    json.RawMessage `json:"geometry"`
	Properties  map[string]any  `json:"properties"`
	CoordRefSys json.RawMessage `json:"coordRefSys,omitempty"`
}

var jsonNull = json.RawMessage("null")

// NewFeature builds the JSON-FG envelope for g, following spec.md §6's
// getJSONFG contract: CRS84 geometries are carried in "geometry" with
// "place" null; any other CRS is carried in "place" with "geometry" null
// and an explicit "coordRefSys".
func NewFeature(g geom.Geometry, properties map[string]any) (*Feature, error) {
	encoded, err := marshalGeometry(g)
	if err != nil {
		return nil, err
	}

	f := &Feature{Type: "Feature", Properties: properties}
	if geom.SameCRS(g.CRS(), geom.CRS84) {
		f.Geometry = encoded
		f.Place = jsonNull
		return f, nil
	}

	f.Geometry = jsonNull
	f.Place = encoded
	crsJSON, err := json.Marshal(string(g.CRS()))
	if err != nil {
		return nil, tmserr.Wrap(tmserr.Invariant, "encoding coordRefSys", err)
	}
	f.CoordRefSys = crsJSON
	return f, nil
}

// Marshal encodes f as JSON-FG.
func (f *Feature) Marshal() ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, tmserr.Wrap(tmserr.Invariant, "encoding json-fg feature", err)
	}
	return b, nil
}

// marshalGeometry encodes g as a plain GeoJSON geometry object,
// dispatching on the same value-type switch as geom.FlattenToPositions.
func marshalGeometry(g geom.Geometry) (json.RawMessage, error) {
	switch v := g.(type) {
	case geom.Point:
		return marshalRaw("Point", positionCoords(v.Position()))
	case geom.LineString:
		return marshalRaw("LineString", positionsCoords(v.Positions()))
	case geom.Polygon:
		rings := v.Rings()
		coords := make([][][2]float64, len(rings))
		for i, r := range rings {
			coords[i] = positionsCoords(r.Positions())
		}
		return marshalRaw("Polygon", coords)
	case geom.GeometryCollection:
		members := make([]json.RawMessage, len(v.Geometries()))
		for i, m := range v.Geometries() {
			encoded, err := marshalGeometry(m)
			if err != nil {
				return nil, err
			}
			members[i] = encoded
		}
		b, err := json.Marshal(struct {
			Type       string            `json:"type"`
			Geometries []json.RawMessage `json:"geometries"`
		}{Type: "GeometryCollection", Geometries: members})
		if err != nil {
			return nil, tmserr.Wrap(tmserr.Invariant, "encoding geometry collection", err)
		}
		return b, nil
	default:
		return nil, tmserr.Validationf("unsupported geometry type %v", g.Type())
	}
}

func marshalRaw(geomType string, coordinates any) (json.RawMessage, error) {
	b, err := json.Marshal(struct {
		Type        string `json:"type"`
		Coordinates any    `json:"coordinates"`
	}{Type: geomType, Coordinates: coordinates})
	if err != nil {
		return nil, tmserr.Wrap(tmserr.Invariant, "encoding "+geomType, err)
	}
	return b, nil
}

func positionCoords(p geom.Position) [2]float64 {
	return [2]float64{p.East, p.North}
}

func positionsCoords(positions []geom.Position) [][2]float64 {
	out := make([][2]float64, len(positions))
	for i, p := range positions {
		out[i] = positionCoords(p)
	}
	return out
}
