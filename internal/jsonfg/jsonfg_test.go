package jsonfg_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/jsonfg"
)

func TestParseGeometryPoint(t *testing.T) {
	g, err := jsonfg.ParseGeometry([]byte(`{"type":"Point","coordinates":[10,20]}`), geom.CRS84)
	require.NoError(t, err)
	require.Equal(t, geom.TypePoint, g.Type())

	pt, ok := g.(geom.Point)
	require.True(t, ok)
	require.Equal(t, geom.Position{East: 10, North: 20}, pt.Position())
	require.Equal(t, geom.CRS84, pt.CRS())
}

func TestParseGeometryWithCoordRefSysString(t *testing.T) {
	g, err := jsonfg.ParseGeometry([]byte(`{"type":"Point","coordinates":[0,0],"coordRefSys":"`+string(geom.WebMercator)+`"}`), geom.CRS84)
	require.NoError(t, err)
	require.Equal(t, geom.WebMercator, g.CRS())
}

func TestParseGeometryWithCoordRefSysObject(t *testing.T) {
	data := []byte(`{
		"type":"Point",
		"coordinates":[0,0],
		"coordRefSys":{"type":"name","properties":{"name":"` + string(geom.WebMercator) + `"}}
	}`)
	g, err := jsonfg.ParseGeometry(data, geom.CRS84)
	require.NoError(t, err)
	require.Equal(t, geom.WebMercator, g.CRS())
}

func TestParseGeometryLineString(t *testing.T) {
	g, err := jsonfg.ParseGeometry([]byte(`{"type":"LineString","coordinates":[[0,0],[1,1],[2,0]]}`), geom.CRS84)
	require.NoError(t, err)
	ls, ok := g.(geom.LineString)
	require.True(t, ok)
	require.Len(t, ls.Positions(), 3)
}

func TestParseGeometryPolygonWithHole(t *testing.T) {
	data := []byte(`{
		"type":"Polygon",
		"coordinates":[
			[[-10,-10],[10,-10],[10,10],[-10,10],[-10,-10]],
			[[-1,-1],[1,-1],[1,1],[-1,1],[-1,-1]]
		]
	}`)
	g, err := jsonfg.ParseGeometry(data, geom.CRS84)
	require.NoError(t, err)
	p, ok := g.(geom.Polygon)
	require.True(t, ok)
	require.Len(t, p.Rings(), 2)
	require.Len(t, p.Holes(), 1)
}

func TestParseGeometryCollection(t *testing.T) {
	data := []byte(`{
		"type":"GeometryCollection",
		"geometries":[
			{"type":"Point","coordinates":[0,0]},
			{"type":"LineString","coordinates":[[0,0],[1,1]]}
		]
	}`)
	g, err := jsonfg.ParseGeometry(data, geom.CRS84)
	require.NoError(t, err)
	gc, ok := g.(geom.GeometryCollection)
	require.True(t, ok)
	require.Len(t, gc.Geometries(), 2)
}

func TestParseGeometryRejectsUnrecognizedCRS(t *testing.T) {
	_, err := jsonfg.ParseGeometry([]byte(`{"type":"Point","coordinates":[0,0]}`), geom.CRS("bogus"))
	require.Error(t, err)
}

func TestNewFeatureCRS84PlacesGeometry(t *testing.T) {
	pos, err := geom.NewPosition(10, 20)
	require.NoError(t, err)
	pt, err := geom.NewPoint(pos, geom.CRS84)
	require.NoError(t, err)

	f, err := jsonfg.NewFeature(pt, map[string]any{"name": "x"})
	require.NoError(t, err)
	require.Equal(t, "Feature", f.Type)
	require.JSONEq(t, `{"type":"Point","coordinates":[10,20]}`, string(f.Geometry))
	require.JSONEq(t, `null`, string(f.Place))
	require.Empty(t, f.CoordRefSys)

	b, err := f.Marshal()
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Contains(t, decoded, "geometry")
}

func TestNewFeatureNonDefaultCRSPlacesPlace(t *testing.T) {
	pos, err := geom.NewPosition(0, 0)
	require.NoError(t, err)
	pt, err := geom.NewPoint(pos, geom.WebMercator)
	require.NoError(t, err)

	f, err := jsonfg.NewFeature(pt, nil)
	require.NoError(t, err)
	require.JSONEq(t, `null`, string(f.Geometry))
	require.JSONEq(t, `{"type":"Point","coordinates":[0,0]}`, string(f.Place))
	require.JSONEq(t, `"`+string(geom.WebMercator)+`"`, string(f.CoordRefSys))
}

func TestRoundTripPolygon(t *testing.T) {
	data := []byte(`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`)
	g, err := jsonfg.ParseGeometry(data, geom.CRS84)
	require.NoError(t, err)

	f, err := jsonfg.NewFeature(g, nil)
	require.NoError(t, err)

	g2, err := jsonfg.ParseGeometry(f.Geometry, geom.CRS84)
	require.NoError(t, err)
	require.Equal(t, g.BBox(), g2.BBox())
}
