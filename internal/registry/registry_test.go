package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/registry"
	"github.com/joeblew999/plat-tms/internal/tmsmath"
)

func TestBuiltinSetsRegistered(t *testing.T) {
	r := registry.New()

	world, err := r.Get("WorldCRS84Quad")
	require.NoError(t, err)
	require.Equal(t, string(geom.CRS84), world.CRS)

	merc, err := r.Get("WebMercatorQuad")
	require.NoError(t, err)
	require.Equal(t, string(geom.WebMercator), merc.CRS)

	require.ElementsMatch(t, []string{"WorldCRS84Quad", "WebMercatorQuad"}, r.IDs())
}

func TestWorldCRS84QuadZoom0CoversWholeWorld(t *testing.T) {
	tms := registry.WorldCRS84Quad(2)
	tm, ok := tms.MatrixByID("0")
	require.True(t, ok)
	require.Equal(t, 2, tm.MatrixWidth)
	require.Equal(t, 1, tm.MatrixHeight)

	world := tmsmath.TileMatrixBBox(tm)
	require.InDelta(t, -180, world.MinEast, 1e-9)
	require.InDelta(t, 180, world.MaxEast, 1e-9)
	require.InDelta(t, -90, world.MinNorth, 1e-9)
	require.InDelta(t, 90, world.MaxNorth, 1e-9)
}

func TestWebMercatorQuadZoomsDoubleMatrixDims(t *testing.T) {
	tms := registry.WebMercatorQuad(3)
	tm0, _ := tms.MatrixByID("0")
	tm1, _ := tms.MatrixByID("1")
	require.Equal(t, tm0.MatrixWidth*2, tm1.MatrixWidth)
	require.Equal(t, tm0.MatrixHeight*2, tm1.MatrixHeight)
}

func TestUnknownSetIsError(t *testing.T) {
	r := registry.New()
	_, err := r.Get("does-not-exist")
	require.Error(t, err)
}

func TestLoadMissingDirIsNotAnError(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Load(t.TempDir()))
}

func TestLoadCustomYAML(t *testing.T) {
	dataDir := t.TempDir()
	tmsDir := filepath.Join(dataDir, "tms")
	require.NoError(t, os.MkdirAll(tmsDir, 0o755))

	doc := `
id: custom-grid
crs: http://www.opengis.net/def/crs/OGC/1.3/CRS84
title: Custom Test Grid
tileMatrices:
  - id: "0"
    scaleDenominator: 1
    cellSize: 1
    matrixWidth: 4
    matrixHeight: 4
    tileWidthPixels: 90
    tileHeightPixels: 45
    originEast: -180
    originNorth: 90
    cornerOfOrigin: topLeft
`
	require.NoError(t, os.WriteFile(filepath.Join(tmsDir, "custom.yaml"), []byte(doc), 0o644))

	r := registry.New()
	require.NoError(t, r.Load(dataDir))

	tms, err := r.Get("custom-grid")
	require.NoError(t, err)
	require.Len(t, tms.Levels, 1)
	require.Equal(t, 4, tms.Levels[0].MatrixWidth)
}
