package gotiler

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestLngLatToMercatorOriginIsZero(t *testing.T) {
	x, y := lngLatToMercator(0, 0)
	require.InDelta(t, 0, x, 1e-6)
	require.InDelta(t, 0, y, 1e-6)
}

func TestLngLatToMercatorClampsPoles(t *testing.T) {
	_, y := lngLatToMercator(0, 89)
	_, yClamped := lngLatToMercator(0, maxMercatorLat)
	require.InDelta(t, yClamped, y, 1e-9)
}

func TestTilesInBoundsPointReturnsSingleTile(t *testing.T) {
	tiles := tilesInBounds(orb.Point{-122.4, 37.8}, 10)
	require.Len(t, tiles, 1)
}

func TestTilesInBoundsPolygonNarrowerThanRectangle(t *testing.T) {
	// An L-shaped polygon whose bounding rectangle is a full square but
	// whose actual area only covers three of its four quadrants.
	poly := orb.Polygon{orb.Ring{
		{-10, -10}, {10, -10}, {10, 0}, {0, 0}, {0, 10}, {-10, 10}, {-10, -10},
	}}

	lShaped := tilesInBounds(poly, 6)
	rect := tilesInBoundsRect(poly.Bound(), 6)
	require.NotEmpty(t, lShaped)
	require.LessOrEqual(t, len(lShaped), len(rect))
}

func TestTilesInBoundsMultiPolygonSweepsEachMember(t *testing.T) {
	mp := orb.MultiPolygon{
		{orb.Ring{{-170, -80}, {-160, -80}, {-160, -70}, {-170, -70}, {-170, -80}}},
		{orb.Ring{{160, 70}, {170, 70}, {170, 80}, {160, 80}, {160, 70}}},
	}

	tiles := tilesInBounds(mp, 4)
	require.NotEmpty(t, tiles)

	rect := tilesInBoundsRect(mp.Bound(), 4)
	require.LessOrEqual(t, len(tiles), len(rect))
}
