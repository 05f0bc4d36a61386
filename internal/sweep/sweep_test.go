package sweep_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/sweep"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmserr"
)

// testTMS is a small 4x4 CRS84-shaped grid, topLeft origin, one raw tile
// per cell: columns split -180..180 into 90-unit bands, rows split
// -90..90 into 45-unit bands. Clean numbers make the expected tile
// indices easy to hand-verify.
func testTMS() tilematrix.TileMatrixSet {
	tm := tilematrix.TileMatrix{
		ID:               "0",
		ScaleDenominator: 1,
		MatrixWidth:      4,
		MatrixHeight:     4,
		TileWidthPixels:  90,
		TileHeightPixels: 45,
		OriginEast:       -180,
		OriginNorth:      90,
		CornerOfOrigin:   tilematrix.TopLeft,
		CellSize:         1,
	}
	return tilematrix.NewTileMatrixSet("test", string(geom.CRS84), "test grid", []tilematrix.TileMatrix{tm})
}

func ring(t *testing.T, positions [][2]float64) geom.Polygon {
	t.Helper()
	pts := make([]geom.Position, len(positions))
	for i, p := range positions {
		pts[i] = geom.Position{East: p[0], North: p[1]}
	}
	poly, err := geom.NewPolygon([][]geom.Position{pts}, geom.CRS84)
	require.NoError(t, err)
	return poly
}

func polygonWithHole(t *testing.T, outer, hole [][2]float64) geom.Polygon {
	t.Helper()
	toPts := func(ps [][2]float64) []geom.Position {
		out := make([]geom.Position, len(ps))
		for i, p := range ps {
			out[i] = geom.Position{East: p[0], North: p[1]}
		}
		return out
	}
	poly, err := geom.NewPolygon([][]geom.Position{toPts(outer), toPts(hole)}, geom.CRS84)
	require.NoError(t, err)
	return poly
}

func collect(t *testing.T, c *sweep.Cursor) []tilematrix.TileMatrixLimits {
	t.Helper()
	out, err := sweep.Collect(c)
	require.NoError(t, err)
	return out
}

// S1: a single point resolves to exactly one tile.
func TestPointShortcut(t *testing.T) {
	tms := testTMS()
	pos, err := geom.NewPosition(10, 10)
	require.NoError(t, err)
	pt, err := geom.NewPoint(pos, geom.CRS84)
	require.NoError(t, err)

	cur, err := sweep.ToTileMatrixLimits(pt, tms, "0", 1)
	require.NoError(t, err)
	got := collect(t, cur)

	require.Equal(t, []tilematrix.TileMatrixLimits{
		{TileMatrixID: "0", MinTileCol: 2, MaxTileCol: 2, MinTileRow: 1, MaxTileRow: 1},
	}, got)
}

// S2: an axis-aligned bbox exactly covering tile-grid lines snaps to a
// dense rectangle, no sweep needed.
func TestBBoxShortcut(t *testing.T) {
	tms := testTMS()
	bbox := geom.BBox{MinEast: -90, MaxEast: 90, MinNorth: -45, MaxNorth: 45}

	cur, err := sweep.BBoxToTileMatrixLimits(bbox, geom.CRS84, tms, "0", 1)
	require.NoError(t, err)
	got := collect(t, cur)

	require.Equal(t, []tilematrix.TileMatrixLimits{
		{TileMatrixID: "0", MinTileCol: 1, MaxTileCol: 2, MinTileRow: 1, MaxTileRow: 2},
	}, got)
}

// S3: a small triangle fully inside one strip and one column resolves
// to exactly that tile.
func TestTrianglePolygon(t *testing.T) {
	tms := testTMS()
	tri := ring(t, [][2]float64{{10, 10}, {80, 10}, {80, 40}, {10, 10}})

	cur, err := sweep.ToTileMatrixLimits(tri, tms, "0", 1)
	require.NoError(t, err)
	got := collect(t, cur)

	require.Equal(t, []tilematrix.TileMatrixLimits{
		{TileMatrixID: "0", MinTileCol: 2, MaxTileCol: 2, MinTileRow: 1, MaxTileRow: 1},
	}, got)
}

// S4: a "house" polygon (square base + triangular roof) has a raw bbox
// 88 wide x 79 tall, wider than it is tall, so per spec.md §4.4 step 2
// the engine sweeps by rows: two row strips, each resolving to the same
// single column since the whole shape sits inside it.
func TestHousePolygon(t *testing.T) {
	tms := testTMS()
	house := ring(t, [][2]float64{
		{1, -40}, {89, -40}, {89, -1}, {45, 39}, {1, -1}, {1, -40},
	})

	cur, err := sweep.ToTileMatrixLimits(house, tms, "0", 1)
	require.NoError(t, err)
	got := collect(t, cur)

	require.Equal(t, []tilematrix.TileMatrixLimits{
		{TileMatrixID: "0", MinTileCol: 2, MaxTileCol: 2, MinTileRow: 1, MaxTileRow: 1},
		{TileMatrixID: "0", MinTileCol: 2, MaxTileCol: 2, MinTileRow: 2, MaxTileRow: 2},
	}, got)
}

// S5: a polygon with a hole excludes the hole's tiles from the middle
// of an otherwise contiguous row.
func TestPolygonWithHole(t *testing.T) {
	tms := testTMS()
	poly := polygonWithHole(t,
		[][2]float64{{-180, -90}, {180, -90}, {180, 90}, {-180, 90}, {-180, -90}},
		[][2]float64{{-90, 10}, {90, 10}, {90, 35}, {-90, 35}, {-90, 10}},
	)

	cur, err := sweep.ToTileMatrixLimits(poly, tms, "0", 1)
	require.NoError(t, err)
	got := collect(t, cur)

	// Row1 (north (0,45]) has the hole removing the two middle columns
	// entirely: the outer ring's full-width range splits into col [0,0]
	// and col [3,3].
	var row1 []tilematrix.TileMatrixLimits
	for _, l := range got {
		if l.MinTileRow == 1 {
			row1 = append(row1, l)
		}
	}
	require.Len(t, row1, 2)

	// Every other row is untouched and covers the full width.
	for _, l := range got {
		if l.MinTileRow != 1 {
			require.Equal(t, 0, l.MinTileCol)
			require.Equal(t, 3, l.MaxTileCol)
		}
	}
}

// Scenario S6 of spec.md §8: a bbox extending outside the matrix's
// world bbox must fail with a RangeError naming the out-of-range
// coordinate, not silently clamp to something inside it.
func TestOutOfRangeBBoxIsRangeError(t *testing.T) {
	tms := testTMS()
	bbox := geom.BBox{MinEast: -190, MinNorth: -30, MaxEast: 40, MaxNorth: 30}

	_, err := sweep.BBoxToTileMatrixLimits(bbox, geom.CRS84, tms, "0", 1)
	require.Error(t, err)
	require.True(t, tmserr.Is(err, tmserr.Range))
	require.Contains(t, err.Error(), "-190")
}

// Determinism: re-running the sweep over the same geometry yields the
// identical sequence of limits.
func TestDeterminism(t *testing.T) {
	tms := testTMS()
	house := ring(t, [][2]float64{
		{1, -40}, {89, -40}, {89, -1}, {45, 39}, {1, -1}, {1, -40},
	})

	cur1, err := sweep.ToTileMatrixLimits(house, tms, "0", 1)
	require.NoError(t, err)
	cur2, err := sweep.ToTileMatrixLimits(house, tms, "0", 1)
	require.NoError(t, err)

	require.Equal(t, collect(t, cur1), collect(t, cur2))
}

// Every yielded limit must be internally valid (min <= max, in bounds).
func TestLimitsAreValid(t *testing.T) {
	tms := testTMS()
	tm, _ := tms.MatrixByID("0")
	poly := polygonWithHole(t,
		[][2]float64{{-180, -90}, {180, -90}, {180, 90}, {-180, 90}, {-180, -90}},
		[][2]float64{{-45, 10}, {45, 10}, {45, 35}, {-45, 35}, {-45, 10}},
	)

	cur, err := sweep.ToTileMatrixLimits(poly, tms, "0", 1)
	require.NoError(t, err)
	for _, l := range collect(t, cur) {
		require.NoError(t, l.Validate(tm))
	}
}

// GeometryCollection is rejected outright, per spec.md §9.
func TestGeometryCollectionRejected(t *testing.T) {
	tms := testTMS()
	pos, err := geom.NewPosition(0, 0)
	require.NoError(t, err)
	pt, err := geom.NewPoint(pos, geom.CRS84)
	require.NoError(t, err)
	gc, err := geom.NewGeometryCollection([]geom.Geometry{pt}, geom.CRS84)
	require.NoError(t, err)

	_, err = sweep.ToTileMatrixLimits(gc, tms, "0", 1)
	require.Error(t, err)
}

// CRS mismatch fails eagerly before any strip is computed.
func TestCRSMismatchRejected(t *testing.T) {
	tms := testTMS()
	pos, err := geom.NewPosition(0, 0)
	require.NoError(t, err)
	pt, err := geom.NewPoint(pos, geom.WebMercator)
	require.NoError(t, err)

	_, err = sweep.ToTileMatrixLimits(pt, tms, "0", 1)
	require.Error(t, err)
}

func TestMinimalBoundingTile(t *testing.T) {
	tms := testTMS()
	bbox := geom.BBox{MinEast: 10, MaxEast: 20, MinNorth: 10, MaxNorth: 20}

	limits, ok, err := sweep.MinimalBoundingTile(bbox, geom.CRS84, tms, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tilematrix.TileMatrixLimits{
		TileMatrixID: "0", MinTileCol: 2, MaxTileCol: 2, MinTileRow: 1, MaxTileRow: 1,
	}, limits)
}
