// Package tilerange implements the bounding-box -> dense tile range
// component of spec.md §4.5: snap a bbox to the tile grid, convert to a
// dense rectangular (col, row) iterator, and its inverse
// tileRange -> BoundingBox mapping. Grounded on the teacher's
// internal/tiler/gotiler.go tilesInBounds corner-lookup + double-loop
// pattern, generalized to respect corner-of-origin and metatile.
package tilerange

import (
	"math"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmsmath"
)

// TileRange is a dense rectangle of tile indices within one matrix.
type TileRange struct {
	TileMatrixID string
	MinCol       int
	MaxCol       int
	MinRow       int
	MaxRow       int
}

// Limits converts the range to a TileMatrixLimits value.
func (r TileRange) Limits() tilematrix.TileMatrixLimits {
	return tilematrix.TileMatrixLimits{
		TileMatrixID: r.TileMatrixID,
		MinTileCol:   r.MinCol,
		MaxTileCol:   r.MaxCol,
		MinTileRow:   r.MinRow,
		MaxTileRow:   r.MaxRow,
	}
}

// Each calls fn for every (col, row) in the rectangle, in row-major
// order (row outer, col inner), by convention.
func (r TileRange) Each(fn func(col, row int)) {
	for row := r.MinRow; row <= r.MaxRow; row++ {
		for col := r.MinCol; col <= r.MaxCol; col++ {
			fn(col, row)
		}
	}
}

// Count returns the number of tiles the range covers.
func (r TileRange) Count() int {
	return (r.MaxCol - r.MinCol + 1) * (r.MaxRow - r.MinRow + 1)
}

// snapMin floors v to the nearest lower multiple of tileSize measured
// from origin.
func snapMin(v, origin, tileSize float64) float64 {
	n := math.Floor((v - origin) / tileSize)
	return geom.AvoidNegativeZero(origin + n*tileSize)
}

// snapMax ceils v to the nearest higher multiple of tileSize measured
// from origin.
func snapMax(v, origin, tileSize float64) float64 {
	n := math.Ceil((v - origin) / tileSize)
	return geom.AvoidNegativeZero(origin + n*tileSize)
}

// Snap clamps bbox to the matrix's world bbox, then expands each corner
// outward to the nearest tile-cell boundary (the "expandToTileMatrixCells"
// contract of spec.md §6).
func Snap(bbox geom.BBox, tm tilematrix.TileMatrix, metatile tilematrix.Metatile) geom.BBox {
	clamped := tmsmath.ClampBBoxToTileMatrix(bbox, tm, metatile)
	world := tmsmath.TileMatrixBBox(tm)
	tileW := tmsmath.TileEffectiveWidth(tm, metatile)
	tileH := tmsmath.TileEffectiveHeight(tm, metatile)

	return geom.BBox{
		MinEast:  snapMin(clamped.MinEast, world.MinEast, tileW),
		MaxEast:  snapMax(clamped.MaxEast, world.MinEast, tileW),
		MinNorth: snapMin(clamped.MinNorth, world.MinNorth, tileH),
		MaxNorth: snapMax(clamped.MaxNorth, world.MinNorth, tileH),
	}
}

// ToTileRange snaps bbox and computes the dense tile range covering it,
// using reverse policy `none` at the NW corner and `col,row` at the SE
// corner so the last row/column is inclusive, per spec.md §4.5.
func ToTileRange(bbox geom.BBox, tms tilematrix.TileMatrixSet, tileMatrixID string, metatile tilematrix.Metatile) (TileRange, error) {
	tm, ok := tms.MatrixByID(tileMatrixID)
	if !ok {
		return TileRange{}, invalidMatrixID(tileMatrixID)
	}

	snapped := Snap(bbox, tm, metatile)

	minIdx, maxIdx, err := cornerIndices(snapped, tm, metatile)
	if err != nil {
		return TileRange{}, err
	}

	return TileRange{
		TileMatrixID: tileMatrixID,
		MinCol:       min(minIdx.Col, maxIdx.Col),
		MaxCol:       max(minIdx.Col, maxIdx.Col),
		MinRow:       min(minIdx.Row, maxIdx.Row),
		MaxRow:       max(minIdx.Row, maxIdx.Row),
	}, nil
}

func cornerIndices(bbox geom.BBox, tm tilematrix.TileMatrix, metatile tilematrix.Metatile) (tilematrix.TileIndex, tilematrix.TileIndex, error) {
	// NW corner: west edge, north edge -> "none" policy (inward).
	nw := geom.Position{East: bbox.MinEast, North: bbox.MaxNorth}
	minIdx, err := tmsmath.PositionToTileIndex(nw, tm, tilematrix.None, metatile)
	if err != nil {
		return tilematrix.TileIndex{}, tilematrix.TileIndex{}, err
	}

	// SE corner: east edge, south edge -> "col,row" policy (inclusive of
	// the last row/column).
	se := geom.Position{East: bbox.MaxEast, North: bbox.MinNorth}
	maxIdx, err := tmsmath.PositionToTileIndex(se, tm, tilematrix.Both, metatile)
	if err != nil {
		return tilematrix.TileIndex{}, tilematrix.TileIndex{}, err
	}

	return minIdx, maxIdx, nil
}

// ToBBox is the inverse mapping: the world bbox covered by a tile range.
func ToBBox(r TileRange, tms tilematrix.TileMatrixSet, metatile tilematrix.Metatile) (geom.BBox, error) {
	tm, ok := tms.MatrixByID(r.TileMatrixID)
	if !ok {
		return geom.BBox{}, invalidMatrixID(r.TileMatrixID)
	}
	world := tmsmath.TileMatrixBBox(tm)
	tileW := tmsmath.TileEffectiveWidth(tm, metatile)
	tileH := tmsmath.TileEffectiveHeight(tm, metatile)

	minEast := world.MinEast + float64(r.MinCol)*tileW
	maxEast := world.MinEast + float64(r.MaxCol+1)*tileW

	var minNorth, maxNorth float64
	switch tm.CornerOfOrigin {
	case tilematrix.BottomLeft:
		minNorth = world.MinNorth + float64(r.MinRow)*tileH
		maxNorth = world.MinNorth + float64(r.MaxRow+1)*tileH
	default: // TopLeft
		maxNorth = world.MaxNorth - float64(r.MinRow)*tileH
		minNorth = world.MaxNorth - float64(r.MaxRow+1)*tileH
	}

	return geom.BBox{
		MinEast:  geom.AvoidNegativeZero(minEast),
		MaxEast:  geom.AvoidNegativeZero(maxEast),
		MinNorth: geom.AvoidNegativeZero(minNorth),
		MaxNorth: geom.AvoidNegativeZero(maxNorth),
	}, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
