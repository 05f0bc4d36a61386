// Package tmsmath implements the tile-matrix math collaborator contract
// from spec.md §4.1: cell size, world bbox, position-to-tile-index and
// bbox clamping. Grounded on the tile-index <-> world-coordinate
// arithmetic of mercantile's Ul/Bounds/Xy/XyBounds
// (_examples/other_examples/1145a041_MarcelCode-mercantile) generalized
// from a fixed web-Mercator quad to an arbitrary-origin,
// arbitrary-corner-of-origin tile matrix with metatile support.
package tmsmath

import (
	"math"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmserr"
)

// TileEffectiveWidth returns the CRS-unit width of one metatile-scaled tile.
func TileEffectiveWidth(tm tilematrix.TileMatrix, metatile tilematrix.Metatile) float64 {
	return tm.TileEffectiveWidth() * float64(metatile)
}

// TileEffectiveHeight returns the CRS-unit height of one metatile-scaled tile.
func TileEffectiveHeight(tm tilematrix.TileMatrix, metatile tilematrix.Metatile) float64 {
	return tm.TileEffectiveHeight() * float64(metatile)
}

// TileMatrixBBox returns the world bbox covered by the matrix, derived
// from (origin, matrix dims, tile effective width/height,
// corner-of-origin) per spec.md §3's invariant.
func TileMatrixBBox(tm tilematrix.TileMatrix) geom.BBox {
	w := tm.TileEffectiveWidth() * float64(tm.MatrixWidth)
	h := tm.TileEffectiveHeight() * float64(tm.MatrixHeight)

	switch tm.CornerOfOrigin {
	case tilematrix.BottomLeft:
		return geom.BBox{
			MinEast:  tm.OriginEast,
			MinNorth: tm.OriginNorth,
			MaxEast:  tm.OriginEast + w,
			MaxNorth: tm.OriginNorth + h,
		}
	default: // TopLeft
		return geom.BBox{
			MinEast:  tm.OriginEast,
			MinNorth: tm.OriginNorth - h,
			MaxEast:  tm.OriginEast + w,
			MaxNorth: tm.OriginNorth,
		}
	}
}

// ClampBBoxToTileMatrix clips bbox to the matrix's world bbox. The
// metatile argument is ignored (metatile never changes the world bbox,
// only the cell grid, so it is accepted here purely for contract
// symmetry with spec.md §4.1).
func ClampBBoxToTileMatrix(bbox geom.BBox, tm tilematrix.TileMatrix, _ tilematrix.Metatile) geom.BBox {
	return bbox.ClampTo(TileMatrixBBox(tm))
}

// PositionToTileIndex converts a world position to a (col, row) tile
// index within tm, honoring the reverse-intersection policy for
// positions exactly on a tile boundary. Positions outside the matrix's
// world bbox fail with a Range error.
func PositionToTileIndex(pos geom.Position, tm tilematrix.TileMatrix, policy tilematrix.ReverseIntersectionPolicy, metatile tilematrix.Metatile) (tilematrix.TileIndex, error) {
	world := TileMatrixBBox(tm)
	const eps = 1e-9
	if pos.East < world.MinEast-eps || pos.East > world.MaxEast+eps {
		return tilematrix.TileIndex{}, tmserr.Rangef("east %v outside matrix %q world bbox [%v, %v]", pos.East, tm.ID, world.MinEast, world.MaxEast)
	}
	if pos.North < world.MinNorth-eps || pos.North > world.MaxNorth+eps {
		return tilematrix.TileIndex{}, tmserr.Rangef("north %v outside matrix %q world bbox [%v, %v]", pos.North, tm.ID, world.MinNorth, world.MaxNorth)
	}

	tileW := TileEffectiveWidth(tm, metatile)
	tileH := TileEffectiveHeight(tm, metatile)

	// Column always increases eastward from the matrix's west edge.
	colFrac := (pos.East - world.MinEast) / tileW
	col := floorWithPolicy(colFrac, policyBreaksCol(policy))

	var rowFrac float64
	switch tm.CornerOfOrigin {
	case tilematrix.BottomLeft:
		// Row increases northward from the matrix's south edge.
		rowFrac = (pos.North - world.MinNorth) / tileH
	default: // TopLeft: row increases southward from the matrix's north edge.
		rowFrac = (world.MaxNorth - pos.North) / tileH
	}
	row := floorWithPolicy(rowFrac, policyBreaksRow(policy))

	maxCol := int(math.Ceil(float64(tm.MatrixWidth) / float64(metatile)))
	maxRow := int(math.Ceil(float64(tm.MatrixHeight) / float64(metatile)))
	if col >= maxCol {
		col = maxCol - 1
	}
	if row >= maxRow {
		row = maxRow - 1
	}
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}

	return tilematrix.TileIndex{Col: col, Row: row}, nil
}

func policyBreaksCol(p tilematrix.ReverseIntersectionPolicy) bool {
	return p == tilematrix.Col || p == tilematrix.Both
}

func policyBreaksRow(p tilematrix.ReverseIntersectionPolicy) bool {
	return p == tilematrix.Row || p == tilematrix.Both
}

// floorWithPolicy computes the tile index along one axis from a
// fractional tile-count frac. When frac lands exactly on an integer
// boundary, breakToLower selects whether the position belongs to the
// lower-index tile (true) or the higher-index tile (false, the "none"
// default per spec.md §4.1).
func floorWithPolicy(frac float64, breakToLower bool) int {
	floor := math.Floor(frac)
	if frac == floor {
		// Exactly on a boundary.
		if breakToLower {
			return int(floor) - 1
		}
		return int(floor)
	}
	return int(floor)
}

// AvoidNegativeZero normalizes -0 to 0. Re-exported from geom for
// callers that only import tmsmath.
func AvoidNegativeZero(x float64) float64 { return geom.AvoidNegativeZero(x) }
