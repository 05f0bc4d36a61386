package sweep

import (
	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmsmath"
	"github.com/joeblew999/plat-tms/internal/tmsvalidate"
)

// MinimalBoundingTile implements spec.md §4.3: the single smallest tile,
// across every level of tms, whose cell fully contains bbox. It returns
// ok=false if no level both covers bbox (bbox inside that level's world
// extent) and holds it within a single cell.
func MinimalBoundingTile(bbox geom.BBox, crs geom.CRS, tms tilematrix.TileMatrixSet, metatile tilematrix.Metatile) (tilematrix.TileMatrixLimits, bool, error) {
	if err := tmsvalidate.CRSMatch(crs, tms); err != nil {
		return tilematrix.TileMatrixLimits{}, false, err
	}
	if err := tmsvalidate.Metatile(metatile); err != nil {
		return tilematrix.TileMatrixLimits{}, false, err
	}

	// Scan every level in the order tms lists them and keep the
	// containing match with the smallest tile area (the finest level;
	// the first one found wins a tie), so the result does not depend on
	// the registry's level order.
	var best tilematrix.TileMatrix
	var bestLimits tilematrix.TileMatrixLimits
	found := false

	for _, tm := range tms.Levels {
		world := tmsmath.TileMatrixBBox(tm)
		if !world.Contains(bbox) {
			continue
		}
		tileW := tmsmath.TileEffectiveWidth(tm, metatile)
		tileH := tmsmath.TileEffectiveHeight(tm, metatile)

		nw := geom.Position{East: bbox.MinEast, North: bbox.MaxNorth}
		se := geom.Position{East: bbox.MaxEast, North: bbox.MinNorth}
		nwIdx, err := tmsmath.PositionToTileIndex(nw, tm, tilematrix.None, metatile)
		if err != nil {
			continue
		}
		seIdx, err := tmsmath.PositionToTileIndex(se, tm, tilematrix.Both, metatile)
		if err != nil {
			continue
		}
		if nwIdx.Col != seIdx.Col || nwIdx.Row != seIdx.Row {
			// bbox spans more than one cell at this level; not a
			// candidate for the single-tile minimal bound.
			continue
		}

		if !found || tileW*tileH < tmsmath.TileEffectiveWidth(best, metatile)*tmsmath.TileEffectiveHeight(best, metatile) {
			found = true
			best = tm
			bestLimits = tilematrix.TileMatrixLimits{
				TileMatrixID: tm.ID,
				MinTileCol:   nwIdx.Col, MaxTileCol: nwIdx.Col,
				MinTileRow: nwIdx.Row, MaxTileRow: nwIdx.Row,
			}
		}
	}

	return bestLimits, found, nil
}
