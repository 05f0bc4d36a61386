package sweep

import (
	"math"
	"sort"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmsmath"
)

// stripPlan holds everything needed to enumerate strips and turn their
// dim2 ranges into tile limits, computed once per cursor.
type stripPlan struct {
	tm       tilematrix.TileMatrix
	metatile tilematrix.Metatile
	isWide   bool
	world    geom.BBox
	tileW    float64
	tileH    float64

	minIdx, maxIdx int // dim1 tile index range (row if isWide, col if !isWide)
}

func newStripPlan(clamped geom.BBox, tm tilematrix.TileMatrix, metatile tilematrix.Metatile, isWide bool) (stripPlan, error) {
	world := tmsmath.TileMatrixBBox(tm)
	plan := stripPlan{
		tm:       tm,
		metatile: metatile,
		isWide:   isWide,
		world:    world,
		tileW:    tmsmath.TileEffectiveWidth(tm, metatile),
		tileH:    tmsmath.TileEffectiveHeight(tm, metatile),
	}

	if isWide {
		var startNorth, endNorth float64
		if tm.CornerOfOrigin == tilematrix.BottomLeft {
			startNorth, endNorth = clamped.MinNorth, clamped.MaxNorth
		} else {
			startNorth, endNorth = clamped.MaxNorth, clamped.MinNorth
		}
		startIdx, err := tmsmath.PositionToTileIndex(geom.Position{East: clamped.MinEast, North: startNorth}, tm, tilematrix.None, metatile)
		if err != nil {
			return stripPlan{}, err
		}
		endIdx, err := tmsmath.PositionToTileIndex(geom.Position{East: clamped.MinEast, North: endNorth}, tm, tilematrix.Row, metatile)
		if err != nil {
			return stripPlan{}, err
		}
		plan.minIdx, plan.maxIdx = minInt(startIdx.Row, endIdx.Row), maxInt(startIdx.Row, endIdx.Row)
		return plan, nil
	}

	startIdx, err := tmsmath.PositionToTileIndex(geom.Position{East: clamped.MinEast, North: clamped.MinNorth}, tm, tilematrix.None, metatile)
	if err != nil {
		return stripPlan{}, err
	}
	endIdx, err := tmsmath.PositionToTileIndex(geom.Position{East: clamped.MaxEast, North: clamped.MinNorth}, tm, tilematrix.Col, metatile)
	if err != nil {
		return stripPlan{}, err
	}
	plan.minIdx, plan.maxIdx = minInt(startIdx.Col, endIdx.Col), maxInt(startIdx.Col, endIdx.Col)
	return plan, nil
}

// interval returns the strip's [lo, hi] bound on dim1 (CRS units) for
// the strip at tile index idx.
func (p stripPlan) interval(idx int) (lo, hi float64) {
	if p.isWide {
		if p.tm.CornerOfOrigin == tilematrix.BottomLeft {
			lo = p.world.MinNorth + float64(idx)*p.tileH
			hi = lo + p.tileH
			return
		}
		hi = p.world.MaxNorth - float64(idx)*p.tileH
		lo = hi - p.tileH
		return
	}
	lo = p.world.MinEast + float64(idx)*p.tileW
	hi = lo + p.tileW
	return
}

// limitsForRanges converts the merged dim2 ranges of one strip at tile
// index idx into tile limits, then merges adjacent (index-touching)
// limits per spec.md §4.4 step 10.
func (p stripPlan) limitsForRanges(idx int, ranges []dim2Interval) ([]tilematrix.TileMatrixLimits, error) {
	type bound struct{ min, max int }
	bounds := make([]bound, 0, len(ranges))

	for _, r := range ranges {
		minSub, maxSub, err := p.dim2Indices(r.lo, r.hi)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, bound{min: minSub, max: maxSub})
	}

	sort.Slice(bounds, func(i, j int) bool { return bounds[i].min < bounds[j].min })

	var merged []bound
	for _, b := range bounds {
		if len(merged) > 0 && b.min <= merged[len(merged)-1].max+1 {
			last := &merged[len(merged)-1]
			if b.max > last.max {
				last.max = b.max
			}
			continue
		}
		merged = append(merged, b)
	}

	out := make([]tilematrix.TileMatrixLimits, 0, len(merged))
	for _, b := range merged {
		if p.isWide {
			out = append(out, tilematrix.TileMatrixLimits{
				TileMatrixID: p.tm.ID,
				MinTileRow:   idx, MaxTileRow: idx,
				MinTileCol: b.min, MaxTileCol: b.max,
			})
		} else {
			out = append(out, tilematrix.TileMatrixLimits{
				TileMatrixID: p.tm.ID,
				MinTileCol:   idx, MaxTileCol: idx,
				MinTileRow: b.min, MaxTileRow: b.max,
			})
		}
	}
	return out, nil
}

// dim2Indices converts a [lo, hi] CRS-unit range on dim2 into a tile
// index range. The low endpoint resolves with policy `none` and the high
// endpoint with the axis's reverse policy, so a range ending exactly on a
// tile boundary (the matrix's max-side bound included) stops at the tile
// below it, and a zero-width range lying exactly on an interior tile
// boundary yields the two tiles either side of it. onGridBound tests for
// any grid line, so the degenerate branch below is taken only for a
// zero-width range off the grid, where the policy does not change the
// resulting index.
func (p stripPlan) dim2Indices(lo, hi float64) (int, int, error) {
	var worldMin, worldMax, tileSize float64
	var axisBreak tilematrix.ReverseIntersectionPolicy
	if p.isWide {
		worldMin, worldMax, tileSize, axisBreak = p.world.MinEast, p.world.MaxEast, p.tileW, tilematrix.Col
	} else {
		worldMin, worldMax, tileSize, axisBreak = p.world.MinNorth, p.world.MaxNorth, p.tileH, tilematrix.Row
	}

	degenerate := lo == hi
	onMin := onGridBound(lo, worldMin, tileSize)
	onMax := onGridBound(hi, worldMax, tileSize)

	policyLo := tilematrix.None
	policyHi := axisBreak
	if degenerate && !onMin && !onMax {
		policyLo = axisBreak
		policyHi = axisBreak
	}

	// Row axis policies are expressed via the row-half of the policy;
	// column axis policies via the col-half. PositionToTileIndex only
	// looks at the half matching the axis it's resolving, so passing
	// the same `axisBreak`/`None` value through for both east and north
	// coordinates of the probe position is safe.
	var loPos, hiPos geom.Position
	if p.isWide {
		loPos = geom.Position{East: lo, North: p.world.MinNorth}
		hiPos = geom.Position{East: hi, North: p.world.MinNorth}
	} else {
		loPos = geom.Position{East: p.world.MinEast, North: lo}
		hiPos = geom.Position{East: p.world.MinEast, North: hi}
	}

	loIdx, err := tmsmath.PositionToTileIndex(loPos, p.tm, policyLo, p.metatile)
	if err != nil {
		return 0, 0, err
	}
	hiIdx, err := tmsmath.PositionToTileIndex(hiPos, p.tm, policyHi, p.metatile)
	if err != nil {
		return 0, 0, err
	}

	if p.isWide {
		return minInt(loIdx.Col, hiIdx.Col), maxInt(loIdx.Col, hiIdx.Col), nil
	}
	return minInt(loIdx.Row, hiIdx.Row), maxInt(loIdx.Row, hiIdx.Row), nil
}

func onGridBound(v, bound, tileSize float64) bool {
	const tol = 1e-6
	n := (v - bound) / tileSize
	return math.Abs(n-math.Round(n)) < tol
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
