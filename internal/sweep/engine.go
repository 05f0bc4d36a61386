package sweep

import (
	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmsmath"
)

// clampedBBoxOf returns the positions' bbox clamped to the matrix's
// world bbox, per spec.md §4.4 step 1: geometries that stray outside
// the matrix clamp rather than fail.
func clampedBBoxOf(positions []geom.Position, tm tilematrix.TileMatrix) geom.BBox {
	b := geom.EmptyBBox()
	for _, p := range positions {
		b = b.Extend(p)
	}
	return b.ClampTo(tmsmath.TileMatrixBBox(tm))
}

// chooseOrientation decides whether to sweep by horizontal (row) strips
// ("wide") or vertical (column) strips, per spec.md §4.4 step 2:
// isWide := width > height, compared in raw CRS units with no
// tile-size normalization. Ties (width == height) sweep vertically.
func chooseOrientation(clamped geom.BBox, tm tilematrix.TileMatrix, metatile tilematrix.Metatile) bool {
	return clamped.Width() > clamped.Height()
}

func lineCursor(positions []geom.Position, tm tilematrix.TileMatrix, metatile tilematrix.Metatile) (*Cursor, error) {
	clamped := clampedBBoxOf(positions, tm)
	if clamped.IsEmpty() {
		return emptyCursor(), nil
	}
	isWide := chooseOrientation(clamped, tm, metatile)

	plan, err := newStripPlan(clamped, tm, metatile, isWide)
	if err != nil {
		return nil, err
	}

	segs := openSegments(positions)

	rangesFn := func(lo, hi float64) []dim2Interval {
		var out []dim2Interval
		for _, seg := range segs {
			tag1 := classify(dim1Of(seg.p1, isWide), lo, hi)
			tag2 := classify(dim1Of(seg.p2, isWide), lo, hi)
			tp1, tp2 := trimSegment(seg, tag1, tag2, lo, hi, isWide)
			if positionsEqual(tp1, tp2) {
				continue
			}
			a, b := dim2Of(tp1, isWide), dim2Of(tp2, isWide)
			if a > b {
				a, b = b, a
			}
			out = append(out, dim2Interval{lo: a, hi: b})
		}
		return out
	}

	return &Cursor{plan: plan, idx: plan.minIdx, ranges: rangesFn}, nil
}

func polygonCursor(p geom.Polygon, tm tilematrix.TileMatrix, metatile tilematrix.Metatile) (*Cursor, error) {
	outer := p.OuterRing()
	clamped := clampedBBoxOf(outer.Positions(), tm)
	if clamped.IsEmpty() {
		return emptyCursor(), nil
	}
	isWide := chooseOrientation(clamped, tm, metatile)

	plan, err := newStripPlan(clamped, tm, metatile, isWide)
	if err != nil {
		return nil, err
	}

	outerSegs := ringSegments(outer.Positions())
	holes := p.Holes()
	holeSegs := make([][]segment, len(holes))
	for i, h := range holes {
		holeSegs[i] = ringSegments(h.Positions())
	}

	rangesFn := func(lo, hi float64) []dim2Interval {
		crossing, direct := ringRanges(outerSegs, lo, hi, isWide)
		var holeInterior []dim2Interval
		for _, hs := range holeSegs {
			hc, hd := ringRanges(hs, lo, hi, isWide)
			// A hole that itself crosses the strip's dim1 boundary
			// pools its crossings with the outer ring's so the even-odd
			// fold produces the notch at the strip edge. A hole that
			// lies entirely within the strip never crosses, so its
			// interior is instead subtracted directly below.
			crossing = append(crossing, hc...)
			holeInterior = append(holeInterior, hd...)
		}
		out := append(foldCrossings(crossing, isWide), direct...)
		return subtractIntervals(out, holeInterior)
	}

	return &Cursor{plan: plan, idx: plan.minIdx, ranges: rangesFn}, nil
}
