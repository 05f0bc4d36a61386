// Package sweep implements the core strip-sweep engine of spec.md §4.4:
// converting a geometry into the lazy sequence of TileMatrixLimits that
// covers it. Grounded directly on spec.md §4.4 itself (no example repo
// in the retrieval pack implements an OGC TMS sweep); the pull-cursor
// shape is grounded on the teacher's small stateful-collaborator style
// (service.TilerService's ProgressFunc callback, service.EventBus's
// channel-based pull) rather than a goroutine/channel generator, since
// the computation here has no I/O suspension points to justify one.
package sweep

import (
	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tilerange"
	"github.com/joeblew999/plat-tms/internal/tmsmath"
	"github.com/joeblew999/plat-tms/internal/tmserr"
	"github.com/joeblew999/plat-tms/internal/tmsvalidate"
)

// Cursor lazily yields the TileMatrixLimits covering a geometry, one
// strip's merged limits at a time. It holds no goroutine: each call to
// Next computes at most one strip's worth of work.
type Cursor struct {
	plan    stripPlan
	idx     int
	ranges  func(lo, hi float64) []dim2Interval
	buf     []tilematrix.TileMatrixLimits
	bufPos  int
	err     error
	done    bool
}

// Next advances the cursor. It returns (limits, true, nil) for each
// yielded value, (zero, false, nil) once exhausted, or (zero, false,
// err) if an error occurred (after which the cursor is permanently
// exhausted).
func (c *Cursor) Next() (tilematrix.TileMatrixLimits, bool, error) {
	if c.err != nil {
		return tilematrix.TileMatrixLimits{}, false, c.err
	}
	for {
		if c.bufPos < len(c.buf) {
			v := c.buf[c.bufPos]
			c.bufPos++
			return v, true, nil
		}
		if c.done {
			return tilematrix.TileMatrixLimits{}, false, nil
		}
		if c.idx > c.plan.maxIdx {
			c.done = true
			return tilematrix.TileMatrixLimits{}, false, nil
		}

		lo, hi := c.plan.interval(c.idx)
		ranges := mergeIntervals(c.ranges(lo, hi))
		limits, err := c.plan.limitsForRanges(c.idx, ranges)
		if err != nil {
			c.err = err
			return tilematrix.TileMatrixLimits{}, false, err
		}
		c.idx++
		c.buf = limits
		c.bufPos = 0
	}
}

// Collect drains the cursor into a slice. Convenience for callers that
// don't need the lazy interface (CLI, HTTP handlers, tests).
func Collect(c *Cursor) ([]tilematrix.TileMatrixLimits, error) {
	var out []tilematrix.TileMatrixLimits
	for {
		v, ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

func emptyCursor() *Cursor {
	return &Cursor{done: true}
}

func singleLimitCursor(l tilematrix.TileMatrixLimits) *Cursor {
	return &Cursor{buf: []tilematrix.TileMatrixLimits{l}, done: true}
}

// ToTileMatrixLimits is the engine's geometry entry point: it runs the
// eager validation of spec.md §4.6, dispatches on geometry type (the
// point shortcut, or the full sweep for line strings and polygons) and
// returns a lazy Cursor. Bounding boxes go through BBoxToTileMatrixLimits
// and the minimal bounding tile through MinimalBoundingTile.
//
// GeometryCollection is rejected: spec.md §9 treats member-by-member
// recursion as out of scope for this engine (callers wanting per-member
// coverage call this once per member).
func ToTileMatrixLimits(g geom.Geometry, tms tilematrix.TileMatrixSet, tileMatrixID string, metatile tilematrix.Metatile) (*Cursor, error) {
	tm, err := tmsvalidate.Entry(g.CRS(), tms, tileMatrixID, metatile)
	if err != nil {
		return nil, err
	}

	switch v := g.(type) {
	case geom.Point:
		return pointCursor(v.Position(), tm, metatile)
	case geom.LineString:
		return lineCursor(v.Positions(), tm, metatile)
	case geom.Polygon:
		return polygonCursor(v, tm, metatile)
	case geom.GeometryCollection:
		return nil, tmserr.Validationf("geometry collections are not supported by the coverage engine; call it once per member")
	default:
		return nil, tmserr.Validationf("unsupported geometry type %v", g.Type())
	}
}

// BBoxToTileMatrixLimits is the bounding-box shortcut of spec.md §4.2: a
// rectangle snapped directly to the tile grid rather than swept,
// yielding exactly one (possibly large) TileMatrixLimits. A bbox that
// extends outside the matrix's world bbox is rejected with a RangeError
// naming the offending coordinate (spec.md §8 scenario S6) rather than
// silently clamped.
func BBoxToTileMatrixLimits(bbox geom.BBox, crs geom.CRS, tms tilematrix.TileMatrixSet, tileMatrixID string, metatile tilematrix.Metatile) (*Cursor, error) {
	tm, err := tmsvalidate.Entry(crs, tms, tileMatrixID, metatile)
	if err != nil {
		return nil, err
	}
	if err := tmsvalidate.BBoxContained(bbox, tm); err != nil {
		return nil, err
	}
	if bbox.IsEmpty() {
		return emptyCursor(), nil
	}

	r, err := tilerange.ToTileRange(bbox, tms, tileMatrixID, metatile)
	if err != nil {
		return nil, err
	}
	return singleLimitCursor(r.Limits()), nil
}

// pointCursor implements the point shortcut of spec.md §4.2: a single
// tile index, reverse-intersection policy `none`, expanded to a
// single-cell limit by the metatile.
func pointCursor(pos geom.Position, tm tilematrix.TileMatrix, metatile tilematrix.Metatile) (*Cursor, error) {
	world := tmsmath.TileMatrixBBox(tm)
	if !world.Contains(geom.BBox{MinEast: pos.East, MaxEast: pos.East, MinNorth: pos.North, MaxNorth: pos.North}) {
		return emptyCursor(), nil
	}
	idx, err := tmsmath.PositionToTileIndex(pos, tm, tilematrix.None, metatile)
	if err != nil {
		return nil, err
	}
	return singleLimitCursor(tilematrix.TileMatrixLimits{
		TileMatrixID: tm.ID,
		MinTileCol:   idx.Col, MaxTileCol: idx.Col,
		MinTileRow: idx.Row, MaxTileRow: idx.Row,
	}), nil
}
