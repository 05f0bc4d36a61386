package geom

import "math"

// BBox is a bounding box [minEast, minNorth, maxEast, maxNorth]. Empty
// geometry collections carry the sentinel (+Inf, +Inf, -Inf, -Inf) per
// spec.md §3.
type BBox struct {
	MinEast  float64
	MinNorth float64
	MaxEast  float64
	MaxNorth float64
}

// EmptyBBox returns the sentinel bbox for an empty geometry collection.
func EmptyBBox() BBox {
	return BBox{
		MinEast:  math.Inf(1),
		MinNorth: math.Inf(1),
		MaxEast:  math.Inf(-1),
		MaxNorth: math.Inf(-1),
	}
}

// IsEmpty reports whether b is the empty sentinel.
func (b BBox) IsEmpty() bool {
	return b.MinEast > b.MaxEast || b.MinNorth > b.MaxNorth
}

// Width returns maxEast - minEast.
func (b BBox) Width() float64 { return b.MaxEast - b.MinEast }

// Height returns maxNorth - minNorth.
func (b BBox) Height() float64 { return b.MaxNorth - b.MinNorth }

// Union returns the smallest bbox containing both b and o.
func (b BBox) Union(o BBox) BBox {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return BBox{
		MinEast:  math.Min(b.MinEast, o.MinEast),
		MinNorth: math.Min(b.MinNorth, o.MinNorth),
		MaxEast:  math.Max(b.MaxEast, o.MaxEast),
		MaxNorth: math.Max(b.MaxNorth, o.MaxNorth),
	}
}

// Extend grows b to include position p.
func (b BBox) Extend(p Position) BBox {
	if b.IsEmpty() {
		return BBox{MinEast: p.East, MinNorth: p.North, MaxEast: p.East, MaxNorth: p.North}
	}
	return BBox{
		MinEast:  math.Min(b.MinEast, p.East),
		MinNorth: math.Min(b.MinNorth, p.North),
		MaxEast:  math.Max(b.MaxEast, p.East),
		MaxNorth: math.Max(b.MaxNorth, p.North),
	}
}

// Contains reports whether o lies fully within b.
func (b BBox) Contains(o BBox) bool {
	return o.MinEast >= b.MinEast && o.MaxEast <= b.MaxEast &&
		o.MinNorth >= b.MinNorth && o.MaxNorth <= b.MaxNorth
}

// Intersects reports whether b and o share any area (touching counts).
func (b BBox) Intersects(o BBox) bool {
	return b.MinEast <= o.MaxEast && b.MaxEast >= o.MinEast &&
		b.MinNorth <= o.MaxNorth && b.MaxNorth >= o.MinNorth
}

// ClampTo clips b to lie within bound, per-axis.
func (b BBox) ClampTo(bound BBox) BBox {
	return BBox{
		MinEast:  math.Max(b.MinEast, bound.MinEast),
		MinNorth: math.Max(b.MinNorth, bound.MinNorth),
		MaxEast:  math.Min(b.MaxEast, bound.MaxEast),
		MaxNorth: math.Min(b.MaxNorth, bound.MaxNorth),
	}
}

// AsClosedPolygon returns b as a single-ring closed rectangular Polygon,
// per spec.md §3 ("BoundingBox (as a closed rectangular Polygon)").
func (b BBox) AsClosedPolygon(crs CRS) Polygon {
	ring := []Position{
		{East: b.MinEast, North: b.MinNorth},
		{East: b.MaxEast, North: b.MinNorth},
		{East: b.MaxEast, North: b.MaxNorth},
		{East: b.MinEast, North: b.MaxNorth},
		{East: b.MinEast, North: b.MinNorth},
	}
	p, _ := NewPolygon([][]Position{ring}, crs)
	return p
}
