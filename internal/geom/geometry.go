package geom

import "github.com/joeblew999/plat-tms/internal/tmserr"

// Type is the geometry variant tag, following orb.Geometry's
// tagged-union dispatch style (a Type() switch rather than an interface
// hierarchy per variant).
type Type int

const (
	TypePoint Type = iota
	TypeLineString
	TypePolygon
	TypeGeometryCollection
)

func (t Type) String() string {
	switch t {
	case TypePoint:
		return "Point"
	case TypeLineString:
		return "LineString"
	case TypePolygon:
		return "Polygon"
	case TypeGeometryCollection:
		return "GeometryCollection"
	default:
		return "Unknown"
	}
}

// Geometry is the sum type over Point, LineString, Polygon and
// GeometryCollection. BoundingBox is represented via BBox.AsClosedPolygon
// rather than as its own variant, per spec.md §3.
type Geometry interface {
	Type() Type
	BBox() BBox
	CRS() CRS
}

// Point is a single Position.
type Point struct {
	pos Position
	crs CRS
}

// NewPoint validates crs and that pos is finite, and wraps pos.
func NewPoint(pos Position, crs CRS) (Point, error) {
	if err := ValidateCRS(crs); err != nil {
		return Point{}, err
	}
	if _, err := NewPosition(pos.East, pos.North); err != nil {
		return Point{}, err
	}
	return Point{pos: pos, crs: crs}, nil
}

func (p Point) Type() Type { return TypePoint }
func (p Point) CRS() CRS   { return p.crs }
func (p Point) Position() Position {
	return p.pos
}
func (p Point) BBox() BBox {
	return BBox{MinEast: p.pos.East, MinNorth: p.pos.North, MaxEast: p.pos.East, MaxNorth: p.pos.North}
}

// LineString is an ordered, non-empty sequence of positions.
type LineString struct {
	positions []Position
	crs       CRS
}

// NewLineString validates crs and requires at least two positions, all
// finite.
func NewLineString(positions []Position, crs CRS) (LineString, error) {
	if err := ValidateCRS(crs); err != nil {
		return LineString{}, err
	}
	if len(positions) < 2 {
		return LineString{}, tmserr.Validationf("line string requires at least 2 positions, got %d", len(positions))
	}
	for _, p := range positions {
		if _, err := NewPosition(p.East, p.North); err != nil {
			return LineString{}, err
		}
	}
	cp := make([]Position, len(positions))
	copy(cp, positions)
	return LineString{positions: cp, crs: crs}, nil
}

func (l LineString) Type() Type { return TypeLineString }
func (l LineString) CRS() CRS   { return l.crs }

// Positions returns the line string's positions. Callers must not
// mutate the returned slice's backing array in place; treat it as
// read-only, as with the teacher's defensive orb geometry clones.
func (l LineString) Positions() []Position { return l.positions }

func (l LineString) BBox() BBox {
	b := EmptyBBox()
	for _, p := range l.positions {
		b = b.Extend(p)
	}
	return b
}

// Ring is a closed sequence of positions (first == last).
type Ring struct {
	positions []Position
}

// NewRing validates that the ring has at least 4 positions, all finite,
// and is closed.
func NewRing(positions []Position) (Ring, error) {
	if len(positions) < 4 {
		return Ring{}, tmserr.Validationf("ring requires at least 4 positions (closed triangle), got %d", len(positions))
	}
	for _, p := range positions {
		if _, err := NewPosition(p.East, p.North); err != nil {
			return Ring{}, err
		}
	}
	first, last := positions[0], positions[len(positions)-1]
	if !first.Equal(last) {
		return Ring{}, tmserr.Validationf("ring is not closed: first %+v != last %+v", first, last)
	}
	cp := make([]Position, len(positions))
	copy(cp, positions)
	return Ring{positions: cp}, nil
}

// Positions returns the ring's positions (first == last).
func (r Ring) Positions() []Position { return r.positions }

func (r Ring) bbox() BBox {
	b := EmptyBBox()
	for _, p := range r.positions {
		b = b.Extend(p)
	}
	return b
}

// Polygon is a non-empty ordered list of linear rings: ring 0 is the
// outer ring, rings 1..n are holes.
type Polygon struct {
	rings []Ring
	crs   CRS
}

// NewPolygon validates crs and each ring, requiring at least one ring.
func NewPolygon(rawRings [][]Position, crs CRS) (Polygon, error) {
	if err := ValidateCRS(crs); err != nil {
		return Polygon{}, err
	}
	if len(rawRings) == 0 {
		return Polygon{}, tmserr.Validationf("polygon requires at least one ring (the outer ring)")
	}
	rings := make([]Ring, len(rawRings))
	for i, raw := range rawRings {
		r, err := NewRing(raw)
		if err != nil {
			return Polygon{}, tmserr.Wrap(tmserr.Validation, "invalid polygon ring", err)
		}
		rings[i] = r
	}
	return Polygon{rings: rings, crs: crs}, nil
}

func (p Polygon) Type() Type { return TypePolygon }
func (p Polygon) CRS() CRS   { return p.crs }

// Rings returns the polygon's rings; ring 0 is the outer ring.
func (p Polygon) Rings() []Ring { return p.rings }

// OuterRing returns ring 0.
func (p Polygon) OuterRing() Ring { return p.rings[0] }

// Holes returns rings 1..n.
func (p Polygon) Holes() []Ring {
	if len(p.rings) <= 1 {
		return nil
	}
	return p.rings[1:]
}

func (p Polygon) BBox() BBox {
	// Only the outer ring determines the bbox; holes are interior cuts.
	return p.rings[0].bbox()
}

// GeometryCollection is a flat list of geometries sharing one CRS. The
// core engine treats this variant as unsupported at flatten-time (see
// spec.md §9 Open Question, resolved uniformly as a ValidationError);
// this type exists only so callers can construct and inspect one before
// it reaches the engine.
type GeometryCollection struct {
	geometries []Geometry
	crs        CRS
}

// NewGeometryCollection validates crs and that every member shares it.
func NewGeometryCollection(geometries []Geometry, crs CRS) (GeometryCollection, error) {
	if err := ValidateCRS(crs); err != nil {
		return GeometryCollection{}, err
	}
	for _, g := range geometries {
		if !SameCRS(g.CRS(), crs) {
			return GeometryCollection{}, tmserr.Validationf("geometry collection member has CRS %q, collection has %q", g.CRS(), crs)
		}
	}
	cp := make([]Geometry, len(geometries))
	copy(cp, geometries)
	return GeometryCollection{geometries: cp, crs: crs}, nil
}

func (g GeometryCollection) Type() Type { return TypeGeometryCollection }
func (g GeometryCollection) CRS() CRS   { return g.crs }

// Geometries returns the collection's members.
func (g GeometryCollection) Geometries() []Geometry { return g.geometries }

func (g GeometryCollection) BBox() BBox {
	if len(g.geometries) == 0 {
		return EmptyBBox()
	}
	b := EmptyBBox()
	for _, member := range g.geometries {
		b = b.Union(member.BBox())
	}
	return b
}

// FlattenToPositions reduces any supported geometry to its constituent
// positions, per spec.md §4.2. GeometryCollections flatten recursively;
// flattening a GeometryCollection containing another GeometryCollection
// is supported (bounded, non-cyclic by construction), but the sweep
// engine itself still rejects GeometryCollection inputs outright per
// spec.md §9.
func FlattenToPositions(g Geometry) []Position {
	switch v := g.(type) {
	case Point:
		return []Position{v.pos}
	case LineString:
		return v.positions
	case Polygon:
		var out []Position
		for _, r := range v.rings {
			out = append(out, r.positions...)
		}
		return out
	case GeometryCollection:
		var out []Position
		for _, member := range v.geometries {
			out = append(out, FlattenToPositions(member)...)
		}
		return out
	default:
		return nil
	}
}
