package sweep

import "github.com/joeblew999/plat-tms/internal/geom"

// segment is one edge of a ring or line, in CRS coordinates.
type segment struct {
	p1, p2 geom.Position
}

// ringSegments builds the consecutive edges of a closed ring (positions
// already repeat the first point as the last, per geom.Ring), dropping
// zero-length edges.
func ringSegments(positions []geom.Position) []segment {
	segs := make([]segment, 0, len(positions))
	for i := 0; i < len(positions)-1; i++ {
		p1, p2 := positions[i], positions[i+1]
		if p1.Equal(p2) {
			continue
		}
		segs = append(segs, segment{p1: p1, p2: p2})
	}
	return segs
}

// openSegments builds the consecutive edges of an open line (no implicit
// closing edge), dropping zero-length edges.
func openSegments(positions []geom.Position) []segment {
	segs := make([]segment, 0, len(positions))
	for i := 0; i < len(positions)-1; i++ {
		p1, p2 := positions[i], positions[i+1]
		if p1.Equal(p2) {
			continue
		}
		segs = append(segs, segment{p1: p1, p2: p2})
	}
	return segs
}

// dim1Of returns the axis perpendicular-to-scan value: north when
// sweeping wide (horizontal strips), east when sweeping tall (vertical
// strips).
func dim1Of(p geom.Position, isWide bool) float64 {
	if isWide {
		return p.North
	}
	return p.East
}

// dim2Of returns the complementary axis, the one ranges are accumulated
// along within a strip.
func dim2Of(p geom.Position, isWide bool) float64 {
	if isWide {
		return p.East
	}
	return p.North
}

func fromDims(dim1, dim2 float64, isWide bool) geom.Position {
	if isWide {
		return geom.Position{East: dim2, North: dim1}
	}
	return geom.Position{East: dim1, North: dim2}
}

// trimSegment snaps whichever endpoints fall outside [lo, hi] onto the
// boundary they crossed, interpolating along the original (untrimmed)
// segment. Endpoints already in range pass through unchanged. Per
// spec.md §4.4 step 6, a segment with both endpoints on the same
// out-of-range side collapses to a single point on that boundary and is
// reported as degenerate by the caller via equal trimmed endpoints.
func trimSegment(s segment, tag1, tag2 tag, lo, hi float64, isWide bool) (geom.Position, geom.Position) {
	newP1 := s.p1
	if tag1 != tagInRange {
		newP1 = interpolateAt(s, boundaryFor(tag1, lo, hi), isWide)
	}
	newP2 := s.p2
	if tag2 != tagInRange {
		newP2 = interpolateAt(s, boundaryFor(tag2, lo, hi), isWide)
	}
	return newP1, newP2
}

func boundaryFor(t tag, lo, hi float64) float64 {
	if t == tagLarger {
		return hi
	}
	return lo
}

// interpolateAt finds the point on the line through s.p1, s.p2 whose
// dim1 value is boundary.
func interpolateAt(s segment, boundary float64, isWide bool) geom.Position {
	d1Start, d1End := dim1Of(s.p1, isWide), dim1Of(s.p2, isWide)
	d2Start, d2End := dim2Of(s.p1, isWide), dim2Of(s.p2, isWide)
	t := (boundary - d1Start) / (d1End - d1Start)
	d2 := d2Start + t*(d2End-d2Start)
	return fromDims(geom.AvoidNegativeZero(boundary), geom.AvoidNegativeZero(d2), isWide)
}
