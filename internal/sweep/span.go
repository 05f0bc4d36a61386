package sweep

import (
	"sort"

	"github.com/joeblew999/plat-tms/internal/geom"
)

// rawSpan is a maximal run of a ring's segments that stayed inside (or
// crossed into/out of) one strip, per spec.md §4.4 step 7.
type rawSpan struct {
	segments []segment // already trimmed to the strip's [lo, hi] on dim1
	startTag tag       // original tag of the first segment's first endpoint
	endTag   tag       // original tag of the last segment's last endpoint
}

// isCrossingRange reports whether the span connects the two opposite
// boundaries of the strip (entered from one side, left from the other).
func (s rawSpan) isCrossingRange() bool {
	return (s.startTag == tagSmaller && s.endTag == tagLarger) ||
		(s.startTag == tagLarger && s.endTag == tagSmaller)
}

// dim2Range returns the [min, max] of every point (trimmed or not) the
// span's segments touch, along dim2.
func (s rawSpan) dim2Range(isWide bool) (float64, float64) {
	lo, hi := dim2Of(s.segments[0].p1, isWide), dim2Of(s.segments[0].p1, isWide)
	for _, seg := range s.segments {
		for _, v := range [2]float64{dim2Of(seg.p1, isWide), dim2Of(seg.p2, isWide)} {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// crossingKey is the dim2 value of whichever endpoint of the span is
// tagged smaller (the span always has exactly one smaller- and one
// larger-tagged endpoint, by definition of isCrossingRange).
func (s rawSpan) crossingKey(isWide bool) float64 {
	first := s.segments[0]
	last := s.segments[len(s.segments)-1]
	if s.startTag == tagSmaller {
		return dim2Of(first.p1, isWide)
	}
	return dim2Of(last.p2, isWide)
}

// buildSpans walks a ring's segments in order, classifying each against
// the strip's [lo, hi] on dim1, trimming crossing segments onto the
// boundary, dropping degenerate (fully outside) segments, and grouping
// the survivors into spans. closed rings additionally wrap the trailing
// open span (if any) onto the front of the first recorded span, since a
// ring's traversal start is an arbitrary point on a cycle.
func buildSpans(segs []segment, lo, hi float64, isWide bool, closed bool) []rawSpan {
	var spans []rawSpan
	var current *rawSpan

	flush := func() {
		if current != nil {
			spans = append(spans, *current)
			current = nil
		}
	}

	for _, seg := range segs {
		tag1 := classify(dim1Of(seg.p1, isWide), lo, hi)
		tag2 := classify(dim1Of(seg.p2, isWide), lo, hi)

		tp1, tp2 := trimSegment(seg, tag1, tag2, lo, hi, isWide)
		if positionsEqual(tp1, tp2) {
			flush()
			continue
		}

		if current == nil {
			current = &rawSpan{startTag: tag1}
		}
		current.segments = append(current.segments, segment{p1: tp1, p2: tp2})
		current.endTag = tag2

		if tag2 != tagInRange {
			flush()
		}
	}

	if current != nil {
		if closed && len(spans) > 0 {
			merged := rawSpan{
				segments: append(append([]segment{}, current.segments...), spans[0].segments...),
				startTag: current.startTag,
				endTag:   spans[0].endTag,
			}
			spans[0] = merged
		} else {
			spans = append(spans, *current)
		}
	}

	return spans
}

func positionsEqual(a, b geom.Position) bool {
	return a.Normalized().Equal(b.Normalized())
}

// dim2Interval is a closed range on the dim2 axis.
type dim2Interval struct {
	lo, hi float64
}

// mergeIntervals sorts and absorbs overlapping/touching intervals, per
// spec.md §4.4 step 8's "union all contributed ranges".
func mergeIntervals(ranges []dim2Interval) []dim2Interval {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]dim2Interval{}, ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].lo < sorted[j].lo })

	merged := []dim2Interval{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.lo <= last.hi {
			if r.hi > last.hi {
				last.hi = r.hi
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// subtractIntervals removes cuts from base, splitting base entries as
// needed. Used to remove a hole ring's interior (its non-crossing spans,
// the portion of the hole that never touches the current strip's dim1
// boundary) from the ranges accumulated so far.
func subtractIntervals(base, cuts []dim2Interval) []dim2Interval {
	if len(cuts) == 0 {
		return base
	}
	merged := mergeIntervals(cuts)

	var out []dim2Interval
	for _, b := range base {
		segs := []dim2Interval{b}
		for _, c := range merged {
			var next []dim2Interval
			for _, s := range segs {
				if c.hi <= s.lo || c.lo >= s.hi {
					next = append(next, s)
					continue
				}
				if c.lo > s.lo {
					next = append(next, dim2Interval{lo: s.lo, hi: fmin(c.lo, s.hi)})
				}
				if c.hi < s.hi {
					next = append(next, dim2Interval{lo: fmax(c.hi, s.lo), hi: s.hi})
				}
			}
			segs = next
		}
		out = append(out, segs...)
	}
	return out
}

func fmin(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func fmax(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ringRanges computes the dim2 intervals a polygon ring contributes
// within one strip: its crossing spans, for pairing by foldCrossings,
// and the dim2 ranges of its non-crossing (local extremum) spans. Outer
// and hole rings are treated alike here; polygonCursor pools a hole's
// crossing spans with the outer ring's before pairing and subtracts the
// hole's direct ranges from the result.
func ringRanges(segs []segment, lo, hi float64, isWide bool) (crossing []rawSpan, direct []dim2Interval) {
	spans := buildSpans(segs, lo, hi, isWide, true)
	for _, s := range spans {
		if len(s.segments) == 0 {
			continue
		}
		if s.isCrossingRange() {
			crossing = append(crossing, s)
			continue
		}
		a, b := s.dim2Range(isWide)
		direct = append(direct, dim2Interval{lo: a, hi: b})
	}
	return crossing, direct
}

// foldCrossings sorts pooled crossing spans by their crossing key and
// folds consecutive pairs into ranges, implementing the even-odd fill
// rule that makes hole subtraction fall out of the pairing itself.
func foldCrossings(spans []rawSpan, isWide bool) []dim2Interval {
	if len(spans) == 0 {
		return nil
	}
	keyed := append([]rawSpan{}, spans...)
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].crossingKey(isWide) < keyed[j].crossingKey(isWide) })

	var out []dim2Interval
	for i := 0; i+1 < len(keyed); i += 2 {
		a := keyed[i].crossingKey(isWide)
		b := keyed[i+1].crossingKey(isWide)
		if a > b {
			a, b = b, a
		}
		out = append(out, dim2Interval{lo: a, hi: b})
	}
	return out
}
