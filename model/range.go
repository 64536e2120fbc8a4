package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// MaxShift is used to build ranges that reach the end of their parent
// whatever its size.
const MaxShift = math.MaxInt32

// Range is an ordered pair of positions sharing a root.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range. A non-collapsed range sticks its start to the
// next item and its end to the previous one, so content inserted at a
// boundary stays outside of it.
func NewRange(start, end Position) Range {
	r := Range{Start: start.Clone(), End: end.Clone()}
	if r.IsCollapsed() {
		r.Start.Stickiness = StickToNone
		r.End.Stickiness = StickToNone
	} else {
		r.Start.Stickiness = StickToNext
		r.End.Stickiness = StickToPrevious
	}
	return r
}

// NewCollapsedRange creates an empty range at p.
func NewCollapsedRange(p Position) Range {
	return NewRange(p, p)
}

// RangeFromPositionAndShift creates a flat range starting at p.
func RangeFromPositionAndShift(p Position, shift int) Range {
	return NewRange(p, p.ShiftedBy(shift))
}

func (r Range) Clone() Range {
	return Range{Start: r.Start.Clone(), End: r.End.Clone()}
}

func (r Range) Root() string      { return r.Start.Root }
func (r Range) IsCollapsed() bool { return r.Start.IsEqual(r.End) }

// IsFlat reports whether both boundaries are in the same parent.
func (r Range) IsFlat() bool {
	return r.Start.HasSameParentAs(r.End)
}

func (r Range) IsEqual(o Range) bool {
	return r.Start.IsEqual(o.Start) && r.End.IsEqual(o.End)
}

// ContainsPosition reports whether p is strictly between the boundaries.
func (r Range) ContainsPosition(p Position) bool {
	return p.IsAfter(r.Start) && p.IsBefore(r.End)
}

// IsPositionInsideRangeBoundary reports whether p is inside the range or on
// one of its boundaries.
func (r Range) IsPositionInsideRangeBoundary(p Position) bool {
	return r.ContainsPosition(p) || r.Start.IsEqual(p) || r.End.IsEqual(p)
}

// ContainsRange reports whether o is inside r. With loose set, shared
// boundaries count as contained.
func (r Range) ContainsRange(o Range, loose bool) bool {
	if o.IsCollapsed() {
		loose = false
	}
	containsStart := r.ContainsPosition(o.Start) || (loose && r.Start.IsEqual(o.Start))
	containsEnd := r.ContainsPosition(o.End) || (loose && r.End.IsEqual(o.End))
	return containsStart && containsEnd
}

func (r Range) IsIntersecting(o Range) bool {
	return r.Start.IsBefore(o.End) && r.End.IsAfter(o.Start)
}

// Difference returns the parts of r that are not in o.
func (r Range) Difference(o Range) []Range {
	if !r.IsIntersecting(o) {
		return []Range{NewRange(r.Start, r.End)}
	}
	var ranges []Range
	if r.ContainsPosition(o.Start) {
		ranges = append(ranges, NewRange(r.Start, o.Start))
	}
	if r.ContainsPosition(o.End) {
		ranges = append(ranges, NewRange(o.End, r.End))
	}
	return ranges
}

// Intersection returns the common part of both ranges.
func (r Range) Intersection(o Range) (Range, bool) {
	if !r.IsIntersecting(o) {
		return Range{}, false
	}
	start, end := r.Start, r.End
	if r.ContainsPosition(o.Start) {
		start = o.Start
	}
	if r.ContainsPosition(o.End) {
		end = o.End
	}
	return NewRange(start, end), true
}

// TransformedByInsertion returns r after howMany offsets were inserted at at.
// With spread set, an insertion inside the range splits it in two so the new
// content stays outside.
func (r Range) TransformedByInsertion(at Position, howMany int, spread bool) []Range {
	if spread && r.ContainsPosition(at) {
		return []Range{
			NewRange(r.Start, at),
			NewRange(at.ShiftedBy(howMany), r.End.TransformedByInsertion(at, howMany)),
		}
	}
	return []Range{NewRange(
		r.Start.TransformedByInsertion(at, howMany),
		r.End.TransformedByInsertion(at, howMany),
	)}
}

// TransformedByDeletion returns r after howMany offsets were removed at at.
// ok is false when the whole range was removed.
func (r Range) TransformedByDeletion(at Position, howMany int) (Range, bool) {
	start, okStart := r.Start.TransformedByDeletion(at, howMany)
	end, okEnd := r.End.TransformedByDeletion(at, howMany)
	if !okStart && !okEnd {
		return Range{}, false
	}
	if !okStart {
		start = at
	}
	if !okEnd {
		end = at
	}
	return NewRange(start, end), true
}

// TransformedByMove returns r after howMany offsets were moved from source to
// target. The result has up to three ranges when the move cut through r.
func (r Range) TransformedByMove(source, target Position, howMany int, spread bool) []Range {
	if r.IsCollapsed() {
		return []Range{NewCollapsedRange(r.Start.TransformedByMove(source, target, howMany))}
	}

	moveRange := RangeFromPositionAndShift(source, howMany)
	insertPosition := target
	if t, ok := target.TransformedByDeletion(source, howMany); ok {
		insertPosition = t
	}

	if r.ContainsPosition(target) && !spread {
		if moveRange.ContainsPosition(r.Start) || moveRange.ContainsPosition(r.End) {
			return []Range{NewRange(
				r.Start.TransformedByMove(source, target, howMany),
				r.End.TransformedByMove(source, target, howMany),
			)}
		}
	}

	differenceSet := r.Difference(moveRange)
	common, hasCommon := r.Intersection(moveRange)

	var difference *Range
	switch len(differenceSet) {
	case 1:
		start, _ := differenceSet[0].Start.TransformedByDeletion(source, howMany)
		end, _ := differenceSet[0].End.TransformedByDeletion(source, howMany)
		d := NewRange(start, end)
		difference = &d
	case 2:
		end, _ := r.End.TransformedByDeletion(source, howMany)
		d := NewRange(r.Start, end)
		difference = &d
	}

	var result []Range
	if difference != nil {
		result = difference.TransformedByInsertion(insertPosition, howMany, hasCommon || spread)
	}

	if hasCommon {
		transformedCommon := NewRange(
			common.Start.Combined(moveRange.Start, insertPosition),
			common.End.Combined(moveRange.Start, insertPosition),
		)
		if len(result) == 2 {
			result = []Range{result[0], transformedCommon, result[1]}
		} else {
			result = append(result, transformedCommon)
		}
	}
	return result
}

// JoinRanges glues ranges that touch the first one into a single range. The
// first range is the reference; ranges not touching the chain are dropped.
func JoinRanges(ranges []Range) Range {
	if len(ranges) == 0 {
		panic("model: JoinRanges needs at least one range")
	}
	ref := ranges[0]
	if len(ranges) == 1 {
		return ref.Clone()
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.IsBefore(sorted[j].Start)
	})
	refIndex := 0
	for i, rng := range sorted {
		if rng.IsEqual(ref) && rng.Root() == ref.Root() {
			refIndex = i
			break
		}
	}
	start, end := ref.Start, ref.End
	for i := refIndex - 1; i >= 0; i-- {
		if !sorted[i].End.IsEqual(start) {
			break
		}
		start = sorted[i].Start
	}
	for i := refIndex + 1; i < len(sorted); i++ {
		if !sorted[i].Start.IsEqual(end) {
			break
		}
		end = sorted[i].End
	}
	return NewRange(start, end)
}

type rangeJSON struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(rangeJSON{Start: r.Start, End: r.End})
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var raw rangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Start.Root != raw.End.Root {
		return fmt.Errorf("range boundaries in different roots: %s, %s", raw.Start.Root, raw.End.Root)
	}
	*r = Range{Start: raw.Start, End: raw.End}
	return nil
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start, r.End)
}
