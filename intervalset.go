package sightread

import "sort"

// halfOpenInterval is a [Start, End) range of ticks.
type halfOpenInterval struct {
	Start, End Tick
}

func (h halfOpenInterval) empty() bool {
	return h.Start >= h.End
}

func (h halfOpenInterval) contains(pos Tick) bool {
	return pos >= h.Start && pos < h.End
}

// IntervalSet is a sorted, merged collection of disjoint half-open
// [start, end) tick ranges supporting O(log n) point containment.
type IntervalSet struct {
	intervals []halfOpenInterval
}

// NewIntervalSet builds an IntervalSet from an unsorted collection of
// (start, end) pairs. Overlapping or touching intervals (start <= the
// running interval's end) are merged; empty intervals are discarded.
func NewIntervalSet(pairs [][2]Tick) IntervalSet {
	raw := make([]halfOpenInterval, len(pairs))
	for i, p := range pairs {
		raw[i] = halfOpenInterval{Start: p[0], End: p[1]}
	}
	return IntervalSet{intervals: mergeIntervals(raw)}
}

func mergeIntervals(raw []halfOpenInterval) []halfOpenInterval {
	sort.Slice(raw, func(i, j int) bool { return raw[i].Start < raw[j].Start })

	var merged []halfOpenInterval
	for _, iv := range raw {
		if iv.empty() {
			continue
		}
		if len(merged) > 0 && iv.Start <= merged[len(merged)-1].End {
			last := &merged[len(merged)-1]
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Contains reports whether pos falls inside any stored interval.
func (s IntervalSet) Contains(pos Tick) bool {
	i := sort.Search(len(s.intervals), func(i int) bool {
		return s.intervals[i].End > pos
	})
	if i == len(s.intervals) {
		return false
	}
	return s.intervals[i].Start <= pos
}

// Intervals returns the disjoint, sorted intervals backing the set, as
// (start, end) pairs.
func (s IntervalSet) Intervals() [][2]Tick {
	out := make([][2]Tick, len(s.intervals))
	for i, iv := range s.intervals {
		out[i] = [2]Tick{iv.Start, iv.End}
	}
	return out
}

// Empty reports whether the set holds no intervals.
func (s IntervalSet) Empty() bool {
	return len(s.intervals) == 0
}
