// Package timeline lays redactions out on display lanes so that
// time-overlapping redactions render on separate rows.
package timeline

import (
	"sort"

	"redactor/internal/redaction"
)

// MergeTolerance lets intervals that abut within this many seconds share a lane.
const MergeTolerance = 0.25

const (
	DefaultMinLanes = 2
	DefaultMaxLanes = 4
)

// Assignment maps redaction ids to lane indexes.
type Assignment struct {
	Lanes map[string]int
	Count int
}

// Lane returns the lane index for id.
func (a Assignment) Lane(id string) (int, bool) {
	lane, ok := a.Lanes[id]
	return lane, ok
}

// AssignLanes partitions redactions greedily: sorted by start (stable), each
// redaction takes the first lane whose end time is within MergeTolerance of
// its start, otherwise it opens a new lane. The result is deterministic but
// not guaranteed to be the minimum lane count.
func AssignLanes(redactions []redaction.Redaction) Assignment {
	ordered := make([]redaction.Redaction, len(redactions))
	copy(ordered, redactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	result := Assignment{Lanes: make(map[string]int, len(ordered))}
	var laneEnds []float64
	for _, r := range ordered {
		assigned := -1
		for lane, end := range laneEnds {
			if r.Start >= end-MergeTolerance {
				assigned = lane
				break
			}
		}
		if assigned < 0 {
			assigned = len(laneEnds)
			laneEnds = append(laneEnds, r.End)
		} else {
			laneEnds[assigned] = r.End
		}
		result.Lanes[r.ID] = assigned
	}
	result.Count = len(laneEnds)
	return result
}

// DisplayLanes clamps a lane count into [minLanes, maxLanes] for rendering.
// Non-positive bounds fall back to the defaults.
func DisplayLanes(count, minLanes, maxLanes int) int {
	if minLanes <= 0 {
		minLanes = DefaultMinLanes
	}
	if maxLanes <= 0 {
		maxLanes = DefaultMaxLanes
	}
	if maxLanes < minLanes {
		maxLanes = minLanes
	}
	return min(max(count, minLanes), maxLanes)
}
