package service

import (
	"sort"
	"time"

	"dateplanner-api/modules/calendar/entity"
)

// ComputeFreeSlots returns the gaps inside [frameStart, frameEnd) where
// neither partner is busy and which last at least minDurationHours.
//
// Busy intervals are clipped to the frame before the sweep, so events that
// start before the frame or end after it only block the part that overlaps.
// The result is chronological and never overlaps any busy interval.
func ComputeFreeSlots(busyA, busyB []entity.BusyInterval, frameStart, frameEnd time.Time, minDurationHours float64) []entity.FreeSlot {
	slots := []entity.FreeSlot{}
	if !frameEnd.After(frameStart) {
		return slots
	}

	minDuration := time.Duration(minDurationHours * float64(time.Hour))
	busy := clipToFrame(append(append([]entity.BusyInterval{}, busyA...), busyB...), frameStart, frameEnd)

	sort.SliceStable(busy, func(i, j int) bool {
		return busy[i].Start.Before(busy[j].Start)
	})

	cursor := frameStart
	for _, interval := range busy {
		if interval.Start.After(cursor) {
			if gap := interval.Start.Sub(cursor); gap >= minDuration {
				slots = append(slots, newFreeSlot(cursor, interval.Start))
			}
		}
		if interval.End.After(cursor) {
			cursor = interval.End
		}
	}

	if frameEnd.After(cursor) && frameEnd.Sub(cursor) >= minDuration {
		slots = append(slots, newFreeSlot(cursor, frameEnd))
	}
	return slots
}

// clipToFrame drops intervals outside the frame or with no duration and
// trims the rest to the frame bounds.
func clipToFrame(intervals []entity.BusyInterval, frameStart, frameEnd time.Time) []entity.BusyInterval {
	clipped := intervals[:0]
	for _, interval := range intervals {
		start, end := interval.Start, interval.End
		if start.Before(frameStart) {
			start = frameStart
		}
		if end.After(frameEnd) {
			end = frameEnd
		}
		if !end.After(start) {
			continue
		}
		interval.Start, interval.End = start, end
		clipped = append(clipped, interval)
	}
	return clipped
}

func newFreeSlot(start, end time.Time) entity.FreeSlot {
	return entity.FreeSlot{
		Start:         start,
		End:           end,
		DurationHours: end.Sub(start).Hours(),
	}
}
