package service

import (
	"math/rand"
	"testing"
	"time"

	"dateplanner-api/modules/calendar/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func busy(startHour, endHour int) entity.BusyInterval {
	return entity.BusyInterval{Start: at(startHour), End: at(endHour)}
}

func TestComputeFreeSlotsBetweenPartners(t *testing.T) {
	slots := ComputeFreeSlots(
		[]entity.BusyInterval{busy(10, 11)},
		[]entity.BusyInterval{busy(14, 15)},
		at(9), at(18), 2.0,
	)

	require.Len(t, slots, 2)
	assert.Equal(t, at(11), slots[0].Start)
	assert.Equal(t, at(14), slots[0].End)
	assert.Equal(t, 3.0, slots[0].DurationHours)
	assert.Equal(t, at(15), slots[1].Start)
	assert.Equal(t, at(18), slots[1].End)
}

func TestComputeFreeSlotsEmptyCalendars(t *testing.T) {
	slots := ComputeFreeSlots(nil, nil, at(8), at(10), 2.0)

	require.Len(t, slots, 1)
	assert.Equal(t, at(8), slots[0].Start)
	assert.Equal(t, at(10), slots[0].End)
	assert.Equal(t, 2.0, slots[0].DurationHours)
}

func TestComputeFreeSlotsInvalidFrame(t *testing.T) {
	assert.Empty(t, ComputeFreeSlots(nil, nil, at(10), at(10), 1))
	assert.Empty(t, ComputeFreeSlots(nil, nil, at(12), at(10), 1))
}

func TestComputeFreeSlotsMinimumIsInclusive(t *testing.T) {
	slots := ComputeFreeSlots([]entity.BusyInterval{busy(11, 12)}, nil, at(9), at(12), 2.0)
	require.Len(t, slots, 1)
	assert.Equal(t, at(9), slots[0].Start)
	assert.Equal(t, at(11), slots[0].End)
}

func TestComputeFreeSlotsShortGapsDropped(t *testing.T) {
	slots := ComputeFreeSlots(
		[]entity.BusyInterval{busy(9, 10), busy(11, 13)},
		[]entity.BusyInterval{busy(14, 17)},
		at(9), at(17), 2.0,
	)
	assert.Empty(t, slots)
}

func TestComputeFreeSlotsOverlappingAndNestedBusy(t *testing.T) {
	slots := ComputeFreeSlots(
		[]entity.BusyInterval{busy(10, 14), busy(11, 12)},
		[]entity.BusyInterval{busy(13, 15)},
		at(8), at(20), 1.0,
	)
	require.Len(t, slots, 2)
	assert.Equal(t, at(8), slots[0].Start)
	assert.Equal(t, at(10), slots[0].End)
	assert.Equal(t, at(15), slots[1].Start)
	assert.Equal(t, at(20), slots[1].End)
}

func TestComputeFreeSlotsClipsIntervalsToFrame(t *testing.T) {
	slots := ComputeFreeSlots(
		[]entity.BusyInterval{busy(6, 10)},
		[]entity.BusyInterval{busy(16, 23), busy(1, 2)},
		at(8), at(18), 1.0,
	)
	require.Len(t, slots, 1)
	assert.Equal(t, at(10), slots[0].Start)
	assert.Equal(t, at(16), slots[0].End)
}

func TestComputeFreeSlotsDoesNotMutateInput(t *testing.T) {
	a := []entity.BusyInterval{busy(14, 15), busy(6, 10)}
	b := []entity.BusyInterval{busy(12, 13)}
	ComputeFreeSlots(a, b, at(8), at(18), 1.0)

	assert.Equal(t, at(14), a[0].Start)
	assert.Equal(t, at(6), a[1].Start)
	assert.Equal(t, at(12), b[0].Start)
}

func TestComputeFreeSlotsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	frameStart, frameEnd := at(0), at(72)

	randomBusy := func(n int) []entity.BusyInterval {
		out := make([]entity.BusyInterval, n)
		for i := range out {
			start := at(-6).Add(time.Duration(rng.Intn(84*60)) * time.Minute)
			out[i] = entity.BusyInterval{Start: start, End: start.Add(time.Duration(15+rng.Intn(300)) * time.Minute)}
		}
		return out
	}

	for iter := 0; iter < 200; iter++ {
		a, b := randomBusy(rng.Intn(12)), randomBusy(rng.Intn(12))
		minHours := float64(rng.Intn(5)) / 2
		slots := ComputeFreeSlots(a, b, frameStart, frameEnd, minHours)

		for i, slot := range slots {
			assert.False(t, slot.Start.Before(frameStart))
			assert.False(t, slot.End.After(frameEnd))
			assert.GreaterOrEqual(t, slot.End.Sub(slot.Start), time.Duration(minHours*float64(time.Hour)))
			assert.InDelta(t, slot.End.Sub(slot.Start).Hours(), slot.DurationHours, 1e-9)
			if i > 0 {
				assert.False(t, slot.Start.Before(slots[i-1].End), "slots overlap or are out of order")
			}
			for _, interval := range append(append([]entity.BusyInterval{}, a...), b...) {
				overlaps := interval.Start.Before(slot.End) && slot.Start.Before(interval.End)
				assert.False(t, overlaps, "slot %v-%v overlaps busy %v-%v", slot.Start, slot.End, interval.Start, interval.End)
			}
		}
	}
}
