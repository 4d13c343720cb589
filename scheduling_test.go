package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyCapacity(t *testing.T) {
	friday := day(2026, time.March, 20)
	saturday := day(2026, time.March, 21)
	sunday := day(2026, time.March, 22)

	assert.Equal(t, 9, defaultCapacityTable.DailyCapacity("Salvalus", friday))
	assert.Equal(t, 7, defaultCapacityTable.DailyCapacity("Salvalus", saturday))
	assert.Equal(t, 0, defaultCapacityTable.DailyCapacity("Salvalus", sunday))
	assert.Equal(t, 2, defaultCapacityTable.DailyCapacity("Guarulhos", friday))
	assert.Equal(t, 1, defaultCapacityTable.DailyCapacity("Guarulhos", saturday))

	// Unconfigured facilities get the default, Sundays stay closed
	assert.Equal(t, 5, defaultCapacityTable.DailyCapacity("Hospital Novo", friday))
	assert.Equal(t, 0, defaultCapacityTable.DailyCapacity("Hospital Novo", sunday))
}

func TestFindScheduledDateIdealAvailable(t *testing.T) {
	ref := day(2026, time.March, 2)
	ideal := day(2026, time.March, 20)

	got := findScheduledDate(defaultCapacityTable, ideal, "Salvalus", ref, 7, OccupancySnapshot{})

	require.Equal(t, StatusScheduled, got.Status)
	assert.Equal(t, ideal, got.FinalDate)
	assert.Equal(t, 0, got.OffsetFromIdealDays)
	assert.Equal(t, 18, got.LeadTimeDays)
	assert.Equal(t, AdjustmentFlags{}, got.Adjustments)
}

func TestFindScheduledDateSkipsSunday(t *testing.T) {
	ref := day(2026, time.March, 2)
	// Sunday
	ideal := day(2026, time.March, 22)

	got := findScheduledDate(defaultCapacityTable, ideal, "Salvalus", ref, 7, OccupancySnapshot{})

	require.Equal(t, StatusScheduled, got.Status)
	assert.Equal(t, day(2026, time.March, 23), got.FinalDate)
	assert.Equal(t, 1, got.OffsetFromIdealDays)
	assert.True(t, got.Adjustments.Sunday)
}

func TestFindScheduledDateCapacityFull(t *testing.T) {
	ref := day(2026, time.March, 2)
	// Friday; Saturday holds 7, Sunday closed
	ideal := day(2026, time.March, 20)

	occupancy := OccupancySnapshot{
		"2026-03-20": 9,
		"2026-03-21": 7,
	}

	got := findScheduledDate(defaultCapacityTable, ideal, "Salvalus", ref, 7, occupancy)

	require.Equal(t, StatusScheduled, got.Status)
	assert.Equal(t, day(2026, time.March, 23), got.FinalDate)
	assert.Equal(t, 3, got.OffsetFromIdealDays)
	assert.True(t, got.Adjustments.Capacity)
	assert.True(t, got.Adjustments.Sunday)
}

func TestFindScheduledDateLeadTimeSecondaryScan(t *testing.T) {
	ref := day(2026, time.March, 2)
	// Two days out; every primary candidate is inside the minimum lead
	// time, so the search re-anchors at day 12
	ideal := day(2026, time.March, 4)

	got := findScheduledDate(defaultCapacityTable, ideal, "Salvalus", ref, 10, OccupancySnapshot{})

	require.Equal(t, StatusScheduled, got.Status)
	assert.Equal(t, day(2026, time.March, 12), got.FinalDate)
	assert.Equal(t, 10, got.LeadTimeDays)
	assert.True(t, got.Adjustments.LeadTime)
}

func TestFindScheduledDateSecondaryScanRecordsFlags(t *testing.T) {
	// Thursday; minimum lead time lands on Sunday 2026-03-15
	ref := day(2026, time.March, 5)
	ideal := day(2026, time.March, 7)

	// Monday after the skipped Sunday is full, Tuesday is free
	occupancy := OccupancySnapshot{
		"2026-03-16": 9,
	}

	got := findScheduledDate(defaultCapacityTable, ideal, "Salvalus", ref, 10, occupancy)

	require.Equal(t, StatusScheduled, got.Status)
	assert.Equal(t, day(2026, time.March, 17), got.FinalDate)
	assert.True(t, got.Adjustments.LeadTime)
	assert.True(t, got.Adjustments.Sunday)
	assert.True(t, got.Adjustments.Capacity)
}

func TestFindScheduledDateLeadTimeExhaustsWindow(t *testing.T) {
	ref := day(2026, time.March, 2)
	ideal := day(2026, time.March, 4)

	// Window ends before the minimum lead time is ever reached
	got := findScheduledDate(defaultCapacityTable, ideal, "Salvalus", ref, 7, OccupancySnapshot{})

	require.True(t, got.NeedsReview())
	assert.True(t, got.FinalDate.IsZero())
	assert.True(t, got.Adjustments.LeadTime)
	assert.Contains(t, got.Reason, "no compliant slot")
}

func TestFindScheduledDateWindowBound(t *testing.T) {
	ref := day(2026, time.March, 2)
	ideal := day(2026, time.March, 20)

	// Friday and Saturday full, Sunday closed, margin ends before Monday
	occupancy := OccupancySnapshot{
		"2026-03-20": 9,
		"2026-03-21": 7,
	}

	got := findScheduledDate(defaultCapacityTable, ideal, "Salvalus", ref, 2, occupancy)

	require.True(t, got.NeedsReview())
	assert.True(t, got.FinalDate.IsZero())
	assert.True(t, got.Adjustments.Capacity)
}

func TestFindScheduledDateNeverBeyondWindow(t *testing.T) {
	ref := day(2026, time.March, 2)
	ideal := day(2026, time.March, 20)

	// Everything in the window full
	occupancy := OccupancySnapshot{}
	for d := ideal; !d.After(ideal.AddDate(0, 0, 7)); d = d.AddDate(0, 0, 1) {
		occupancy[dateKey(d)] = 99
	}

	got := findScheduledDate(defaultCapacityTable, ideal, "Salvalus", ref, 7, occupancy)

	require.True(t, got.NeedsReview())
	assert.True(t, got.FinalDate.IsZero())
}
