package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore()

	booking := &BookingRecord{
		PatientName:   "Maria da Silva",
		Identifier:    "12345",
		Facility:      "Salvalus",
		ScheduledDate: day(2026, time.March, 20),
		Protocol:      "pre_eclampsia_grave",
		GASource:      SourceDUM,
	}

	require.NoError(t, s.Create(ctx, booking))
	assert.NotEqual(t, uuid.Nil, booking.ID)
	assert.False(t, booking.CreatedAt.IsZero())

	found, err := s.FindByIdentifier(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
	assert.Equal(t, "Salvalus", found.Facility)

	_, err = s.FindByIdentifier(ctx, "99999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDuplicateIdentifier(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore()

	first := &BookingRecord{Identifier: "12345", Facility: "Salvalus", ScheduledDate: day(2026, time.March, 20)}
	require.NoError(t, s.Create(ctx, first))

	second := &BookingRecord{Identifier: "12345", Facility: "Cruzeiro", ScheduledDate: day(2026, time.March, 21)}
	assert.ErrorIs(t, s.Create(ctx, second), ErrDuplicateIdentifier)
}

func TestMemoryStoreOccupancy(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore()

	for i, id := range []string{"a", "b", "c"} {
		date := day(2026, time.March, 20)
		if i == 2 {
			date = day(2026, time.March, 21)
		}
		require.NoError(t, s.Create(ctx, &BookingRecord{Identifier: id, Facility: "Salvalus", ScheduledDate: date}))
	}
	require.NoError(t, s.Create(ctx, &BookingRecord{Identifier: "d", Facility: "Cruzeiro", ScheduledDate: day(2026, time.March, 20)}))

	count, err := s.CountBookings(ctx, "Salvalus", day(2026, time.March, 20))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	snapshot, err := s.Occupancy(ctx, "Salvalus", day(2026, time.March, 19), day(2026, time.March, 22))
	require.NoError(t, err)
	assert.Equal(t, OccupancySnapshot{
		"2026-03-20": 2,
		"2026-03-21": 1,
	}, snapshot)

	// Other facilities never leak into the snapshot
	assert.NotContains(t, snapshot, "Cruzeiro")
}
