package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaFromDays(t *testing.T) {
	ga := gaFromDays(98)
	assert.Equal(t, 14, ga.Weeks)
	assert.Equal(t, 0, ga.Days)
	assert.Equal(t, "14w0d", ga.String())

	ga = gaFromDays(260)
	assert.Equal(t, 37, ga.Weeks)
	assert.Equal(t, 1, ga.Days)
	assert.Equal(t, ga.TotalDays, ga.Weeks*7+ga.Days)
}

func TestToleranceDays(t *testing.T) {
	tests := []struct {
		usgWeeks int
		want     int
	}{
		{usgWeeks: 6, want: 5},
		{usgWeeks: 8, want: 5},
		{usgWeeks: 9, want: 5},
		{usgWeeks: 10, want: 7},
		{usgWeeks: 11, want: 7},
		{usgWeeks: 12, want: 10},
		{usgWeeks: 13, want: 10},
		{usgWeeks: 14, want: 14},
		{usgWeeks: 15, want: 14},
		{usgWeeks: 16, want: 21},
		{usgWeeks: 19, want: 21},
		{usgWeeks: 20, want: 21},
		{usgWeeks: 32, want: 21},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toleranceDays(tt.usgWeeks), "usg at %dw", tt.usgWeeks)
	}
}

func TestIsDUMReliable(t *testing.T) {
	assert.True(t, isDUMReliable("confiável"))
	assert.True(t, isDUMReliable("data certa"))
	assert.True(t, isDUMReliable("sim"))
	assert.False(t, isDUMReliable("não confiável"))
	assert.False(t, isDUMReliable("incerta"))
	assert.False(t, isDUMReliable(""))
	assert.False(t, isDUMReliable("???"))
}

func TestDetermineGASourceToleranceBoundary(t *testing.T) {
	ref := day(2026, time.March, 10)

	// USG at 12 weeks on the reference date: tolerance is 10 days
	usgRaw := "2026-03-10"

	t.Run("difference of exactly the tolerance keeps DUM", func(t *testing.T) {
		// DUM 94 days before reference vs USG GA 84 days: diff 10
		got := determineGASource(GAInput{
			DUMRaw:    "2025-12-06",
			DUMStatus: "confiável",
			USGRaw:    usgRaw,
			USGWeeks:  12,
		}, ref)

		require.Equal(t, SourceDUM, got.Source)
		assert.Equal(t, 10, got.DiffDays)
		assert.Equal(t, 10, got.ToleranceDays)
		assert.Equal(t, 94, got.GA.TotalDays)
		assert.Equal(t, day(2025, time.December, 6).AddDate(0, 0, fullTermDays), got.DueDate)
	})

	t.Run("one day beyond tolerance switches to USG", func(t *testing.T) {
		// DUM 95 days before reference: diff 11
		got := determineGASource(GAInput{
			DUMRaw:    "2025-12-05",
			DUMStatus: "confiável",
			USGRaw:    usgRaw,
			USGWeeks:  12,
		}, ref)

		require.Equal(t, SourceUSG, got.Source)
		assert.Equal(t, 11, got.DiffDays)
		assert.Equal(t, 84, got.GA.TotalDays)
		assert.Equal(t, ref.AddDate(0, 0, fullTermDays-84), got.DueDate)
	})
}

func TestDetermineGASourceSingleSource(t *testing.T) {
	ref := day(2026, time.March, 10)

	t.Run("unreliable dum falls back to usg", func(t *testing.T) {
		got := determineGASource(GAInput{
			DUMRaw:    "2025-12-02",
			DUMStatus: "incerta",
			USGRaw:    "2026-02-24",
			USGWeeks:  12,
			USGDays:   3,
		}, ref)

		require.Equal(t, SourceUSG, got.Source)
		// 12w3d at the exam plus 14 days to the reference
		assert.Equal(t, 87+14, got.GA.TotalDays)
		assert.Contains(t, got.Justification, "not reliable")
	})

	t.Run("only dum", func(t *testing.T) {
		got := determineGASource(GAInput{
			DUMRaw:    "2025-12-02",
			DUMStatus: "confiável",
		}, ref)

		require.Equal(t, SourceDUM, got.Source)
		assert.Equal(t, 98, got.GA.TotalDays)
	})

	t.Run("usg date without ga is unusable", func(t *testing.T) {
		got := determineGASource(GAInput{
			USGRaw: "2026-02-24",
		}, ref)

		require.Equal(t, SourceInvalid, got.Source)
		assert.Contains(t, got.Justification, "GA at USG not provided")
	})

	t.Run("neither source lists every failure", func(t *testing.T) {
		got := determineGASource(GAInput{
			DUMRaw:    "-",
			DUMStatus: "confiável",
		}, ref)

		require.True(t, got.Invalid())
		assert.Contains(t, got.Justification, "DUM invalid or placeholder")
		assert.Contains(t, got.Justification, "USG not provided")
	})
}

func TestDetermineGASourceSwapAudit(t *testing.T) {
	ref := day(2026, time.March, 10)

	// 12/25/2025 is only valid month-first; the swap must reach the
	// justification even though the computation succeeds
	got := determineGASource(GAInput{
		DUMRaw:    "12/25/2025",
		DUMStatus: "confiável",
	}, ref)

	require.Equal(t, SourceDUM, got.Source)
	assert.True(t, got.DUMParse.Swapped)
	assert.Contains(t, got.Justification, "MM/DD/YYYY")
}
