package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectProtocolNoDiagnosis(t *testing.T) {
	ref := day(2026, time.March, 2)

	got := selectProtocol(defaultProtocolTable, ConditionSet{}, gaFromDays(200), ref)

	require.True(t, got.RequiresReview())
	assert.Contains(t, got.Reason, "no clinical diagnosis identified")
	assert.True(t, got.IdealDate.IsZero())
}

func TestSelectProtocolUnknownConditions(t *testing.T) {
	ref := day(2026, time.March, 2)

	got := selectProtocol(defaultProtocolTable, ConditionSet{"condicao_inexistente": 1}, gaFromDays(200), ref)

	require.True(t, got.RequiresReview())
	assert.Contains(t, got.Reason, "no recognized condition")
}

func TestSelectProtocolIdealDate(t *testing.T) {
	// Monday
	ref := day(2026, time.March, 2)

	// hac targets 39 weeks (273 days); at 270 days the ideal date is 3
	// days out
	got := selectProtocol(defaultProtocolTable, ConditionSet{"hac": 3}, gaFromDays(270), ref)

	require.Equal(t, SelectionOK, got.Status)
	assert.Equal(t, "hac", got.Protocol.Condition)
	assert.Equal(t, day(2026, time.March, 5), got.IdealDate)
	assert.False(t, got.ClampedToReference)
	assert.False(t, got.SundayAdjusted)
}

func TestSelectProtocolClampsToReference(t *testing.T) {
	ref := day(2026, time.March, 2)

	// Already past 39 weeks
	got := selectProtocol(defaultProtocolTable, ConditionSet{"hac": 3}, gaFromDays(280), ref)

	require.Equal(t, SelectionOK, got.Status)
	assert.True(t, got.ClampedToReference)
	assert.Equal(t, ref, got.IdealDate)
}

func TestSelectProtocolImmediateInterruption(t *testing.T) {
	ref := day(2026, time.March, 2)

	// Floor 0 is always in the past, so eclampsia clamps to today
	got := selectProtocol(defaultProtocolTable, ConditionSet{"eclampsia": 2}, gaFromDays(230), ref)

	require.Equal(t, SelectionOK, got.Status)
	assert.Equal(t, "eclampsia", got.Protocol.Condition)
	assert.True(t, got.ClampedToReference)
	assert.Equal(t, ref, got.IdealDate)
}

func TestSelectProtocolSundayAdjusted(t *testing.T) {
	// Monday; 6 days out is Sunday 2026-03-08
	ref := day(2026, time.March, 2)

	got := selectProtocol(defaultProtocolTable, ConditionSet{"hac": 3}, gaFromDays(267), ref)

	require.Equal(t, SelectionOK, got.Status)
	assert.True(t, got.SundayAdjusted)
	assert.Equal(t, day(2026, time.March, 9), got.IdealDate)
}

func TestSelectProtocolMostRestrictiveWins(t *testing.T) {
	ref := day(2026, time.March, 2)

	conditions := ConditionSet{"hac": 3, "rpmo_pretermo": 1}
	got := selectProtocol(defaultProtocolTable, conditions, gaFromDays(220), ref)

	require.Equal(t, SelectionOK, got.Status)
	assert.Equal(t, "rpmo_pretermo", got.Protocol.Condition)
}
