package main

import (
	"fmt"
	"time"
)

// Selection outcomes.
const (
	SelectionOK             = "SELECTED"
	SelectionRequiresReview = "REQUIRES_REVIEW"
)

// ProtocolSelection pairs the governing protocol with the ideal calendar
// date for delivery. Status REQUIRES_REVIEW means no clinical basis for a
// target GA could be identified; there is no low-risk default.
type ProtocolSelection struct {
	Status             string
	Protocol           ProtocolEntry
	IdealDate          time.Time
	Reason             string
	ClampedToReference bool
	SundayAdjusted     bool
}

func (s ProtocolSelection) RequiresReview() bool {
	return s.Status == SelectionRequiresReview
}

// selectProtocol picks the most restrictive protocol for the condition set
// and computes the ideal date: referenceDate + (idealGA floor - current GA)
// in days. A patient already past the ideal GA is clamped to the reference
// date, never scheduled in the past. An ideal date landing on a Sunday is
// advanced to Monday here because Sundays have zero capacity system-wide;
// that moves the nominal target, not just availability.
func selectProtocol(table ProtocolTable, conditions ConditionSet, currentGA GestationalAge, referenceDate time.Time) ProtocolSelection {
	if len(conditions) == 0 {
		return ProtocolSelection{
			Status: SelectionRequiresReview,
			Reason: "no clinical diagnosis identified: every patient must have a recognized condition grounding the target GA",
		}
	}

	protocol, ok := table.MostRestrictive(conditions)
	if !ok {
		return ProtocolSelection{
			Status: SelectionRequiresReview,
			Reason: "no recognized condition resolves to a protocol entry",
		}
	}

	ref := toDay(referenceDate)
	offset := protocol.GARange().FloorDays() - currentGA.TotalDays

	selection := ProtocolSelection{
		Status:   SelectionOK,
		Protocol: protocol,
	}

	if offset <= 0 {
		selection.IdealDate = ref
		selection.ClampedToReference = true
		selection.Reason = fmt.Sprintf(
			"patient at %s already past protocol %s ideal GA (%sw), target clamped to reference date",
			currentGA, protocol.Condition, protocol.IdealGA)
	} else {
		selection.IdealDate = ref.AddDate(0, 0, offset)
		selection.Reason = fmt.Sprintf(
			"protocol %s targets %sw, %d days ahead of current GA %s",
			protocol.Condition, protocol.IdealGA, offset, currentGA)
	}

	if isSunday(selection.IdealDate) {
		selection.IdealDate = selection.IdealDate.AddDate(0, 0, 1)
		selection.SundayAdjusted = true
	}

	return selection
}
