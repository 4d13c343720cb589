package main

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Minimum days between the reference date and any scheduled procedure.
	minLeadTimeDays = 10
	// How far past the ideal date the search may look for a free slot.
	maxSearchOffsetDays = 7
	// Margin assumed when the governing protocol carries none.
	defaultMarginDays = 7
)

// Daily slots assumed for a facility missing from the capacity table.
// Sundays stay closed even for unconfigured facilities. Overridable via
// config.
var defaultDailyCapacity = 5

// Scheduling outcomes.
const (
	StatusScheduled   = "SCHEDULED"
	StatusNeedsReview = "NEEDS_REVIEW"
)

// FacilityCapacity is the static daily slot count per weekday tier.
// Sunday is always zero; the field exists so config overrides that try to
// open Sundays are visible rather than silently ignored.
type FacilityCapacity struct {
	Weekday  int `json:"weekday"`
	Saturday int `json:"saturday"`
	Sunday   int `json:"sunday"`
}

type CapacityTable map[string]FacilityCapacity

var defaultCapacityTable = CapacityTable{
	"Salvalus":  {Weekday: 9, Saturday: 7, Sunday: 0},
	"NotreCare": {Weekday: 6, Saturday: 2, Sunday: 0},
	"Cruzeiro":  {Weekday: 3, Saturday: 1, Sunday: 0},
	"Guarulhos": {Weekday: 2, Saturday: 1, Sunday: 0},
}

// DailyCapacity resolves the slot count for a facility on a given date.
func (t CapacityTable) DailyCapacity(facility string, date time.Time) int {
	capacity, ok := t[facility]
	if !ok {
		if isSunday(date) {
			return 0
		}
		return defaultDailyCapacity
	}
	switch {
	case isSunday(date):
		return capacity.Sunday
	case isSaturday(date):
		return capacity.Saturday
	default:
		return capacity.Weekday
	}
}

// OccupancySnapshot maps calendar date (YYYY-MM-DD) to already-booked
// procedure count for one facility. It is a caller-supplied read-only
// input; the search never mutates it.
type OccupancySnapshot map[string]int

func (s OccupancySnapshot) booked(date time.Time) int {
	return s[dateKey(date)]
}

// AdjustmentFlags records which constraints moved the final date off the
// ideal one.
type AdjustmentFlags struct {
	Sunday   bool `json:"sunday"`
	Capacity bool `json:"capacity"`
	LeadTime bool `json:"leadTime"`
}

// SchedulingResult is the outcome of the date search. FinalDate is zero
// exactly when Status is NEEDS_REVIEW; that invariant is enforced here,
// not by callers.
type SchedulingResult struct {
	IdealDate           time.Time
	FinalDate           time.Time
	Status              string
	LeadTimeDays        int
	OffsetFromIdealDays int
	Adjustments         AdjustmentFlags
	Reason              string
}

func (r SchedulingResult) NeedsReview() bool {
	return r.Status == StatusNeedsReview
}

// findScheduledDate searches for the nearest compliant, available,
// non-Sunday date at or after the minimum lead time, within the protocol
// tolerance window.
//
// The primary scan is anchored at the ideal date. When it fails only
// because candidates were too close to the reference date, a secondary
// scan anchored at the earliest lead-time-compliant date recovers slots
// later in the same tolerance window. Exhausting both scans is the
// deliberate safety valve: a human decides whether to breach the window
// or triage via direct admission.
func findScheduledDate(table CapacityTable, idealDate time.Time, facility string, referenceDate time.Time, marginDays int, occupancy OccupancySnapshot) SchedulingResult {
	ideal := toDay(idealDate)
	ref := toDay(referenceDate)

	if marginDays < 0 {
		marginDays = defaultMarginDays
	}

	windowEnd := ideal.AddDate(0, 0, marginDays)
	minDate := ref.AddDate(0, 0, minLeadTimeDays)

	flags := AdjustmentFlags{}
	leadTimeRejected := false

	for offset := 0; offset <= maxSearchOffsetDays; offset++ {
		candidate := ideal.AddDate(0, 0, offset)

		if candidate.After(windowEnd) {
			break
		}
		if isSunday(candidate) {
			flags.Sunday = true
			continue
		}
		if candidate.Before(minDate) {
			flags.LeadTime = true
			leadTimeRejected = true
			continue
		}
		if occupancy.booked(candidate) >= table.DailyCapacity(facility, candidate) {
			flags.Capacity = true
			continue
		}

		return scheduled(ideal, candidate, ref, flags)
	}

	// The primary scan can exhaust the window purely on lead-time grounds
	// when the ideal date sits too close to today. Re-anchor at the
	// earliest compliant date, still bounded by the same window.
	if leadTimeRejected {
		for offset := 0; offset <= maxSearchOffsetDays; offset++ {
			candidate := minDate.AddDate(0, 0, offset)

			if candidate.After(windowEnd) {
				break
			}
			if isSunday(candidate) {
				flags.Sunday = true
				continue
			}
			if occupancy.booked(candidate) >= table.DailyCapacity(facility, candidate) {
				flags.Capacity = true
				continue
			}

			flags.LeadTime = true
			return scheduled(ideal, candidate, ref, flags)
		}
	}

	return SchedulingResult{
		IdealDate:    ideal,
		Status:       StatusNeedsReview,
		LeadTimeDays: daysBetween(ref, ideal),
		Adjustments:  flags,
		Reason: fmt.Sprintf(
			"no compliant slot at %s within %d days of %s (window end %s, min lead time %d days)",
			facility, maxSearchOffsetDays, dateKey(ideal), dateKey(windowEnd), minLeadTimeDays),
	}
}

func scheduled(ideal, candidate, ref time.Time, flags AdjustmentFlags) SchedulingResult {
	offset := daysBetween(ideal, candidate)

	var adjustments []string
	if flags.Sunday {
		adjustments = append(adjustments, "sunday skipped")
	}
	if flags.Capacity {
		adjustments = append(adjustments, "capacity full on earlier candidates")
	}
	if flags.LeadTime {
		adjustments = append(adjustments, "advanced to meet minimum lead time")
	}

	reason := fmt.Sprintf("scheduled for %s", dateKey(candidate))
	if len(adjustments) > 0 {
		reason += " (" + strings.Join(adjustments, ", ") + ")"
	}

	return SchedulingResult{
		IdealDate:           ideal,
		FinalDate:           candidate,
		Status:              StatusScheduled,
		LeadTimeDays:        daysBetween(ref, candidate),
		OffsetFromIdealDays: offset,
		Adjustments:         flags,
		Reason:              reason,
	}
}
