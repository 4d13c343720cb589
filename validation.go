package main

import (
	"fmt"
	"strings"
	"time"
)

// Lead-time triage bands for caller-supplied scheduling dates.
const (
	urgentLeadTimeDays  = 7
	minimumLeadTimeWarn = 10
)

// duplicateLookup is the store collaborator contract the orchestrator
// depends on. ErrNotFound means no conflict.
type duplicateLookup func(identifier string) (*BookingRecord, error)

// ValidationResult is the complete problem list for one record plus the
// intermediate rule outputs, so callers can schedule without recomputing.
type ValidationResult struct {
	Valid          bool
	BlockingErrors []string
	Warnings       []string
	GA             GAResult
	Conditions     ConditionSet
	Selection      ProtocolSelection
}

func (v *ValidationResult) block(format string, args ...any) {
	v.BlockingErrors = append(v.BlockingErrors, fmt.Sprintf(format, args...))
}

func (v *ValidationResult) warn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// validateRecord runs every check and accumulates findings; it never
// stops at the first failure, so one round-trip surfaces the complete
// problem list. Checks that depend on a computed GA or a selected
// protocol are skipped when the prerequisite failed, not reported twice.
func validateRecord(record ScheduleRequest, referenceDate time.Time, table ProtocolTable, findDuplicate duplicateLookup) ValidationResult {
	ref := toDay(referenceDate)
	result := ValidationResult{}

	// Required fields
	if strings.TrimSpace(record.PatientName) == "" {
		result.block("patient name is required")
	}
	if strings.TrimSpace(record.Identifier) == "" {
		result.block("patient identifier is required")
	}
	if facility := strings.TrimSpace(record.Facility); facility == "" {
		result.block("facility is required")
	} else if _, known := capacityTable[facility]; !known {
		result.warn("facility %s has no configured capacity, assuming %d slots per day",
			facility, defaultDailyCapacity)
	}

	// Date sanity. Birth date has no fallback source, so an unparseable
	// value blocks; DUM/USG parse failures surface through the GA engine
	// when they matter and as warnings here when they do not.
	if raw := strings.TrimSpace(record.BirthDate); raw != "" {
		birth := parseDateInfo(raw)
		switch {
		case !birth.Valid:
			result.block("birth date %q is not a valid date (%s)", raw, birth.Reason)
		case isAfterDay(birth.Date, ref):
			result.block("birth date %s is in the future", dateKey(birth.Date))
		}
	}
	for _, field := range []struct{ name, raw string }{
		{"DUM", record.DUM},
		{"USG date", record.USGDate},
	} {
		if strings.TrimSpace(field.raw) == "" {
			continue
		}
		parsed := parseDateInfo(field.raw)
		if parsed.Valid && isAfterDay(parsed.Date, ref) {
			result.block("%s %s is in the future", field.name, dateKey(parsed.Date))
		}
	}

	// Duplicate identifier, delegated to the store collaborator
	if findDuplicate != nil && strings.TrimSpace(record.Identifier) != "" {
		existing, err := findDuplicate(record.Identifier)
		if err == nil && existing != nil {
			result.block("identifier %s already booked at %s on %s (booking %s)",
				record.Identifier, existing.Facility, dateKey(existing.ScheduledDate), existing.ID)
		}
	}

	// Gestational age
	result.GA = determineGASource(record.gaInput(), ref)
	if result.GA.Invalid() {
		result.block("%s", result.GA.Justification)
	} else {
		if result.GA.Source == SourceUSG && result.GA.DUMParse.Valid && result.GA.DiffDays > 0 {
			result.warn("DUM and USG diverge by %dd (tolerance %dd); computation used USG",
				result.GA.DiffDays, result.GA.ToleranceDays)
		}
		if result.GA.DUMParse.Swapped {
			result.warn("DUM %s interpreted as MM/DD/YYYY", result.GA.DUMParse.Raw)
		}
		if result.GA.USGParse.Swapped {
			result.warn("USG date %s interpreted as MM/DD/YYYY", result.GA.USGParse.Raw)
		}
	}

	// Protocol
	result.Conditions = matchConditions(record.combinedDiagnosisText())
	result.Selection = selectProtocol(table, result.Conditions, result.GA.GA, ref)
	if result.Selection.RequiresReview() {
		result.block("%s", result.Selection.Reason)
	} else if record.IntendedGAWeeks > 0 {
		floorWeeks := result.Selection.Protocol.GARange().FloorWeeks
		if record.IntendedGAWeeks != floorWeeks {
			result.warn("intended GA %dw differs from protocol %s target %sw",
				record.IntendedGAWeeks, result.Selection.Protocol.Condition, result.Selection.Protocol.IdealGA)
		}
	}

	// Caller-supplied scheduling date, when present, gets lead-time triage
	// and a protocol-window compliance check
	if raw := strings.TrimSpace(record.ScheduledDate); raw != "" {
		scheduled := parseDateInfo(raw)
		if !scheduled.Valid {
			result.block("scheduled date %q is not a valid date (%s)", raw, scheduled.Reason)
		} else {
			checkSuppliedDate(&result, scheduled.Date, ref)
		}
	}

	result.Valid = len(result.BlockingErrors) == 0
	return result
}

// checkSuppliedDate triages lead time and protocol-window compliance for
// a date the caller chose themselves. The date search never produces
// dates that fail these checks; this path exists for imported records
// carrying a pre-agreed date.
func checkSuppliedDate(result *ValidationResult, scheduledDate, ref time.Time) {
	day := toDay(scheduledDate)
	lead := daysBetween(ref, day)

	switch {
	case lead < 0:
		result.block("scheduled date %s is in the past", dateKey(day))
	case lead < urgentLeadTimeDays:
		result.block("scheduled date %s is %dd away: URGENT, refer to emergency department instead of elective scheduling",
			dateKey(day), lead)
	case lead < minimumLeadTimeWarn:
		result.warn("scheduled date %s is %dd away, below the %dd minimum lead time",
			dateKey(day), lead, minLeadTimeDays)
	}

	if isSunday(day) {
		result.block("scheduled date %s falls on a Sunday; no procedures are performed on Sundays", dateKey(day))
	}

	// Window compliance needs both a GA and a protocol
	if result.GA.Invalid() || result.Selection.RequiresReview() {
		return
	}

	gaAtDate := gaFromDays(result.GA.GA.TotalDays + lead)
	protocol := result.Selection.Protocol
	gaRange := protocol.GARange()

	switch {
	case gaAtDate.TotalDays > gaRange.CeilDays()+protocol.MarginDays:
		result.block("GA at scheduled date would be %s, beyond protocol %s window %sw (+%dd margin)",
			gaAtDate, protocol.Condition, protocol.IdealGA, protocol.MarginDays)
	case gaAtDate.TotalDays < gaRange.FloorDays():
		result.warn("GA at scheduled date would be %s, before protocol %s window %sw; confirm early delivery is intended",
			gaAtDate, protocol.Condition, protocol.IdealGA)
	}
}
