package main

import (
	"fmt"
	"strings"
	"time"
)

// Standard pregnancy duration, 40 weeks.
const fullTermDays = 280

// GA dating sources.
const (
	SourceDUM     = "DUM"
	SourceUSG     = "USG"
	SourceInvalid = "INVALID"
)

// GestationalAge is a derived value object; Weeks*7+Days == TotalDays
// always holds.
type GestationalAge struct {
	TotalDays int
	Weeks     int
	Days      int
}

func gaFromDays(totalDays int) GestationalAge {
	return GestationalAge{
		TotalDays: totalDays,
		Weeks:     totalDays / 7,
		Days:      totalDays % 7,
	}
}

func (ga GestationalAge) String() string {
	return fmt.Sprintf("%dw%dd", ga.Weeks, ga.Days)
}

// gaFromDUM extrapolates gestational age from the last menstrual period to
// a reference date.
func gaFromDUM(dum, at time.Time) GestationalAge {
	return gaFromDays(daysBetween(dum, at))
}

// gaFromUSG extrapolates the GA reported at an ultrasound exam forward to a
// reference date.
func gaFromUSG(usgDate time.Time, usgWeeks, usgDays int, at time.Time) GestationalAge {
	return gaFromDays(usgWeeks*7 + usgDays + daysBetween(usgDate, at))
}

// dumUSGTolerance is the step table of acceptable DUM/USG divergence in
// days, keyed by GA in weeks at the time of the ultrasound. Exams below 8
// weeks use the tightest band.
var dumUSGTolerance = []struct {
	minWeeks, maxWeeks, days int
}{
	{8, 9, 5},
	{10, 11, 7},
	{12, 13, 10},
	{14, 15, 14},
	{16, 19, 21},
	{20, 99, 21},
}

func toleranceDays(usgWeeks int) int {
	for _, band := range dumUSGTolerance {
		if usgWeeks >= band.minWeeks && usgWeeks <= band.maxWeeks {
			return band.days
		}
	}
	return 5
}

// GAInput carries the raw dating fields of one patient record.
type GAInput struct {
	DUMRaw    string
	DUMStatus string
	USGRaw    string
	USGWeeks  int
	USGDays   int
}

// GAResult is the outcome of source reconciliation. Source INVALID carries
// no GA or due date and is terminal for the record; Justification then
// enumerates every failed check, not just the first.
type GAResult struct {
	Source        string
	GA            GestationalAge
	DueDate       time.Time
	Justification string
	DiffDays      int
	ToleranceDays int
	DUMParse      DateParseResult
	USGParse      DateParseResult
}

func (r GAResult) Invalid() bool {
	return r.Source == SourceInvalid
}

// isDUMReliable interprets the free-text LMP status field. Unreliable
// markers are checked first since "não confiável" contains "confiável".
func isDUMReliable(status string) bool {
	s := normalizeText(status)
	if s == "" {
		return false
	}
	if strings.Contains(s, "incerta") || strings.Contains(s, "nao") {
		return false
	}
	return strings.Contains(s, "confiavel") || strings.Contains(s, "certa") || strings.Contains(s, "sim")
}

// determineGASource picks the authoritative dating source.
//
//	Neither source valid          -> INVALID
//	Only USG valid                -> USG
//	Only DUM valid                -> DUM
//	Both valid                    -> compare extrapolated GAs; divergence
//	                                 within tolerance keeps DUM, beyond it
//	                                 the USG wins (USG dating is trusted
//	                                 when reported LMP diverges)
//
// The tolerance boundary is inclusive on the DUM side.
func determineGASource(input GAInput, referenceDate time.Time) GAResult {
	ref := toDay(referenceDate)

	dumParse := parseDateInfo(input.DUMRaw)
	usgParse := parseDateInfo(input.USGRaw)

	dumReliable := isDUMReliable(input.DUMStatus)
	dumValid := dumParse.Valid && dumReliable
	usgValid := usgParse.Valid && (input.USGWeeks > 0 || input.USGDays > 0)

	result := GAResult{DUMParse: dumParse, USGParse: usgParse}

	switch {
	case dumValid && usgValid:
		gaDUM := gaFromDUM(dumParse.Date, ref)
		gaUSG := gaFromUSG(usgParse.Date, input.USGWeeks, input.USGDays, ref)

		diff := gaDUM.TotalDays - gaUSG.TotalDays
		if diff < 0 {
			diff = -diff
		}
		tolerance := toleranceDays(input.USGWeeks)

		result.DiffDays = diff
		result.ToleranceDays = tolerance

		if diff <= tolerance {
			result.Source = SourceDUM
			result.GA = gaDUM
			result.DueDate = toDay(dumParse.Date).AddDate(0, 0, fullTermDays)
			result.Justification = fmt.Sprintf(
				"reliable DUM confirmed by USG (difference %dd <= tolerance %dd for USG at %dw)",
				diff, tolerance, input.USGWeeks)
		} else {
			result.Source = SourceUSG
			result.GA = gaUSG
			result.DueDate = ref.AddDate(0, 0, fullTermDays-gaUSG.TotalDays)
			result.Justification = fmt.Sprintf(
				"DUM/USG divergence (difference %dd > tolerance %dd for USG at %dw), using USG",
				diff, tolerance, input.USGWeeks)
		}

	case usgValid:
		ga := gaFromUSG(usgParse.Date, input.USGWeeks, input.USGDays, ref)
		result.Source = SourceUSG
		result.GA = ga
		result.DueDate = ref.AddDate(0, 0, fullTermDays-ga.TotalDays)
		result.Justification = fmt.Sprintf("%s; using USG (%dw%dd on %s)",
			dumUnusableReason(input, dumParse, dumReliable),
			input.USGWeeks, input.USGDays, dateKey(usgParse.Date))

	case dumValid:
		ga := gaFromDUM(dumParse.Date, ref)
		result.Source = SourceDUM
		result.GA = ga
		result.DueDate = toDay(dumParse.Date).AddDate(0, 0, fullTermDays)
		result.Justification = "only reliable DUM available"

	default:
		result.Source = SourceInvalid
		result.Justification = "cannot compute gestational age: " + strings.Join(gaFailures(input, dumParse, usgParse, dumReliable), "; ")
	}

	if result.Source != SourceInvalid {
		result.Justification += parseAuditSuffix(dumParse, usgParse)
	}

	return result
}

func dumUnusableReason(input GAInput, dumParse DateParseResult, reliable bool) string {
	switch {
	case strings.TrimSpace(input.DUMRaw) == "":
		return "DUM not provided"
	case !dumParse.Valid:
		return fmt.Sprintf("DUM invalid or placeholder (%s)", dumParse.Raw)
	case !reliable:
		return fmt.Sprintf("DUM not reliable (status: %s)", statusOrUnknown(input.DUMStatus))
	default:
		return "DUM not usable"
	}
}

// gaFailures collects every reason the record cannot be dated, so a
// reviewer sees the complete picture in one pass.
func gaFailures(input GAInput, dumParse, usgParse DateParseResult, dumReliable bool) []string {
	var reasons []string

	switch {
	case strings.TrimSpace(input.DUMRaw) == "":
		reasons = append(reasons, "DUM not provided")
	case !dumParse.Valid:
		reasons = append(reasons, fmt.Sprintf("DUM invalid or placeholder (%s)", dumParse.Raw))
	case !dumReliable:
		reasons = append(reasons, fmt.Sprintf("DUM not reliable (status: %s)", statusOrUnknown(input.DUMStatus)))
	}

	switch {
	case strings.TrimSpace(input.USGRaw) == "":
		reasons = append(reasons, "USG not provided")
	case !usgParse.Valid:
		reasons = append(reasons, fmt.Sprintf("USG date invalid or placeholder (%s)", usgParse.Raw))
	case input.USGWeeks <= 0 && input.USGDays <= 0:
		reasons = append(reasons, "GA at USG not provided (0 weeks and 0 days)")
	}

	return reasons
}

func statusOrUnknown(status string) string {
	if strings.TrimSpace(status) == "" {
		return "not provided"
	}
	return status
}

// parseAuditSuffix surfaces day/month swaps applied during date parsing so
// they reach the audit trail even when the computation succeeds.
func parseAuditSuffix(dumParse, usgParse DateParseResult) string {
	var notes []string
	if dumParse.Swapped {
		notes = append(notes, fmt.Sprintf("DUM %s read as MM/DD/YYYY", dumParse.Raw))
	}
	if usgParse.Swapped {
		notes = append(notes, fmt.Sprintf("USG date %s read as MM/DD/YYYY", usgParse.Raw))
	}
	if len(notes) == 0 {
		return ""
	}
	return " [" + strings.Join(notes, "; ") + "]"
}
