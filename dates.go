package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Years below this are treated as placeholder values (e.g. 01/01/1900),
// not real dates.
const minValidYear = 1920

// Date format interpretations reported by parseDateInfo.
const (
	formatISO     = "ISO"
	formatDayMon  = "DD/MM/YYYY"
	formatMonDay  = "MM/DD/YYYY"
	formatTextual = "textual"
)

type DateParseResult struct {
	Date       time.Time
	Valid      bool
	Swapped    bool
	FormatUsed string
	Raw        string
	Reason     string
}

func toDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the calendar-day difference end-start, ignoring any
// time-of-day component on either side.
func daysBetween(start, end time.Time) int {
	return int(toDay(end).Sub(toDay(start)).Hours() / 24)
}

func isSunday(t time.Time) bool {
	return t.Weekday() == time.Sunday
}

func isSaturday(t time.Time) bool {
	return t.Weekday() == time.Saturday
}

func isAfterDay(t1, t2 time.Time) bool {
	return toDay(t1).After(toDay(t2))
}

func dateKey(t time.Time) string {
	return toDay(t).Format("2006-01-02")
}

// parseDateInfo runs the ordered-attempt date parser and reports which
// interpretation succeeded. Attempt order:
//
//  1. ISO (YYYY-MM-DD, time component tolerated)
//  2. DD/MM/YYYY (priority, Brazilian convention)
//  3. MM/DD/YYYY, only when DD/MM is numerically impossible (swap recorded)
//  4. A short list of textual layouts
//
// Years below minValidYear are rejected as placeholders at every step.
func parseDateInfo(raw string) DateParseResult {
	result := DateParseResult{Raw: raw, Reason: "date missing or blank"}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" || trimmed == "null" || trimmed == "undefined" {
		result.Raw = trimmed
		return result
	}
	result.Raw = trimmed

	// ISO first. Cut any time component before parsing.
	if len(trimmed) >= 8 && trimmed[4] == '-' {
		datePart := trimmed
		if i := strings.IndexAny(datePart, " T"); i > 0 {
			datePart = datePart[:i]
		}
		if t, err := time.Parse("2006-01-02", datePart); err == nil {
			if t.Year() < minValidYear {
				result.Reason = fmt.Sprintf("year %d below minimum valid year %d", t.Year(), minValidYear)
				return result
			}
			result.Date = toDay(t)
			result.Valid = true
			result.FormatUsed = formatISO
			result.Reason = "interpreted as ISO (YYYY-MM-DD)"
			return result
		}
	}

	// Slash or dash separated triples: disambiguate DD/MM vs MM/DD.
	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) == 3 {
		p0, err0 := strconv.Atoi(parts[0])
		p1, err1 := strconv.Atoi(parts[1])
		p2, err2 := strconv.Atoi(parts[2])
		if err0 != nil || err1 != nil || err2 != nil {
			result.Reason = "date contains non-numeric components"
			return result
		}

		// Two-digit years pivot at 50
		if p2 < 100 {
			if p2 > 50 {
				p2 += 1900
			} else {
				p2 += 2000
			}
		}

		if p2 < minValidYear {
			result.Reason = fmt.Sprintf("year %d below minimum valid year %d", p2, minValidYear)
			return result
		}

		// DD/MM/YYYY takes priority
		if t, ok := makeDate(p2, p1, p0); ok {
			result.Date = t
			result.Valid = true
			result.FormatUsed = formatDayMon
			result.Reason = fmt.Sprintf("interpreted as DD/MM/YYYY (day %d, month %d, year %d)", p0, p1, p2)
			return result
		}

		// Fall back to MM/DD/YYYY only when DD/MM was impossible
		if t, ok := makeDate(p2, p0, p1); ok {
			result.Date = t
			result.Valid = true
			result.Swapped = true
			result.FormatUsed = formatMonDay
			result.Reason = fmt.Sprintf("day/month swapped: DD/MM/YYYY impossible, interpreted as MM/DD/YYYY (month %d, day %d, year %d)", p0, p1, p2)
			return result
		}

		result.Reason = fmt.Sprintf("no valid interpretation for %q as DD/MM or MM/DD", trimmed)
		return result
	}

	// Last resort: textual layouts
	layouts := []string{
		"2 Jan 2006",
		"2 January 2006",
		"Jan 2, 2006",
		"02 Jan 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			if t.Year() < minValidYear {
				result.Reason = fmt.Sprintf("year %d below minimum valid year %d", t.Year(), minValidYear)
				return result
			}
			result.Date = toDay(t)
			result.Valid = true
			result.FormatUsed = formatTextual
			result.Reason = fmt.Sprintf("interpreted via textual layout %q", layout)
			return result
		}
	}

	result.Reason = fmt.Sprintf("unable to parse date: %s", trimmed)
	return result
}

// makeDate builds a midnight-UTC date and rejects overflow (e.g. day 31 in
// a 30-day month normalizing into the next month).
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// parseDate is the plain variant for callers that only need the date.
func parseDate(raw string) (time.Time, bool) {
	result := parseDateInfo(raw)
	return result.Date, result.Valid
}
