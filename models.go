package main

import (
	"fmt"
	"time"
)

/**************************
 ****** Service Info ******
 **************************/
type ServiceResponse struct {
	Services []Service `json:"services"`
}

type Service struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Id                string   `json:"id"`
	Version           string   `json:"version,omitempty"`
	Inputs            []string `json:"inputs"`
	UsageRequirements string   `json:"usageRequirements"`
}

/**************************
 ***** Request Shapes *****
 **************************/

// ScheduleRequest is one patient record as submitted by the form or the
// batch importer. Date fields stay raw strings; parsing them with swap
// and placeholder handling is part of the rules, not the transport.
type ScheduleRequest struct {
	PatientName       string `json:"patientName"`
	Identifier        string `json:"identifier"`
	BirthDate         string `json:"birthDate"`
	Facility          string `json:"facility"`
	DUMStatus         string `json:"dumStatus"`
	DUM               string `json:"dum"`
	USGDate           string `json:"usgDate"`
	USGWeeks          int    `json:"usgWeeks"`
	USGDays           int    `json:"usgDays"`
	MaternalDiagnoses string `json:"maternalDiagnoses"`
	FetalDiagnoses    string `json:"fetalDiagnoses"`
	Indication        string `json:"indication"`
	IntendedGAWeeks   int    `json:"intendedGaWeeks,omitempty"`
	ScheduledDate     string `json:"scheduledDate,omitempty"`
	ReferenceDate     string `json:"referenceDate,omitempty"`
}

// combinedDiagnosisText concatenates every free-text clinical field for
// keyword matching.
func (r ScheduleRequest) combinedDiagnosisText() string {
	return r.MaternalDiagnoses + " " + r.FetalDiagnoses + " " + r.Indication
}

// gaInput extracts the dating fields.
func (r ScheduleRequest) gaInput() GAInput {
	return GAInput{
		DUMRaw:    r.DUM,
		DUMStatus: r.DUMStatus,
		USGRaw:    r.USGDate,
		USGWeeks:  r.USGWeeks,
		USGDays:   r.USGDays,
	}
}

/**************************
 ***** Response Shapes ****
 **************************/

type ValidationResponse struct {
	Valid          bool     `json:"valid"`
	BlockingErrors []string `json:"blockingErrors"`
	Warnings       []string `json:"warnings"`
	Conditions     []string `json:"conditions"`
	GASource       string   `json:"gaSource"`
	GA             string   `json:"ga,omitempty"`
	DueDate        *Date    `json:"dueDate,omitempty"`
}

type ScheduleResponse struct {
	Status         string          `json:"status"`
	BookingId      string          `json:"bookingId,omitempty"`
	Protocol       string          `json:"protocol,omitempty"`
	PreferredRoute string          `json:"preferredRoute,omitempty"`
	Conditions     []string        `json:"conditions"`
	GASource       string          `json:"gaSource"`
	GA             string          `json:"ga,omitempty"`
	DueDate        *Date           `json:"dueDate,omitempty"`
	IdealDate      *Date           `json:"idealDate,omitempty"`
	FinalDate      *Date           `json:"finalDate,omitempty"`
	LeadTimeDays   int             `json:"leadTimeDays"`
	Adjustments    AdjustmentFlags `json:"adjustments"`
	Reason         string          `json:"reason"`
	BlockingErrors []string        `json:"blockingErrors,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
}

type ImportResponse struct {
	BatchId string          `json:"batchId"`
	Total   int             `json:"total"`
	Counts  ImportCounts    `json:"counts"`
	Results []ImportVerdict `json:"results"`
}

type ImportCounts struct {
	Scheduled   int `json:"scheduled"`
	NeedsReview int `json:"needsReview"`
	Rejected    int `json:"rejected"`
}

type ImportVerdict struct {
	Index      int               `json:"index"`
	Identifier string            `json:"identifier"`
	Status     string            `json:"status"`
	Schedule   *ScheduleResponse `json:"schedule,omitempty"`
	Errors     []string          `json:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}

/********************************
 ********** App Config **********
 ********************************/

// Config overrides the built-in rule tables. Absent sections keep the
// defaults; Protocols entries merge over the default table per condition.
type Config struct {
	Protocols       map[string]ProtocolEntry    `json:"protocols"`
	Capacity        map[string]FacilityCapacity `json:"capacity"`
	DefaultCapacity *int                        `json:"defaultCapacity"`
	ServiceTitle    string                      `json:"serviceTitle"`
}

/*******************************
 ******* Custom JSON Date ******
 *******************************/

// Date marshals as YYYY-MM-DD and unmarshals through the tolerant parser.
type Date struct {
	time.Time
}

func newDate(t time.Time) *Date {
	if t.IsZero() {
		return nil
	}
	return &Date{Time: toDay(t)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dateKey(d.Time) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {

	// Remove quotes around the date string
	dateStr := string(data)
	if len(dateStr) >= 2 && dateStr[0] == '"' {
		dateStr = dateStr[1 : len(dateStr)-1]
	}

	// Parse string
	parsedTime, ok := parseDate(dateStr)
	if !ok {
		return fmt.Errorf("error parsing date: %q", dateStr)
	}

	// Set parsed time to Date struct
	d.Time = parsedTime
	return nil
}
