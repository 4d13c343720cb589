package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.elastic.co/apm"
)

var (
	appVersion string
)

func services(c echo.Context) error {
	// Build basic service description
	title := "Obstetric Procedure Scheduling"
	if config != nil && config.ServiceTitle != "" {
		title = config.ServiceTitle
	}
	serviceResponse := ServiceResponse{
		Services: []Service{
			{
				Title:       title,
				Description: "Validates obstetric records and schedules procedures by clinical protocol, gestational age and facility capacity",
				Id:          "scheduling",
				Version:     appVersion,
				Inputs: []string{
					"patientName", "identifier", "birthDate", "facility",
					"dumStatus", "dum", "usgDate", "usgWeeks", "usgDays",
					"maternalDiagnoses", "fetalDiagnoses", "indication",
					"intendedGaWeeks", "scheduledDate",
				},
				UsageRequirements: "Bearer token issued by the configured OpenID provider",
			},
		},
	}

	// Return response
	return c.JSON(http.StatusOK, serviceResponse)
}

func heartbeat(c echo.Context) error {
	// Heartbeat function to assess service status. Immediately return 200
	return c.NoContent(http.StatusOK)
}

// referenceDateFor resolves the record's reference date, defaulting to
// today. A supplied but unparseable value falls back to today; the
// orchestrator reports nothing for it since it is an operator field, not
// patient data.
func referenceDateFor(record ScheduleRequest) time.Time {
	if record.ReferenceDate != "" {
		if ref, ok := parseDate(record.ReferenceDate); ok {
			return toDay(ref)
		}
	}
	return toDay(time.Now().UTC())
}

// findDuplicateIn adapts the store to the orchestrator's collaborator
// contract. Store errors other than not-found are logged and treated as
// no-conflict; the unique constraint at Create catches what the advisory
// check missed.
func findDuplicateIn(c echo.Context, store RecordStore) duplicateLookup {
	return func(identifier string) (*BookingRecord, error) {
		existing, err := store.FindByIdentifier(c.Request().Context(), identifier)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger(c.Request().Context(), err)
			}
			return nil, err
		}
		return existing, nil
	}
}

func validateRecordHandler(c echo.Context) error {
	var record ScheduleRequest
	if err := c.Bind(&record); err != nil {
		logger(c.Request().Context(), err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	span, _ := apm.StartSpan(c.Request().Context(), "Validate Record", "rules")
	result := validateRecord(record, referenceDateFor(record), protocolTable, findDuplicateIn(c, store))
	span.End()

	sendDecisionLog(c, record, verdictOf(result), result.GA.Source)

	return c.JSON(http.StatusOK, validationResponse(result))
}

func scheduleHandler(c echo.Context) error {
	var record ScheduleRequest
	if err := c.Bind(&record); err != nil {
		logger(c.Request().Context(), err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	ref := referenceDateFor(record)

	span, _ := apm.StartSpan(c.Request().Context(), "Schedule Record", "rules")
	response, storeErr := scheduleRecord(c, record, ref)
	span.End()

	if storeErr != nil {
		logger(c.Request().Context(), storeErr)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "booking could not be persisted"})
	}

	sendDecisionLog(c, record, response.Status, response.GASource)

	status := http.StatusOK
	if response.Status == StatusRejected {
		status = http.StatusUnprocessableEntity
	}
	if response.Status == StatusDuplicate {
		status = http.StatusConflict
	}
	return c.JSON(status, response)
}

// Handler-level verdicts beyond the search's own statuses.
const (
	StatusRejected  = "REJECTED"
	StatusDuplicate = "DUPLICATE"
)

// scheduleRecord runs the full pipeline for one record: validate, search
// for a date against an occupancy snapshot, persist. The returned error
// is infrastructure-only; every domain outcome is inside the response.
func scheduleRecord(c echo.Context, record ScheduleRequest, ref time.Time) (ScheduleResponse, error) {
	ctx := c.Request().Context()

	result := validateRecord(record, ref, protocolTable, findDuplicateIn(c, store))
	response := baseScheduleResponse(result)

	if !result.Valid {
		response.Status = StatusRejected
		return response, nil
	}

	selection := result.Selection
	response.Protocol = selection.Protocol.Condition
	response.PreferredRoute = selection.Protocol.PreferredRoute
	response.IdealDate = newDate(selection.IdealDate)

	// Snapshot occupancy across every date either scan can visit
	from := toDay(selection.IdealDate)
	minDate := ref.AddDate(0, 0, minLeadTimeDays)
	if minDate.Before(from) {
		from = minDate
	}
	margin := selection.Protocol.MarginDays
	windowEnd := toDay(selection.IdealDate).AddDate(0, 0, margin)

	storeSpan, _ := apm.StartSpan(ctx, "Occupancy Snapshot", "store")
	occupancy, err := store.Occupancy(ctx, record.Facility, from, windowEnd)
	storeSpan.End()
	if err != nil {
		return response, err
	}

	search := findScheduledDate(capacityTable, selection.IdealDate, record.Facility, ref, margin, occupancy)
	response.Status = search.Status
	response.LeadTimeDays = search.LeadTimeDays
	response.Adjustments = search.Adjustments
	response.Reason = search.Reason

	if search.NeedsReview() {
		return response, nil
	}

	response.FinalDate = newDate(search.FinalDate)

	booking := &BookingRecord{
		PatientName:   record.PatientName,
		Identifier:    record.Identifier,
		Facility:      record.Facility,
		ScheduledDate: search.FinalDate,
		Protocol:      selection.Protocol.Condition,
		GASource:      result.GA.Source,
	}

	createSpan, _ := apm.StartSpan(ctx, "Create Booking", "store")
	err = store.Create(ctx, booking)
	createSpan.End()
	if err != nil {
		// A concurrent request for the same identifier won the race
		if errors.Is(err, ErrDuplicateIdentifier) {
			response.Status = StatusDuplicate
			response.FinalDate = nil
			response.BlockingErrors = append(response.BlockingErrors,
				fmt.Sprintf("identifier %s was booked concurrently", record.Identifier))
			return response, nil
		}
		return response, err
	}

	response.BookingId = booking.ID.String()
	return response, nil
}

func baseScheduleResponse(result ValidationResult) ScheduleResponse {
	response := ScheduleResponse{
		Conditions:     result.Conditions.IDs(),
		GASource:       result.GA.Source,
		BlockingErrors: result.BlockingErrors,
		Warnings:       result.Warnings,
	}
	if !result.GA.Invalid() {
		response.GA = result.GA.GA.String()
		response.DueDate = newDate(result.GA.DueDate)
	}
	return response
}

func validationResponse(result ValidationResult) ValidationResponse {
	response := ValidationResponse{
		Valid:          result.Valid,
		BlockingErrors: result.BlockingErrors,
		Warnings:       result.Warnings,
		Conditions:     result.Conditions.IDs(),
		GASource:       result.GA.Source,
	}
	if response.BlockingErrors == nil {
		response.BlockingErrors = []string{}
	}
	if response.Warnings == nil {
		response.Warnings = []string{}
	}
	if !result.GA.Invalid() {
		response.GA = result.GA.GA.String()
		response.DueDate = newDate(result.GA.DueDate)
	}
	return response
}

func verdictOf(result ValidationResult) string {
	if result.Valid {
		return "VALID"
	}
	return StatusRejected
}
