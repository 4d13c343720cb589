package main

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.elastic.co/apm"
)

// importRecords processes a JSON array of records in submission order.
// Each record gets the full validate-and-schedule pipeline; one bad
// record never aborts the batch. Identifiers repeated inside the same
// payload are rejected before they reach the store, since the store
// check cannot see bookings that have not been created yet.
func importRecords(c echo.Context) error {
	var records []ScheduleRequest
	if err := c.Bind(&records); err != nil {
		logger(c.Request().Context(), err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "request body must be a JSON array of records"})
	}

	batchId := uuid.New()
	response := ImportResponse{
		BatchId: batchId.String(),
		Total:   len(records),
		Results: make([]ImportVerdict, 0, len(records)),
	}

	span, _ := apm.StartSpan(c.Request().Context(), "Import Batch", "rules")
	defer span.End()

	firstSeen := map[string]int{}
	for i, record := range records {
		verdict := ImportVerdict{Index: i, Identifier: record.Identifier}

		if prev, dup := firstSeen[record.Identifier]; dup && record.Identifier != "" {
			verdict.Status = StatusRejected
			verdict.Errors = []string{fmt.Sprintf(
				"identifier %s duplicated within batch (first seen at index %d)", record.Identifier, prev)}
			response.Counts.Rejected++
			response.Results = append(response.Results, verdict)
			continue
		}
		if record.Identifier != "" {
			firstSeen[record.Identifier] = i
		}

		schedule, err := scheduleRecord(c, record, referenceDateFor(record))
		if err != nil {
			logger(c.Request().Context(), fmt.Errorf("%v (batch %s, index %d)", err, batchId, i))
			verdict.Status = StatusRejected
			verdict.Errors = []string{"booking could not be persisted"}
			response.Counts.Rejected++
			response.Results = append(response.Results, verdict)
			continue
		}

		verdict.Status = schedule.Status
		verdict.Schedule = &schedule
		verdict.Errors = schedule.BlockingErrors
		verdict.Warnings = schedule.Warnings

		switch schedule.Status {
		case StatusScheduled:
			response.Counts.Scheduled++
		case StatusNeedsReview:
			response.Counts.NeedsReview++
		default:
			response.Counts.Rejected++
		}

		sendDecisionLog(c, record, schedule.Status, schedule.GASource)
		response.Results = append(response.Results, verdict)
	}

	return c.JSON(http.StatusOK, response)
}
