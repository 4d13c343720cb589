package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, handler echo.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(string(payload)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestHeartbeat(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/heartbeat", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, heartbeat(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServices(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/scheduling", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, services(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got ServiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Services, 1)
	assert.Equal(t, "scheduling", got.Services[0].Id)
	assert.Contains(t, got.Services[0].Inputs, "identifier")
}

func TestValidateRecordHandler(t *testing.T) {
	store = newMemoryStore()

	record := validScheduleRequest()
	record.ReferenceDate = "2026-03-02"

	rec := postJSON(t, validateRecordHandler, record)
	require.Equal(t, http.StatusOK, rec.Code)

	var got ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Valid)
	assert.Empty(t, got.BlockingErrors)
	assert.Equal(t, SourceDUM, got.GASource)
	assert.Contains(t, got.Conditions, "pre_eclampsia_grave")
	require.NotNil(t, got.DueDate)
}

func TestScheduleHandler(t *testing.T) {
	store = newMemoryStore()

	record := validScheduleRequest()
	record.ReferenceDate = "2026-03-02"

	rec := postJSON(t, scheduleHandler, record)
	require.Equal(t, http.StatusOK, rec.Code)

	var got ScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, StatusScheduled, got.Status)
	assert.Equal(t, "pre_eclampsia_grave", got.Protocol)
	assert.NotEmpty(t, got.BookingId)
	// 34 weeks lands 33 days out, a Saturday with free capacity
	require.NotNil(t, got.FinalDate)
	assert.Equal(t, "2026-04-04", dateKey(got.FinalDate.Time))
	assert.Equal(t, 33, got.LeadTimeDays)

	// The booking is persisted; repeating the identifier is now rejected
	rec = postJSON(t, scheduleHandler, record)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, StatusRejected, got.Status)
	assert.True(t, containsSubstring(got.BlockingErrors, "already booked"))
}

func TestScheduleHandlerRejectsUnrecognizedDiagnosis(t *testing.T) {
	store = newMemoryStore()

	record := validScheduleRequest()
	record.ReferenceDate = "2026-03-02"
	record.MaternalDiagnoses = "paciente refere estar bem"

	rec := postJSON(t, scheduleHandler, record)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var got ScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, StatusRejected, got.Status)
	assert.Nil(t, got.FinalDate)
	assert.True(t, containsSubstring(got.BlockingErrors, "no clinical diagnosis identified"))
}

func TestImportRecords(t *testing.T) {
	store = newMemoryStore()

	valid := validScheduleRequest()
	valid.Identifier = "111"
	valid.ReferenceDate = "2026-03-02"

	repeat := validScheduleRequest()
	repeat.Identifier = "111"
	repeat.ReferenceDate = "2026-03-02"

	unrecognized := validScheduleRequest()
	unrecognized.Identifier = "222"
	unrecognized.ReferenceDate = "2026-03-02"
	unrecognized.MaternalDiagnoses = "paciente refere estar bem"

	rec := postJSON(t, importRecords, []ScheduleRequest{valid, repeat, unrecognized})
	require.Equal(t, http.StatusOK, rec.Code)

	var got ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.BatchId)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Counts.Scheduled)
	assert.Equal(t, 0, got.Counts.NeedsReview)
	assert.Equal(t, 2, got.Counts.Rejected)

	require.Len(t, got.Results, 3)
	assert.Equal(t, StatusScheduled, got.Results[0].Status)
	assert.Equal(t, StatusRejected, got.Results[1].Status)
	assert.True(t, containsSubstring(got.Results[1].Errors, "duplicated within batch"))
	assert.Equal(t, StatusRejected, got.Results[2].Status)
}
