package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", time.Second, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestWorkingHoursReadsETag(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/working_hours/teacher/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"5"`)
		writeJSON(w, http.StatusOK, []model.WorkingHoursDay{{
			Day: model.Tuesday,
			TimeSlots: []model.TimeSlot{
				{ID: 2, StartTime: timeslot.MustParseClock("13:00"), EndTime: timeslot.MustParseClock("14:00"), IsActive: true},
				{ID: 1, StartTime: timeslot.MustParseClock("09:00"), EndTime: timeslot.MustParseClock("10:00"), IsActive: true},
			},
		}})
	})
	c := newTestClient(t, mux)

	ws, err := c.WorkingHours(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), ws.InstructorID)
	assert.Equal(t, int64(5), ws.Version)
	slots := ws.Day(model.Tuesday).Slots
	require.Len(t, slots, 2)
	assert.Equal(t, int64(1), slots[0].ID)
}

func TestSaveWorkingHoursSendsIfMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/working_hours", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"3"`, r.Header.Get("If-Match"))
		var payload model.WorkingHoursPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, int64(7), payload.TeacherID)
		writeJSON(w, http.StatusOK, api.Envelope[api.WorkingHours]{Data: api.WorkingHours{
			TeacherID:      7,
			Version:        4,
			WeeklySchedule: payload.WeeklySchedule,
		}})
	})
	c := newTestClient(t, mux)

	version := int64(3)
	ws, err := c.SaveWorkingHours(context.Background(), model.WorkingHoursPayload{
		TeacherID: 7,
		Version:   &version,
		WeeklySchedule: []model.WorkingHoursDay{{Day: model.Monday, TimeSlots: []model.TimeSlot{
			{StartTime: timeslot.MustParseClock("09:00"), EndTime: timeslot.MustParseClock("10:00"), IsActive: true},
		}}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), ws.Version)
	assert.Len(t, ws.Day(model.Monday).Slots, 1)
}

func TestErrorResponsesKeepTheirKind(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   api.ErrorBody
		want   error
	}{
		{"overlap", http.StatusUnprocessableEntity, api.ErrorBody{Message: "overlap", Kind: "validation", Code: "overlap"}, apperror.ErrOverlap},
		{"slot taken", http.StatusConflict, api.ErrorBody{Message: "taken", Kind: "slot_unavailable"}, apperror.ErrSlotUnavailable},
		{"terminal", http.StatusConflict, api.ErrorBody{Message: "cancelled", Kind: "invalid_transition"}, apperror.ErrInvalidTransition},
		{"stale version", http.StatusConflict, api.ErrorBody{Message: "changed", Kind: "conflict"}, apperror.ErrConflict},
		{"missing reason", http.StatusBadRequest, api.ErrorBody{Message: "reason is required", Kind: "missing_reason"}, apperror.ErrMissingReason},
		{"unknown", http.StatusNotFound, api.ErrorBody{Message: "booking 1 not found"}, apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/classes/class-schedule/1", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			c := newTestClient(t, mux)

			_, err := c.Booking(context.Background(), model.BookingKindClass, 1)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestServerErrorIsNotRetried(t *testing.T) {
	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cancellation_reasons", func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeJSON(w, http.StatusServiceUnavailable, api.ErrorBody{Message: "down"})
	})
	c := newTestClient(t, mux)

	_, err := c.CancellationReasons(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, 1, hits)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(url+"/api", time.Second, nil)

	_, err := c.Instructor(context.Background(), 1)

	assert.True(t, errors.Is(err, apperror.ErrNetwork))
}

func TestCancelBookingWithoutReasonSendsNothing(t *testing.T) {
	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits++ })
	c := newTestClient(t, mux)

	_, err := c.CancelBooking(context.Background(), model.BookingKindClass, 1, 0)

	assert.True(t, errors.Is(err, apperror.ErrMissingReason))
	assert.Zero(t, hits)
}

func TestUpdateDemoUsesPut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/classes/demo-class/9", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"reason":2,"status":"cancelled","start_time":"00:00:00","end_time":"00:00:00"}`, string(raw))
		writeJSON(w, http.StatusOK, api.Envelope[api.Booking]{Data: api.Booking{
			ID:                 9,
			Kind:               model.BookingKindDemo,
			PrimaryInstructor:  1,
			Date:               "2024-06-03",
			StartTime:          timeslot.MustParseClock("10:00"),
			EndTime:            timeslot.MustParseClock("11:00"),
			Status:             "cancelled",
			RescheduleHistory:  []api.RescheduleEntry{},
			CancellationReason: ptr(int64(2)),
		}})
	})
	c := newTestClient(t, mux)

	b, err := c.CancelBooking(context.Background(), model.BookingKindDemo, 9, 2)

	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, b.Status)
	assert.Equal(t, monday, b.Date)
}

func TestDateRangeDecodesDates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/availability/date-range/7/2024-06-03/2024-06-03/60/-180", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"teacher_id": 7, "teacher_name": "Anna", "slot_duration_minutes": 60,
			"start_date": "2024-06-03", "end_date": "2024-06-03",
			"availability": []any{map[string]any{
				"day": "Monday", "date": "2024-06-03",
				"timeSlots": []any{map[string]any{"id": "2024-06-03T09:00", "startTime": "09:00:00", "endTime": "10:00:00", "isActive": true}},
			}},
		}})
	})
	c := newTestClient(t, mux)

	report, err := c.DateRange(context.Background(), model.AvailabilityQuery{
		InstructorID:          7,
		StartDate:             monday,
		EndDate:               monday,
		SlotDurationMinutes:   60,
		TimezoneOffsetMinutes: -180,
	})

	require.NoError(t, err)
	require.Len(t, report.Availability, 1)
	slot := report.Availability[0].TimeSlots[0]
	assert.Equal(t, monday, slot.Date)
	assert.Equal(t, timeslot.MustParseClock("09:00"), slot.StartTime)
}

func TestVacationImpact(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vacation/impact/1/2024-06-03/2024-06-07", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.Envelope[api.VacationImpact]{Data: api.VacationImpact{
			Teacher:   1,
			StartDate: "2024-06-03",
			EndDate:   "2024-06-07",
			ImpactedClass: []api.Booking{{
				ID: 4, Kind: model.BookingKindClass, PrimaryInstructor: 1, Date: "2024-06-04", Status: "scheduled",
			}},
			ImpactedClassCount: 1,
		}})
	})
	c := newTestClient(t, mux)

	impacted, err := c.VacationImpact(context.Background(), 1, monday, monday.AddDate(0, 0, 4))

	require.NoError(t, err)
	require.Len(t, impacted, 1)
	assert.Equal(t, monday.AddDate(0, 0, 1), impacted[0].Date)
}

func ptr[T any](v T) *T { return &v }

func TestDeleteWorkingHoursSlotSendsIfMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/working_hours/11", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-Match") != `"3"` {
			writeJSON(w, http.StatusConflict, api.ErrorBody{Message: "working hours were changed", Kind: "conflict"})
			return
		}
		writeJSON(w, http.StatusOK, api.Envelope[api.SlotDeleted]{Data: api.SlotDeleted{ID: 11, Version: 4}})
	})
	c := newTestClient(t, mux)

	version, err := c.DeleteWorkingHoursSlot(context.Background(), 11, ptr(int64(3)))
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)

	_, err = c.DeleteWorkingHoursSlot(context.Background(), 11, ptr(int64(2)))
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}
