package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReschedulingAPI struct {
	days      map[int64]model.DayAvailability
	updates   []api.UpdateBookingRequest
	updateErr error
}

func (f *fakeReschedulingAPI) SingleDate(_ context.Context, instructorID int64, date time.Time, _ int64) (model.DayAvailability, error) {
	day, ok := f.days[instructorID]
	if !ok {
		return model.DayAvailability{}, apperror.NotFound("instructor", instructorID)
	}
	day.Date = date
	return day, nil
}

func (f *fakeReschedulingAPI) UpdateBooking(_ context.Context, kind model.BookingKind, id int64, req api.UpdateBookingRequest) (model.Booking, error) {
	f.updates = append(f.updates, req)
	if f.updateErr != nil {
		return model.Booking{}, f.updateErr
	}
	return model.Booking{ID: id, Kind: kind, InstructorID: req.PrimaryInstructor, StartTime: req.StartTime, EndTime: req.EndTime, Status: model.BookingStatusScheduled}, nil
}

func newDraft() (*RescheduleDraft, *fakeReschedulingAPI) {
	slots := func(ranges ...[2]string) model.DayAvailability {
		day := model.DayAvailability{Day: model.Tuesday}
		for _, r := range ranges {
			day.TimeSlots = append(day.TimeSlots, model.AvailabilitySlot{StartTime: clock(r[0]), EndTime: clock(r[1]), IsActive: true})
		}
		return day
	}
	fake := &fakeReschedulingAPI{days: map[int64]model.DayAvailability{
		1: slots([2]string{"09:00", "10:00"}, [2]string{"11:00", "12:00"}),
		2: slots([2]string{"14:00", "15:00"}),
	}}
	booking := model.Booking{
		ID:           42,
		Kind:         model.BookingKindClass,
		InstructorID: 1,
		Date:         monday,
		StartTime:    clock("10:00"),
		EndTime:      clock("11:00"),
		Status:       model.BookingStatusScheduled,
	}
	return NewRescheduleDraft(fake, booking), fake
}

func TestDraftInstructorChangeClearsChoice(t *testing.T) {
	d, _ := newDraft()
	_, err := d.SelectDate(context.Background(), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NoError(t, d.SelectSlot(clock("09:00"), clock("10:00")))

	d.SelectInstructor(1)
	_, ok := d.Slot()
	assert.True(t, ok)

	d.SelectInstructor(2)
	_, ok = d.Slot()
	assert.False(t, ok)
	assert.True(t, d.Date().IsZero())
	_, ok = d.Availability()
	assert.False(t, ok)
}

func TestDraftSlotMustBeOffered(t *testing.T) {
	d, _ := newDraft()

	err := d.SelectSlot(clock("09:00"), clock("10:00"))
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = d.SelectDate(context.Background(), monday.AddDate(0, 0, 1))
	require.NoError(t, err)

	err = d.SelectSlot(clock("09:30"), clock("10:30"))
	assert.True(t, errors.Is(err, apperror.ErrSlotUnavailable))
	_, ok := d.Slot()
	assert.False(t, ok)
}

func TestDraftSubmitRequiresReason(t *testing.T) {
	d, fake := newDraft()
	_, err := d.SelectDate(context.Background(), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NoError(t, d.SelectSlot(clock("11:00"), clock("12:00")))

	_, err = d.Submit(context.Background())

	assert.True(t, errors.Is(err, apperror.ErrMissingReason))
	assert.Empty(t, fake.updates)
}

func TestDraftSubmit(t *testing.T) {
	d, fake := newDraft()
	d.SelectInstructor(2)
	_, err := d.SelectDate(context.Background(), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NoError(t, d.SelectSlot(clock("14:00"), clock("15:00")))
	d.SetReason(3)

	b, err := d.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []api.UpdateBookingRequest{{
		Reason:            3,
		Status:            api.StatusReschedule,
		Date:              "2024-06-04",
		StartTime:         clock("14:00"),
		EndTime:           clock("15:00"),
		PrimaryInstructor: 2,
	}}, fake.updates)
	assert.Equal(t, int64(2), b.InstructorID)
	assert.Equal(t, b, d.Booking())
}

func TestDraftDropsAvailabilityWhenSlotTaken(t *testing.T) {
	d, fake := newDraft()
	fake.updateErr = apperror.With(apperror.ErrSlotUnavailable, "taken")
	_, err := d.SelectDate(context.Background(), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NoError(t, d.SelectSlot(clock("09:00"), clock("10:00")))
	d.SetReason(1)

	_, err = d.Submit(context.Background())

	assert.True(t, errors.Is(err, apperror.ErrSlotUnavailable))
	_, ok := d.Availability()
	assert.False(t, ok)
	_, ok = d.Slot()
	assert.False(t, ok)
	assert.Equal(t, clock("10:00"), d.Booking().StartTime)
}
