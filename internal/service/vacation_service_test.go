package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/events"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVacationImpactNarrowing(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addInstructor(anna, "Anna")
	h.store.addInstructor(boris, "Boris")

	mon := h.store.addBooking(anna, monday, "10:00", "11:00")
	wed := h.store.addBooking(anna, monday.AddDate(0, 0, 2), "10:00", "11:00")
	fri := h.store.addBooking(anna, monday.AddDate(0, 0, 4), "10:00", "11:00")
	h.store.addBooking(boris, monday.AddDate(0, 0, 2), "10:00", "11:00")
	cancelled := h.store.addBooking(anna, monday.AddDate(0, 0, 3), "10:00", "11:00")
	cancelled.Status = model.BookingStatusCancelled
	h.store.bookings[cancelled.ID] = cancelled

	v, err := h.vacations.Create(ctx, VacationInput{
		InstructorID: anna,
		StartDate:    monday,
		EndDate:      monday.AddDate(0, 0, 4),
		Reason:       "trip",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VacationStatusPending, v.Status)
	assert.Equal(t, []int64{mon.ID, wed.ID, fri.ID}, bookingIDs(v.ImpactedClasses))
	assert.Equal(t, []int64{mon.ID, wed.ID, fri.ID}, h.store.impacted[v.ID])
	assert.Equal(t, []string{events.TypeVacationImpact}, h.publisher.types())
	assert.Equal(t, []string{"impact:Anna"}, h.notifier.sent)

	// занятия не отменяются
	assert.Equal(t, model.BookingStatusScheduled, h.store.bookings[mon.ID].Status)

	narrowed, err := h.vacations.Update(ctx, v.ID, VacationInput{
		StartDate: monday.AddDate(0, 0, 1),
		EndDate:   monday.AddDate(0, 0, 3),
		Reason:    "trip",
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{wed.ID}, bookingIDs(narrowed.ImpactedClasses))

	got, err := h.vacations.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{wed.ID}, bookingIDs(got.ImpactedClasses))
}

func TestVacationUpdateReasonOnlyKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addInstructor(anna, "Anna")
	h.store.addBooking(anna, monday, "10:00", "11:00")

	v, err := h.vacations.Create(ctx, VacationInput{InstructorID: anna, StartDate: monday, EndDate: monday})
	require.NoError(t, err)

	_, err = h.vacations.Update(ctx, v.ID, VacationInput{StartDate: monday, EndDate: monday, Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, "sick", h.store.vacations[v.ID].Reason)
	assert.Len(t, h.publisher.events, 1)

	_, err = h.vacations.Update(ctx, v.ID, VacationInput{InstructorID: boris, StartDate: monday, EndDate: monday})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestVacationValidation(t *testing.T) {
	h := newHarness()
	h.store.addInstructor(anna, "Anna")

	_, err := h.vacations.Create(context.Background(), VacationInput{
		InstructorID: anna,
		StartDate:    monday.AddDate(0, 0, 2),
		EndDate:      monday,
	})
	assert.ErrorIs(t, err, apperror.ErrEndBeforeStart)

	_, err = h.vacations.Create(context.Background(), VacationInput{
		InstructorID: 404,
		StartDate:    monday,
		EndDate:      monday,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestVacationApprovalBlocksAvailability(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addInstructor(anna, "Anna")
	h.store.addSlot(anna, model.Monday, "09:00", "12:00")

	v, err := h.vacations.Create(ctx, VacationInput{InstructorID: anna, StartDate: monday, EndDate: monday})
	require.NoError(t, err)

	day, err := h.availability.SingleDateByMinutes(ctx, anna, monday, 60)
	require.NoError(t, err)
	assert.Len(t, day.TimeSlots, 3, "pending vacation does not block")

	approved, err := h.vacations.SetStatus(ctx, v.ID, model.VacationStatusApproved)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved())
	assert.Equal(t, []int64{anna}, h.cache.invalidated)

	day, err = h.availability.SingleDateByMinutes(ctx, anna, monday, 60)
	require.NoError(t, err)
	assert.Empty(t, day.TimeSlots)

	_, err = h.vacations.SetStatus(ctx, v.ID, model.VacationStatusRejected)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	require.NoError(t, h.vacations.Delete(ctx, v.ID))
	assert.Equal(t, []int64{anna, anna}, h.cache.invalidated)

	day, err = h.availability.SingleDateByMinutes(ctx, anna, monday, 60)
	require.NoError(t, err)
	assert.Len(t, day.TimeSlots, 3)

	assert.ErrorIs(t, h.vacations.Delete(ctx, v.ID), apperror.ErrNotFound)
}

func TestVacationBlocksShiftedNeighbourDay(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addInstructor(anna, "Anna")
	h.store.addSlot(anna, model.Tuesday, "20:00", "24:00")
	tuesday := monday.AddDate(0, 0, 1)
	wednesday := monday.AddDate(0, 0, 2)

	v, err := h.vacations.Create(ctx, VacationInput{InstructorID: anna, StartDate: tuesday, EndDate: tuesday})
	require.NoError(t, err)
	_, err = h.vacations.SetStatus(ctx, v.ID, model.VacationStatusApproved)
	require.NoError(t, err)

	report, err := h.availability.DateRange(ctx, model.AvailabilityQuery{
		InstructorID:          anna,
		StartDate:             wednesday,
		EndDate:               wednesday,
		SlotDurationMinutes:   60,
		TimezoneOffsetMinutes: 180,
	})

	require.NoError(t, err)
	require.Len(t, report.Availability, 1)
	assert.Empty(t, report.Availability[0].TimeSlots)
}

func TestVacationWritesHoldInstructorLock(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addInstructor(anna, "Anna")

	v, err := h.vacations.Create(ctx, VacationInput{InstructorID: anna, StartDate: monday, EndDate: monday})
	require.NoError(t, err)

	// одобрение и запись занятия блокируют одну строку преподавателя
	h.store.trace = nil
	_, err = h.vacations.SetStatus(ctx, v.ID, model.VacationStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, []string{"lock instructor 1", fmt.Sprintf("set vacation %d approved", v.ID)}, h.store.trace)

	h.store.trace = nil
	_, err = h.vacations.Update(ctx, v.ID, VacationInput{StartDate: monday, EndDate: monday.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock instructor 1", fmt.Sprintf("update vacation %d", v.ID)}, h.store.trace)

	// преподаватель удалён: изменить заявку нельзя
	delete(h.store.instructors, anna)
	other, err := h.vacations.Update(ctx, v.ID, VacationInput{StartDate: monday, EndDate: monday})
	assert.Nil(t, other)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestInstructorService(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	chat := int64(555)

	created, err := h.instructors.Create(ctx, "  Anna ", &chat)
	require.NoError(t, err)
	assert.Equal(t, "Anna", created.Name)

	got, err := h.instructors.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &chat, got.TelegramChatID)

	_, err = h.instructors.Create(ctx, " ", nil)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func bookingIDs(bookings []model.Booking) []int64 {
	ids := make([]int64, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return ids
}
