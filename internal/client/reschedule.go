package client

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

// ReschedulingAPI часть Client, нужная RescheduleDraft
type ReschedulingAPI interface {
	SingleDate(ctx context.Context, instructorID int64, date time.Time, bookingID int64) (model.DayAvailability, error)
	UpdateBooking(ctx context.Context, kind model.BookingKind, id int64, req api.UpdateBookingRequest) (model.Booking, error)
}

// RescheduleDraft собирает перенос по шагам: преподаватель, дата, слот, причина.
// Выбрать можно только слот из загруженной доступности.
type RescheduleDraft struct {
	api          ReschedulingAPI
	booking      model.Booking
	instructorID int64
	date         time.Time
	available    *model.DayAvailability
	slot         *model.AvailabilitySlot
	reasonID     int64
}

func NewRescheduleDraft(api ReschedulingAPI, booking model.Booking) *RescheduleDraft {
	return &RescheduleDraft{api: api, booking: booking, instructorID: booking.InstructorID}
}

// Booking занятие в последнем известном черновику виде
func (d *RescheduleDraft) Booking() model.Booking { return d.booking }

func (d *RescheduleDraft) InstructorID() int64 { return d.instructorID }

// Date выбранная дата, нулевая если не выбрана
func (d *RescheduleDraft) Date() time.Time { return d.date }

func (d *RescheduleDraft) Slot() (model.AvailabilitySlot, bool) {
	if d.slot == nil {
		return model.AvailabilitySlot{}, false
	}
	return *d.slot, true
}

// Availability закэшированная доступность выбранной даты
func (d *RescheduleDraft) Availability() (model.DayAvailability, bool) {
	if d.available == nil {
		return model.DayAvailability{}, false
	}
	return *d.available, true
}

// SelectInstructor меняет преподавателя. Другой преподаватель
// сбрасывает выбранные дату, слот и доступность.
func (d *RescheduleDraft) SelectInstructor(instructorID int64) {
	if instructorID == d.instructorID {
		return
	}
	d.instructorID = instructorID
	d.date = time.Time{}
	d.clearAvailability()
}

// SelectDate загружает варианты на дату для текущего преподавателя.
// Выбранный слот сбрасывается, даже если загрузка не удалась.
func (d *RescheduleDraft) SelectDate(ctx context.Context, date time.Time) (model.DayAvailability, error) {
	d.date = timeslot.Day(date)
	d.clearAvailability()

	day, err := d.api.SingleDate(ctx, d.instructorID, d.date, d.booking.ID)
	if err != nil {
		return model.DayAvailability{}, err
	}
	d.available = &day
	return day, nil
}

// SelectSlot выбирает [start, end), если он есть в загруженной доступности
func (d *RescheduleDraft) SelectSlot(start, end timeslot.Clock) error {
	if d.available == nil {
		return apperror.Validation("choose a date before choosing a time slot")
	}
	for _, s := range d.available.TimeSlots {
		if s.IsActive && s.StartTime == start && s.EndTime == end {
			slot := s
			d.slot = &slot
			return nil
		}
	}
	return apperror.With(apperror.ErrSlotUnavailable, "%s-%s is not offered on %s",
		start.HHMM(), end.HHMM(), timeslot.FormatDate(d.date))
}

func (d *RescheduleDraft) SetReason(reasonID int64) { d.reasonID = reasonID }

// Submit отправляет перенос. Без причины или слота падает до запроса.
// Если сервер ответил, что слот занят или данные изменились,
// закэшированная доступность сбрасывается и её нужно загрузить заново.
func (d *RescheduleDraft) Submit(ctx context.Context) (model.Booking, error) {
	if d.reasonID == 0 {
		return model.Booking{}, apperror.ErrMissingReason
	}
	if d.slot == nil {
		return model.Booking{}, apperror.Validation("choose a date and a time slot")
	}

	updated, err := d.api.UpdateBooking(ctx, d.booking.Kind, d.booking.ID, api.UpdateBookingRequest{
		Reason:            d.reasonID,
		Status:            api.StatusReschedule,
		Date:              timeslot.FormatDate(d.date),
		StartTime:         d.slot.StartTime,
		EndTime:           d.slot.EndTime,
		PrimaryInstructor: d.instructorID,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrSlotUnavailable) || errors.Is(err, apperror.ErrConflict) {
			d.clearAvailability()
		}
		return model.Booking{}, err
	}

	d.booking = updated
	d.clearAvailability()
	return updated, nil
}

func (d *RescheduleDraft) clearAvailability() {
	d.available = nil
	d.slot = nil
}
