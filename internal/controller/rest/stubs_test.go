package rest

import (
	"context"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/service"
)

// Заглушки сервисов: незаданная функция паникует, recovery отдаёт 500.

type stubWorkingHours struct {
	get        func(id int64) (model.WeeklySchedule, error)
	save       func(payload model.WorkingHoursPayload, expected *int64) (model.WeeklySchedule, error)
	deleteSlot func(slotID int64, expected *int64) (int64, error)
}

func (s *stubWorkingHours) Get(_ context.Context, id int64) (model.WeeklySchedule, error) {
	return s.get(id)
}

func (s *stubWorkingHours) Save(_ context.Context, payload model.WorkingHoursPayload, expected *int64) (model.WeeklySchedule, error) {
	return s.save(payload, expected)
}

func (s *stubWorkingHours) DeleteSlot(_ context.Context, slotID int64, expected *int64) (int64, error) {
	return s.deleteSlot(slotID, expected)
}

type stubAvailability struct {
	dateRange  func(q model.AvailabilityQuery) (model.AvailabilityReport, error)
	week       func(id int64, date time.Time, duration, offset int) (model.AvailabilityReport, error)
	forBooking func(id int64, date time.Time, bookingID int64) (model.DayAvailability, error)
	byMinutes  func(id int64, date time.Time, minutes int) (model.DayAvailability, error)
}

func (s *stubAvailability) DateRange(_ context.Context, q model.AvailabilityQuery) (model.AvailabilityReport, error) {
	return s.dateRange(q)
}

func (s *stubAvailability) Week(_ context.Context, id int64, date time.Time, duration, offset int) (model.AvailabilityReport, error) {
	return s.week(id, date, duration, offset)
}

func (s *stubAvailability) SingleDateForBooking(_ context.Context, id int64, date time.Time, bookingID int64) (model.DayAvailability, error) {
	return s.forBooking(id, date, bookingID)
}

func (s *stubAvailability) SingleDateByMinutes(_ context.Context, id int64, date time.Time, minutes int) (model.DayAvailability, error) {
	return s.byMinutes(id, date, minutes)
}

type stubBookings struct {
	calls      int
	get        func(id int64) (*model.Booking, error)
	reasons    func() ([]model.CancellationReason, error)
	create     func(in service.CreateBookingInput) (*model.Booking, error)
	cancel     func(id, reasonID int64) (*model.Booking, error)
	reschedule func(in service.RescheduleInput) (*model.Booking, error)
	complete   func(id int64) (*model.Booking, error)
}

func (s *stubBookings) Get(_ context.Context, id int64) (*model.Booking, error) {
	s.calls++
	return s.get(id)
}

func (s *stubBookings) CancellationReasons(context.Context) ([]model.CancellationReason, error) {
	s.calls++
	return s.reasons()
}

func (s *stubBookings) Create(_ context.Context, in service.CreateBookingInput) (*model.Booking, error) {
	s.calls++
	return s.create(in)
}

func (s *stubBookings) Cancel(_ context.Context, id, reasonID int64) (*model.Booking, error) {
	s.calls++
	return s.cancel(id, reasonID)
}

func (s *stubBookings) Reschedule(_ context.Context, in service.RescheduleInput) (*model.Booking, error) {
	s.calls++
	return s.reschedule(in)
}

func (s *stubBookings) Complete(_ context.Context, id int64) (*model.Booking, error) {
	s.calls++
	return s.complete(id)
}

type stubVacations struct {
	create    func(in service.VacationInput) (*model.Vacation, error)
	update    func(id int64, in service.VacationInput) (*model.Vacation, error)
	setStatus func(id int64, status model.VacationStatus) (*model.Vacation, error)
	delete    func(id int64) error
	get       func(id int64) (*model.Vacation, error)
	list      func(instructorID int64) ([]model.Vacation, error)
	impact    func(instructorID int64, start, end time.Time) ([]model.Booking, error)
}

func (s *stubVacations) Create(_ context.Context, in service.VacationInput) (*model.Vacation, error) {
	return s.create(in)
}

func (s *stubVacations) Update(_ context.Context, id int64, in service.VacationInput) (*model.Vacation, error) {
	return s.update(id, in)
}

func (s *stubVacations) SetStatus(_ context.Context, id int64, status model.VacationStatus) (*model.Vacation, error) {
	return s.setStatus(id, status)
}

func (s *stubVacations) Delete(_ context.Context, id int64) error {
	return s.delete(id)
}

func (s *stubVacations) Get(_ context.Context, id int64) (*model.Vacation, error) {
	return s.get(id)
}

func (s *stubVacations) ListByInstructor(_ context.Context, instructorID int64) ([]model.Vacation, error) {
	return s.list(instructorID)
}

func (s *stubVacations) ComputeImpact(_ context.Context, instructorID int64, start, end time.Time) ([]model.Booking, error) {
	return s.impact(instructorID, start, end)
}

type stubInstructors struct {
	create func(name string, chatID *int64) (*model.Instructor, error)
	get    func(id int64) (*model.Instructor, error)
}

func (s *stubInstructors) Create(_ context.Context, name string, chatID *int64) (*model.Instructor, error) {
	return s.create(name, chatID)
}

func (s *stubInstructors) Get(_ context.Context, id int64) (*model.Instructor, error) {
	return s.get(id)
}
