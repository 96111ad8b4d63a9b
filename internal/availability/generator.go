// Package availability derives bookable slots from working hours, bookings and
// vacations. It is pure: callers load the inputs and decide about caching.
package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

const (
	MinOffsetMinutes = -12 * 60
	MaxOffsetMinutes = 14 * 60
)

// Input всё, что нужно Generate для одного преподавателя
type Input struct {
	Schedule  model.WeeklySchedule
	Bookings  []model.Booking
	Vacations []model.Vacation

	StartDate             time.Time
	EndDate               time.Time
	SlotDurationMinutes   int
	TimezoneOffsetMinutes int
	ExcludeBookingID      int64
}

// Validate проверяет параметры запроса
func (in Input) Validate() error {
	if in.SlotDurationMinutes <= 0 {
		return apperror.Validation("slot duration must be positive, got %d", in.SlotDurationMinutes)
	}
	if in.SlotDurationMinutes > timeslot.MinutesPerDay {
		return apperror.Validation("slot duration must not exceed %d minutes", timeslot.MinutesPerDay)
	}
	if in.TimezoneOffsetMinutes < MinOffsetMinutes || in.TimezoneOffsetMinutes > MaxOffsetMinutes {
		return apperror.Validation("timezone offset %d is outside [%d, %d]",
			in.TimezoneOffsetMinutes, MinOffsetMinutes, MaxOffsetMinutes)
	}
	if timeslot.Day(in.EndDate).Before(timeslot.Day(in.StartDate)) {
		return apperror.Validation("end date %s is before start date %s",
			timeslot.FormatDate(in.EndDate), timeslot.FormatDate(in.StartDate))
	}
	return nil
}

// Generate возвращает по одной записи на каждую дату в [StartDate, EndDate].
//
// Даты и время результата в запрошенном часовом поясе. Рабочие часы и занятия
// хранятся в каноническом поясе: локальная дата d берёт время из канонических
// дней d-1, d и d+1, сдвинутое на offset и обрезанное по локальным суткам.
// Поэтому сдвиг не теряет время на границе полуночи. При offset 0 участвует только d.
func Generate(in Input) ([]model.DayAvailability, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	size := in.SlotDurationMinutes * timeslot.SecondsPerMinute
	shift := in.TimezoneOffsetMinutes * timeslot.SecondsPerMinute
	bookings := busyBookings(in)
	onVacation := func(d time.Time) bool {
		return blockedByVacation(in.Vacations, in.Schedule.InstructorID, d)
	}

	dates := timeslot.Dates(in.StartDate, in.EndDate)
	out := make([]model.DayAvailability, 0, len(dates))
	for _, date := range dates {
		day := model.DayAvailability{
			Day:       model.WeekdayOf(date),
			Date:      date,
			TimeSlots: []model.AvailabilitySlot{},
		}
		if onVacation(date) {
			out = append(out, day)
			continue
		}

		working := workingIntervals(in.Schedule, date, shift, onVacation)
		busy := bookedIntervals(bookings, date, shift)
		for _, w := range working {
			for _, free := range timeslot.Subtract(w, busy) {
				for _, part := range timeslot.Split(free, size) {
					day.TimeSlots = append(day.TimeSlots, newSlot(date, part))
				}
			}
		}
		sortSlots(day.TimeSlots)
		out = append(out, day)
	}
	return out, nil
}

// workingIntervals активные рабочие часы, попадающие на локальную дату,
// в секундах от её локальной полуночи. Канонические дни, для которых blocked
// возвращает true, ничего не дают.
func workingIntervals(ws model.WeeklySchedule, date time.Time, shift int, blocked func(time.Time) bool) []timeslot.Interval {
	var out []timeslot.Interval
	for delta := -1; delta <= 1; delta++ {
		if shift == 0 && delta != 0 {
			continue
		}
		canonical := date.AddDate(0, 0, delta)
		if blocked(canonical) {
			continue
		}
		base := delta*timeslot.SecondsPerDay + shift
		for _, s := range ws.Day(model.WeekdayOf(canonical)).ActiveSlots() {
			iv, ok := timeslot.Span(s.StartTime, s.EndTime, base).Clip(0, timeslot.SecondsPerDay)
			if ok {
				out = append(out, iv)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func bookedIntervals(bookings []model.Booking, date time.Time, shift int) []timeslot.Interval {
	var out []timeslot.Interval
	for _, b := range bookings {
		delta := timeslot.DaysBetween(date, b.Date)
		if delta < -1 || delta > 1 {
			continue
		}
		iv, ok := timeslot.Span(b.StartTime, b.EndTime, delta*timeslot.SecondsPerDay+shift).Clip(0, timeslot.SecondsPerDay)
		if ok {
			out = append(out, iv)
		}
	}
	return out
}

func busyBookings(in Input) []model.Booking {
	out := make([]model.Booking, 0, len(in.Bookings))
	for _, b := range in.Bookings {
		if b.InstructorID != in.Schedule.InstructorID || !b.IsActive() {
			continue
		}
		if in.ExcludeBookingID != 0 && b.ID == in.ExcludeBookingID {
			continue
		}
		out = append(out, b)
	}
	return out
}

func blockedByVacation(vacations []model.Vacation, instructorID int64, date time.Time) bool {
	for _, v := range vacations {
		if v.InstructorID == instructorID && v.IsApproved() && v.Covers(date) {
			return true
		}
	}
	return false
}

func newSlot(date time.Time, iv timeslot.Interval) model.AvailabilitySlot {
	start, end := timeslot.Clock(iv.Start), timeslot.Clock(iv.End)
	return model.AvailabilitySlot{
		ID:        SlotID(date, start),
		Date:      date,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
	}
}

// SlotID стабильный идентификатор кандидата: локальная дата и начало
func SlotID(date time.Time, start timeslot.Clock) string {
	return fmt.Sprintf("%sT%s", timeslot.FormatDate(date), start.HHMM())
}

func sortSlots(slots []model.AvailabilitySlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime == slots[j].StartTime {
			return slots[i].EndTime < slots[j].EndTime
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}
