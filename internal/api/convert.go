package api

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

func FromDay(d model.DayAvailability) DayAvailability {
	slots := d.TimeSlots
	if slots == nil {
		slots = []model.AvailabilitySlot{}
	}
	return DayAvailability{Day: d.Day, Date: timeslot.FormatDate(d.Date), TimeSlots: slots}
}

// Domain восстанавливает даты слотов, которых нет в JSON
func (d DayAvailability) Domain() (model.DayAvailability, error) {
	date, err := timeslot.ParseDate(d.Date)
	if err != nil {
		return model.DayAvailability{}, err
	}
	slots := make([]model.AvailabilitySlot, len(d.TimeSlots))
	for i, s := range d.TimeSlots {
		s.Date = date
		slots[i] = s
	}
	return model.DayAvailability{Day: d.Day, Date: date, TimeSlots: slots}, nil
}

func FromReport(r model.AvailabilityReport) AvailabilityReport {
	days := make([]DayAvailability, len(r.Availability))
	for i, d := range r.Availability {
		days[i] = FromDay(d)
	}
	return AvailabilityReport{
		TeacherID:           r.TeacherID,
		TeacherName:         r.TeacherName,
		SlotDurationMinutes: r.SlotDurationMinutes,
		StartDate:           timeslot.FormatDate(r.StartDate),
		EndDate:             timeslot.FormatDate(r.EndDate),
		Availability:        days,
	}
}

func (r AvailabilityReport) Domain() (model.AvailabilityReport, error) {
	start, err := timeslot.ParseDate(r.StartDate)
	if err != nil {
		return model.AvailabilityReport{}, err
	}
	end, err := timeslot.ParseDate(r.EndDate)
	if err != nil {
		return model.AvailabilityReport{}, err
	}
	days := make([]model.DayAvailability, len(r.Availability))
	for i, d := range r.Availability {
		if days[i], err = d.Domain(); err != nil {
			return model.AvailabilityReport{}, err
		}
	}
	return model.AvailabilityReport{
		TeacherID:           r.TeacherID,
		TeacherName:         r.TeacherName,
		SlotDurationMinutes: r.SlotDurationMinutes,
		StartDate:           start,
		EndDate:             end,
		Availability:        days,
	}, nil
}

func FromWeeklySchedule(ws model.WeeklySchedule) WorkingHours {
	days := []model.WorkingHoursDay{}
	for _, d := range ws.OrderedDays() {
		days = append(days, model.WorkingHoursDay{Day: d.Day, TimeSlots: d.Slots})
	}
	return WorkingHours{TeacherID: ws.InstructorID, Version: ws.Version, WeeklySchedule: days}
}

func FromBooking(b model.Booking) Booking {
	history := make([]RescheduleEntry, len(b.RescheduleHistory))
	for i, e := range b.RescheduleHistory {
		history[i] = RescheduleEntry{
			ID:                        e.ID,
			Date:                      timeslot.FormatDate(e.Date),
			StartTime:                 e.StartTime,
			EndTime:                   e.EndTime,
			PrimaryInstructor:         e.InstructorID,
			PreviousDate:              timeslot.FormatDate(e.PreviousDate),
			PreviousStartTime:         e.PreviousStartTime,
			PreviousEndTime:           e.PreviousEndTime,
			PreviousPrimaryInstructor: e.PreviousInstructorID,
			Reason:                    e.ReasonID,
			Timestamp:                 e.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	return Booking{
		ID:                 b.ID,
		Kind:               b.Kind,
		PrimaryInstructor:  b.InstructorID,
		Student:            b.StudentID,
		Group:              b.GroupID,
		Date:               timeslot.FormatDate(b.Date),
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		CancellationReason: b.CancellationReasonID,
		RescheduleHistory:  history,
	}
}

func FromBookings(bookings []model.Booking) []Booking {
	out := make([]Booking, len(bookings))
	for i, b := range bookings {
		out[i] = FromBooking(b)
	}
	return out
}

func (b Booking) Domain() (model.Booking, error) {
	date, err := timeslot.ParseDate(b.Date)
	if err != nil {
		return model.Booking{}, err
	}
	out := model.Booking{
		ID:                   b.ID,
		Kind:                 b.Kind,
		InstructorID:         b.PrimaryInstructor,
		StudentID:            b.Student,
		GroupID:              b.Group,
		Date:                 date,
		StartTime:            b.StartTime,
		EndTime:              b.EndTime,
		Status:               model.BookingStatus(b.Status),
		CancellationReasonID: b.CancellationReason,
	}
	for _, e := range b.RescheduleHistory {
		entry, err := e.domain()
		if err != nil {
			return model.Booking{}, err
		}
		out.RescheduleHistory = append(out.RescheduleHistory, entry)
	}
	return out, nil
}

func (e RescheduleEntry) domain() (model.RescheduleEntry, error) {
	date, err := timeslot.ParseDate(e.Date)
	if err != nil {
		return model.RescheduleEntry{}, err
	}
	prev, err := timeslot.ParseDate(e.PreviousDate)
	if err != nil {
		return model.RescheduleEntry{}, err
	}
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return model.RescheduleEntry{}, fmt.Errorf("parse timestamp %q: %w", e.Timestamp, err)
	}
	return model.RescheduleEntry{
		ID:                   e.ID,
		Date:                 date,
		StartTime:            e.StartTime,
		EndTime:              e.EndTime,
		InstructorID:         e.PrimaryInstructor,
		PreviousDate:         prev,
		PreviousStartTime:    e.PreviousStartTime,
		PreviousEndTime:      e.PreviousEndTime,
		PreviousInstructorID: e.PreviousPrimaryInstructor,
		ReasonID:             e.Reason,
		Timestamp:            ts,
	}, nil
}

func FromVacation(v model.Vacation) Vacation {
	impacted := FromBookings(v.ImpactedClasses)
	return Vacation{
		ID:                 v.ID,
		Teacher:            v.InstructorID,
		StartDate:          timeslot.FormatDate(v.StartDate),
		EndDate:            timeslot.FormatDate(v.EndDate),
		Reason:             v.Reason,
		Status:             string(v.Status),
		ImpactedClass:      impacted,
		ImpactedClassCount: len(impacted),
	}
}

func FromInstructor(i model.Instructor) Instructor {
	return Instructor{
		ID:                  i.ID,
		Name:                i.Name,
		TelegramChatID:      i.TelegramChatID,
		WorkingHoursVersion: i.WorkingHoursVersion,
	}
}

func (v Vacation) Domain() (model.Vacation, error) {
	start, err := timeslot.ParseDate(v.StartDate)
	if err != nil {
		return model.Vacation{}, err
	}
	end, err := timeslot.ParseDate(v.EndDate)
	if err != nil {
		return model.Vacation{}, err
	}
	out := model.Vacation{
		ID:           v.ID,
		InstructorID: v.Teacher,
		StartDate:    start,
		EndDate:      end,
		Reason:       v.Reason,
		Status:       model.VacationStatus(v.Status),
	}
	for _, b := range v.ImpactedClass {
		booking, err := b.Domain()
		if err != nil {
			return model.Vacation{}, err
		}
		out.ImpactedClasses = append(out.ImpactedClasses, booking)
	}
	return out, nil
}

func (i Instructor) Domain() model.Instructor {
	return model.Instructor{
		ID:                  i.ID,
		Name:                i.Name,
		TelegramChatID:      i.TelegramChatID,
		WorkingHoursVersion: i.WorkingHoursVersion,
	}
}

// Schedule расписание из ответа PUT working_hours
func (w WorkingHours) Schedule() model.WeeklySchedule {
	return WeeklyScheduleOf(w.TeacherID, w.Version, w.WeeklySchedule)
}

// WeeklyScheduleOf расписание из списка дней в JSON
func WeeklyScheduleOf(instructorID, version int64, days []model.WorkingHoursDay) model.WeeklySchedule {
	out := make([]model.DaySchedule, len(days))
	for i, d := range days {
		out[i] = model.DaySchedule{Day: d.Day, Slots: d.TimeSlots}
	}
	return model.NewWeeklySchedule(instructorID, version, out)
}
