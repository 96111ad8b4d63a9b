package model

import (
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

// AvailabilitySlot вычисленный свободный слот, в базе не хранится
type AvailabilitySlot struct {
	ID        string         `json:"id"`
	Date      time.Time      `json:"-"`
	StartTime timeslot.Clock `json:"startTime"`
	EndTime   timeslot.Clock `json:"endTime"`
	IsActive  bool           `json:"isActive"`
}

// DayAvailability результат генерации за один день
type DayAvailability struct {
	Day       Weekday            `json:"day"`
	Date      time.Time          `json:"date"`
	TimeSlots []AvailabilitySlot `json:"timeSlots"`
}

// AvailabilityQuery запрос доступности за диапазон дат
type AvailabilityQuery struct {
	InstructorID          int64
	StartDate             time.Time
	EndDate               time.Time
	SlotDurationMinutes   int
	TimezoneOffsetMinutes int
	// ExcludeBookingID не попадает в занятые интервалы:
	// переносимое занятие не блокирует собственное время
	ExcludeBookingID int64
}

// AvailabilityReport ответ на запрос за диапазон дат
type AvailabilityReport struct {
	TeacherID           int64             `json:"teacher_id"`
	TeacherName         string            `json:"teacher_name"`
	SlotDurationMinutes int               `json:"slot_duration_minutes"`
	StartDate           time.Time         `json:"start_date"`
	EndDate             time.Time         `json:"end_date"`
	Availability        []DayAvailability `json:"availability"`
}

// Offers есть ли [start, end) на дату date среди сгенерированных слотов
func Offers(days []DayAvailability, date time.Time, start, end timeslot.Clock) bool {
	for _, d := range days {
		if !timeslot.Day(d.Date).Equal(timeslot.Day(date)) {
			continue
		}
		for _, s := range d.TimeSlots {
			if s.IsActive && s.StartTime == start && s.EndTime == end {
				return true
			}
		}
	}
	return false
}
