// Package api holds the JSON shapes of the REST interface, shared by the gin
// controller and the Go client. Dates travel as YYYY-MM-DD strings and clock
// values as HH:MM:SS.
package api

import (
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

// Статусы, которые принимают эндпоинты обновления занятия
const (
	StatusCancelled  = "cancelled"
	StatusReschedule = "reschedule"
	StatusCompleted  = "completed"
)

// Envelope обёртка успешного ответа, кроме GET working_hours
type Envelope[T any] struct {
	Data T `json:"data"`
}

// ErrorBody тело ответа с ошибкой
type ErrorBody struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
}

// WorkingHours ответ PUT working_hours
type WorkingHours struct {
	TeacherID      int64                   `json:"teacher_id"`
	Version        int64                   `json:"version"`
	WeeklySchedule []model.WorkingHoursDay `json:"weeklySchedule"`
}

type SlotDeleted struct {
	ID      int64 `json:"id"`
	Version int64 `json:"version"`
}

type DayAvailability struct {
	Day       model.Weekday            `json:"day"`
	Date      string                   `json:"date"`
	TimeSlots []model.AvailabilitySlot `json:"timeSlots"`
}

type AvailabilityReport struct {
	TeacherID           int64             `json:"teacher_id"`
	TeacherName         string            `json:"teacher_name"`
	SlotDurationMinutes int               `json:"slot_duration_minutes"`
	StartDate           string            `json:"start_date"`
	EndDate             string            `json:"end_date"`
	Availability        []DayAvailability `json:"availability"`
}

type RescheduleEntry struct {
	ID                        int64          `json:"id"`
	Date                      string         `json:"date"`
	StartTime                 timeslot.Clock `json:"start_time"`
	EndTime                   timeslot.Clock `json:"end_time"`
	PrimaryInstructor         int64          `json:"primary_instructor"`
	PreviousDate              string         `json:"previous_date"`
	PreviousStartTime         timeslot.Clock `json:"previous_start_time"`
	PreviousEndTime           timeslot.Clock `json:"previous_end_time"`
	PreviousPrimaryInstructor int64          `json:"previous_primary_instructor"`
	Reason                    int64          `json:"reason"`
	Timestamp                 string         `json:"timestamp"`
}

type Booking struct {
	ID                 int64             `json:"id"`
	Kind               model.BookingKind `json:"kind"`
	PrimaryInstructor  int64             `json:"primary_instructor"`
	Student            *int64            `json:"student,omitempty"`
	Group              *int64            `json:"group,omitempty"`
	Date               string            `json:"date"`
	StartTime          timeslot.Clock    `json:"start_time"`
	EndTime            timeslot.Clock    `json:"end_time"`
	Status             string            `json:"status"`
	CancellationReason *int64            `json:"cancellation_reason,omitempty"`
	RescheduleHistory  []RescheduleEntry `json:"reschedule_history"`
}

// CreateBookingRequest тело POST classes/class-schedule и classes/demo-class
type CreateBookingRequest struct {
	PrimaryInstructor int64          `json:"primary_instructor" binding:"required,gt=0"`
	Student           *int64         `json:"student"`
	Group             *int64         `json:"group"`
	Date              string         `json:"date" binding:"required"`
	StartTime         timeslot.Clock `json:"start_time"`
	EndTime           timeslot.Clock `json:"end_time"`
}

// UpdateBookingRequest отмена, перенос или завершение. Reason это id причины отмены,
// StartDate принимается как синоним Date.
type UpdateBookingRequest struct {
	Reason            int64          `json:"reason"`
	Status            string         `json:"status" binding:"required,oneof=cancelled reschedule completed"`
	Date              string         `json:"date,omitempty"`
	StartDate         string         `json:"start_date,omitempty"`
	StartTime         timeslot.Clock `json:"start_time"`
	EndTime           timeslot.Clock `json:"end_time"`
	PrimaryInstructor int64          `json:"primary_instructor,omitempty"`
}

// TargetDate возвращает Date, иначе StartDate
func (r UpdateBookingRequest) TargetDate() string {
	if r.Date != "" {
		return r.Date
	}
	return r.StartDate
}

type VacationRequest struct {
	Teacher   int64  `json:"teacher"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason"`
}

type VacationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

type Vacation struct {
	ID                 int64     `json:"id"`
	Teacher            int64     `json:"teacher"`
	StartDate          string    `json:"startDate"`
	EndDate            string    `json:"endDate"`
	Reason             string    `json:"reason"`
	Status             string    `json:"status"`
	ImpactedClass      []Booking `json:"impactedClass"`
	ImpactedClassCount int       `json:"impactedClassCount"`
}

type VacationImpact struct {
	Teacher            int64     `json:"teacher"`
	StartDate          string    `json:"startDate"`
	EndDate            string    `json:"endDate"`
	ImpactedClass      []Booking `json:"impactedClass"`
	ImpactedClassCount int       `json:"impactedClassCount"`
}

type CreateInstructorRequest struct {
	Name           string `json:"name" binding:"required"`
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

type Instructor struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	TelegramChatID      *int64 `json:"telegram_chat_id"`
	WorkingHoursVersion int64  `json:"working_hours_version"`
}
