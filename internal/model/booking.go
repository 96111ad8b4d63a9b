package model

import (
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

type BookingKind string

const (
	BookingKindClass BookingKind = "class"
	BookingKindDemo  BookingKind = "demo"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// BookingEvent действие над занятием
type BookingEvent string

const (
	BookingEventCancel     BookingEvent = "cancel"
	BookingEventReschedule BookingEvent = "reschedule"
	BookingEventComplete   BookingEvent = "complete"
)

// IsTerminal дальнейшие переходы запрещены
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// Transition единственное место, где решается смена статуса занятия.
// Перенос оставляет занятие запланированным, отмена и завершение окончательны.
func (s BookingStatus) Transition(ev BookingEvent) (BookingStatus, error) {
	if s != BookingStatusScheduled {
		return s, apperror.With(apperror.ErrInvalidTransition, "cannot %s a %s booking", ev, s)
	}

	switch ev {
	case BookingEventCancel:
		return BookingStatusCancelled, nil
	case BookingEventReschedule:
		return BookingStatusScheduled, nil
	case BookingEventComplete:
		return BookingStatusCompleted, nil
	default:
		return s, apperror.With(apperror.ErrInvalidTransition, "unknown booking event %q", ev)
	}
}

// RescheduleEntry запись истории переносов, только добавляется
type RescheduleEntry struct {
	ID                   int64          `json:"id"`
	Date                 time.Time      `json:"date"`
	StartTime            timeslot.Clock `json:"startTime"`
	EndTime              timeslot.Clock `json:"endTime"`
	InstructorID         int64          `json:"instructorId"`
	PreviousDate         time.Time      `json:"previousDate"`
	PreviousStartTime    timeslot.Clock `json:"previousStartTime"`
	PreviousEndTime      timeslot.Clock `json:"previousEndTime"`
	PreviousInstructorID int64          `json:"previousInstructorId"`
	ReasonID             int64          `json:"reasonId"`
	Timestamp            time.Time      `json:"timestamp"`
}

// Booking занятие или демо, занимающее время преподавателя.
// Date, StartTime и EndTime в каноническом поясе хранения.
type Booking struct {
	ID                   int64             `json:"id"`
	Kind                 BookingKind       `json:"kind"`
	InstructorID         int64             `json:"instructor_id"`
	StudentID            *int64            `json:"student_id,omitempty"`
	GroupID              *int64            `json:"group_id,omitempty"`
	Date                 time.Time         `json:"date"`
	StartTime            timeslot.Clock    `json:"start_time"`
	EndTime              timeslot.Clock    `json:"end_time"`
	Status               BookingStatus     `json:"status"`
	CancellationReasonID *int64            `json:"cancellation_reason_id,omitempty"`
	RescheduleHistory    []RescheduleEntry `json:"reschedule_history"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// DurationMinutes длительность в минутах
func (b Booking) DurationMinutes() int {
	return timeslot.Minutes(b.StartTime, b.EndTime)
}

// IsActive занятие ещё занимает время преподавателя
func (b Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}

// Cancel отменяет запланированное занятие и запоминает причину
func (b *Booking) Cancel(reasonID int64) error {
	next, err := b.Status.Transition(BookingEventCancel)
	if err != nil {
		return err
	}
	b.Status = next
	b.CancellationReasonID = &reasonID
	return nil
}

// Complete завершает запланированное занятие
func (b *Booking) Complete() error {
	next, err := b.Status.Transition(BookingEventComplete)
	if err != nil {
		return err
	}
	b.Status = next
	return nil
}

// Reschedule переносит занятие и возвращает запись для истории.
// При ошибке занятие не меняется.
func (b *Booking) Reschedule(instructorID int64, date time.Time, start, end timeslot.Clock, reasonID int64) (RescheduleEntry, error) {
	next, err := b.Status.Transition(BookingEventReschedule)
	if err != nil {
		return RescheduleEntry{}, err
	}

	entry := RescheduleEntry{
		Date:                 timeslot.Day(date),
		StartTime:            start,
		EndTime:              end,
		InstructorID:         instructorID,
		PreviousDate:         b.Date,
		PreviousStartTime:    b.StartTime,
		PreviousEndTime:      b.EndTime,
		PreviousInstructorID: b.InstructorID,
		ReasonID:             reasonID,
	}

	b.Status = next
	b.InstructorID = instructorID
	b.Date = entry.Date
	b.StartTime = start
	b.EndTime = end
	return entry, nil
}

// CancellationReason элемент справочника причин отмены
type CancellationReason struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	IsActive bool   `json:"is_active"`
}
