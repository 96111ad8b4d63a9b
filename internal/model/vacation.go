package model

import (
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
)

type VacationStatus string

// Статусы отпуска
const (
	VacationStatusPending  VacationStatus = "pending"
	VacationStatusApproved VacationStatus = "approved"
	VacationStatusRejected VacationStatus = "rejected"
)

// ParseVacationStatus проверяет статус из запроса
func ParseVacationStatus(s string) (VacationStatus, error) {
	switch st := VacationStatus(s); st {
	case VacationStatusPending, VacationStatusApproved, VacationStatusRejected:
		return st, nil
	}
	return "", apperror.Validation("unknown vacation status %q", s)
}

// CanBecome можно ли перевести заявку из s в next.
// Решение принимается только по ожидающим заявкам.
func (s VacationStatus) CanBecome(next VacationStatus) error {
	if s != VacationStatusPending || next == VacationStatusPending {
		return apperror.With(apperror.ErrInvalidTransition, "vacation cannot move from %s to %s", s, next)
	}
	return nil
}

// Vacation заявка преподавателя на отпуск, целыми календарными днями
type Vacation struct {
	ID              int64          `json:"id"`
	InstructorID    int64          `json:"teacher"`
	StartDate       time.Time      `json:"startDate"`
	EndDate         time.Time      `json:"endDate"`
	Reason          string         `json:"reason"`
	Status          VacationStatus `json:"status"`
	ImpactedClasses []Booking      `json:"impactedClass"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsApproved отпуск блокирует доступность
func (v Vacation) IsApproved() bool {
	return v.Status == VacationStatusApproved
}

// Covers дата внутри отпуска включительно
func (v Vacation) Covers(date time.Time) bool {
	return timeslot.WithinDates(date, v.StartDate, v.EndDate)
}

// ImpactedBookings неотменённые занятия преподавателя в [start, end] включительно,
// в исходном порядке
func ImpactedBookings(bookings []Booking, instructorID int64, start, end time.Time) []Booking {
	impacted := []Booking{}
	for _, b := range bookings {
		if b.InstructorID != instructorID || !b.IsActive() {
			continue
		}
		if timeslot.WithinDates(b.Date, start, end) {
			impacted = append(impacted, b)
		}
	}
	return impacted
}
