package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/repository"
)

// Интерфейсы репозиториев. Реализации в пакете repository, в тестах фейки.

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type InstructorRepository interface {
	Create(ctx context.Context, instructor *model.Instructor) error
	GetByID(ctx context.Context, id int64) (*model.Instructor, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Instructor, error)
	BumpWorkingHoursVersion(ctx context.Context, id int64) (int64, error)
}

type WorkingHoursRepository interface {
	GetByInstructorID(ctx context.Context, instructorID int64) ([]model.DaySchedule, error)
	GetSlotByID(ctx context.Context, id int64) (*repository.StoredSlot, error)
	ReplaceWeek(ctx context.Context, ws model.WeeklySchedule) error
	Delete(ctx context.Context, id int64) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Booking, error)
	ListActiveByInstructor(ctx context.Context, instructorID int64, from, to time.Time) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, booking *model.Booking) error
	Reschedule(ctx context.Context, booking *model.Booking, entry *model.RescheduleEntry) error
}

type VacationRepository interface {
	Create(ctx context.Context, v *model.Vacation) error
	GetByID(ctx context.Context, id int64) (*model.Vacation, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Vacation, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]model.Vacation, error)
	ListApprovedOverlapping(ctx context.Context, instructorID int64, from, to time.Time) ([]model.Vacation, error)
	Update(ctx context.Context, v *model.Vacation) error
	UpdateStatus(ctx context.Context, v *model.Vacation) error
	Delete(ctx context.Context, id int64) (bool, error)
	ReplaceImpacted(ctx context.Context, vacationID int64, bookingIDs []int64) error
}

type CancellationReasonRepository interface {
	GetByID(ctx context.Context, id int64) (*model.CancellationReason, error)
	ListActive(ctx context.Context) ([]model.CancellationReason, error)
}
