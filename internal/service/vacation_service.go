package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/events"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"go.uber.org/zap"
)

// VacationInput даты и причина отпуска
type VacationInput struct {
	InstructorID int64
	StartDate    time.Time
	EndDate      time.Time
	Reason       string
}

func (in VacationInput) validate() error {
	if in.InstructorID <= 0 {
		return apperror.Validation("teacher is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return apperror.Validation("start and end dates are required")
	}
	if timeslot.Day(in.EndDate).Before(timeslot.Day(in.StartDate)) {
		return apperror.With(apperror.ErrEndBeforeStart, "end date %s is before start date %s",
			timeslot.FormatDate(in.EndDate), timeslot.FormatDate(in.StartDate))
	}
	return nil
}

type VacationService struct {
	tx          Transactor
	vacations   VacationRepository
	bookings    BookingRepository
	instructors InstructorRepository
	effects     Effects
	logger      *zap.Logger
}

func NewVacationService(
	tx Transactor,
	vacations VacationRepository,
	bookings BookingRepository,
	instructors InstructorRepository,
	effects Effects,
	logger *zap.Logger,
) *VacationService {
	return &VacationService{
		tx:          tx,
		vacations:   vacations,
		bookings:    bookings,
		instructors: instructors,
		effects:     effects,
		logger:      logger,
	}
}

// ComputeImpact возвращает неотменённые занятия преподавателя в [start, end] включительно.
// Занятия не отменяются и не переносятся: это справочная информация.
func (s *VacationService) ComputeImpact(ctx context.Context, instructorID int64, start, end time.Time) ([]model.Booking, error) {
	bookings, err := s.bookings.ListActiveByInstructor(ctx, instructorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}
	return model.ImpactedBookings(bookings, instructorID, start, end), nil
}

// Create создаёт заявку на отпуск и сохраняет снимок затронутых занятий
func (s *VacationService) Create(ctx context.Context, in VacationInput) (*model.Vacation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	v := &model.Vacation{
		InstructorID: in.InstructorID,
		StartDate:    timeslot.Day(in.StartDate),
		EndDate:      timeslot.Day(in.EndDate),
		Reason:       in.Reason,
		Status:       model.VacationStatusPending,
	}

	var instructor *model.Instructor
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		instructor, err = s.lockInstructor(ctx, in.InstructorID)
		if err != nil {
			return err
		}

		if err := s.vacations.Create(ctx, v); err != nil {
			return err
		}
		return s.refreshImpact(ctx, v)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vacation created",
		zap.Int64("vacation_id", v.ID),
		zap.Int64("instructor_id", v.InstructorID),
		zap.Int("impacted", len(v.ImpactedClasses)),
	)

	s.impactComputed(ctx, instructor, v)
	return v, nil
}

// Update меняет даты или причину; при изменении дат пересчитывает затронутые занятия
func (s *VacationService) Update(ctx context.Context, id int64, in VacationInput) (*model.Vacation, error) {
	var (
		v            *model.Vacation
		datesChanged bool
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.lock(ctx, id)
		if err != nil {
			return err
		}
		if in.InstructorID == 0 {
			in.InstructorID = v.InstructorID
		}
		if in.InstructorID != v.InstructorID {
			return apperror.Validation("vacation %d belongs to teacher %d", id, v.InstructorID)
		}
		if err := in.validate(); err != nil {
			return err
		}
		if _, err := s.lockInstructor(ctx, v.InstructorID); err != nil {
			return err
		}

		start, end := timeslot.Day(in.StartDate), timeslot.Day(in.EndDate)
		datesChanged = !start.Equal(v.StartDate) || !end.Equal(v.EndDate)
		v.StartDate, v.EndDate, v.Reason = start, end, in.Reason

		if err := s.vacations.Update(ctx, v); err != nil {
			return err
		}
		if datesChanged {
			return s.refreshImpact(ctx, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vacation updated",
		zap.Int64("vacation_id", v.ID),
		zap.Bool("dates_changed", datesChanged),
	)

	if datesChanged {
		if v.IsApproved() {
			s.effects.invalidate(ctx, v.InstructorID)
		}
		s.impactComputed(ctx, s.instructorOrNil(ctx, v.InstructorID), v)
	}
	return v, nil
}

// SetStatus принимает решение по заявке. Только одобренный отпуск блокирует доступность.
func (s *VacationService) SetStatus(ctx context.Context, id int64, status model.VacationStatus) (*model.Vacation, error) {
	var v *model.Vacation
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.lock(ctx, id)
		if err != nil {
			return err
		}
		if err := v.Status.CanBecome(status); err != nil {
			return err
		}
		if _, err := s.lockInstructor(ctx, v.InstructorID); err != nil {
			return err
		}
		v.Status = status
		return s.vacations.UpdateStatus(ctx, v)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vacation status changed",
		zap.Int64("vacation_id", v.ID),
		zap.String("status", string(v.Status)),
	)

	if v.IsApproved() {
		s.effects.invalidate(ctx, v.InstructorID)
	}
	s.effects.publish(ctx, events.TypeVacationStatus, v.ID, v)
	s.effects.notify(s.instructorOrNil(ctx, v.InstructorID), func(i model.Instructor) error {
		return s.effects.Notifier.VacationStatusChanged(ctx, i, *v)
	})
	return v, nil
}

// Delete удаляет заявку
func (s *VacationService) Delete(ctx context.Context, id int64) error {
	var v *model.Vacation
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.lock(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.lockInstructor(ctx, v.InstructorID); err != nil {
			return err
		}
		deleted, err := s.vacations.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return apperror.NotFound("vacation", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Vacation deleted", zap.Int64("vacation_id", id))
	if v.IsApproved() {
		s.effects.invalidate(ctx, v.InstructorID)
	}
	return nil
}

// Get получает отпуск с сохранённым списком затронутых занятий
func (s *VacationService) Get(ctx context.Context, id int64) (*model.Vacation, error) {
	v, err := s.vacations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get vacation: %w", err)
	}
	if v == nil {
		return nil, apperror.NotFound("vacation", id)
	}
	return v, nil
}

// ListByInstructor получает отпуска преподавателя
func (s *VacationService) ListByInstructor(ctx context.Context, instructorID int64) ([]model.Vacation, error) {
	return s.vacations.ListByInstructor(ctx, instructorID)
}

func (s *VacationService) refreshImpact(ctx context.Context, v *model.Vacation) error {
	impacted, err := s.ComputeImpact(ctx, v.InstructorID, v.StartDate, v.EndDate)
	if err != nil {
		return err
	}

	ids := make([]int64, len(impacted))
	for i, b := range impacted {
		ids[i] = b.ID
	}
	if err := s.vacations.ReplaceImpacted(ctx, v.ID, ids); err != nil {
		return err
	}

	v.ImpactedClasses = impacted
	return nil
}

func (s *VacationService) impactComputed(ctx context.Context, instructor *model.Instructor, v *model.Vacation) {
	s.effects.publish(ctx, events.TypeVacationImpact, v.ID, map[string]any{
		"vacation_id":        v.ID,
		"teacher_id":         v.InstructorID,
		"start_date":         timeslot.FormatDate(v.StartDate),
		"end_date":           timeslot.FormatDate(v.EndDate),
		"impactedClassCount": len(v.ImpactedClasses),
	})
	s.effects.notify(instructor, func(i model.Instructor) error {
		return s.effects.Notifier.VacationImpact(ctx, i, *v)
	})
}

func (s *VacationService) lock(ctx context.Context, id int64) (*model.Vacation, error) {
	v, err := s.vacations.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock vacation: %w", err)
	}
	if v == nil {
		return nil, apperror.NotFound("vacation", id)
	}
	return v, nil
}

// lockInstructor сериализует отпуск с записью и переносом занятий того же преподавателя
func (s *VacationService) lockInstructor(ctx context.Context, id int64) (*model.Instructor, error) {
	instructor, err := s.instructors.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock instructor: %w", err)
	}
	if instructor == nil {
		return nil, apperror.NotFound("instructor", id)
	}
	return instructor, nil
}

func (s *VacationService) instructorOrNil(ctx context.Context, id int64) *model.Instructor {
	instructor, err := s.instructors.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to get instructor for notification", zap.Int64("instructor_id", id), zap.Error(err))
		return nil
	}
	return instructor
}
