package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/events"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/workinghours"
	"go.uber.org/zap"
)

type WorkingHoursService struct {
	tx           Transactor
	instructors  InstructorRepository
	workingHours WorkingHoursRepository
	effects      Effects
	logger       *zap.Logger
}

func NewWorkingHoursService(
	tx Transactor,
	instructors InstructorRepository,
	workingHours WorkingHoursRepository,
	effects Effects,
	logger *zap.Logger,
) *WorkingHoursService {
	return &WorkingHoursService{
		tx:           tx,
		instructors:  instructors,
		workingHours: workingHours,
		effects:      effects,
		logger:       logger,
	}
}

// Get возвращает недельное расписание преподавателя с текущей версией
func (s *WorkingHoursService) Get(ctx context.Context, instructorID int64) (model.WeeklySchedule, error) {
	instructor, err := s.instructors.GetByID(ctx, instructorID)
	if err != nil {
		return model.WeeklySchedule{}, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil {
		return model.WeeklySchedule{}, apperror.NotFound("instructor", instructorID)
	}

	return s.load(ctx, instructor)
}

// Save заменяет неделю целиком.
// expectedVersion (If-Match или version в теле) включает оптимистичную блокировку;
// без неё побеждает последний записавший.
func (s *WorkingHoursService) Save(ctx context.Context, payload model.WorkingHoursPayload, expectedVersion *int64) (model.WeeklySchedule, error) {
	ws, err := workinghours.FromPayload(payload)
	if err != nil {
		return model.WeeklySchedule{}, err
	}
	if err := workinghours.Validate(ws); err != nil {
		return model.WeeklySchedule{}, err
	}
	if expectedVersion == nil {
		expectedVersion = payload.Version
	}

	var saved model.WeeklySchedule
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		instructor, err := s.instructors.GetForUpdate(ctx, ws.InstructorID)
		if err != nil {
			return fmt.Errorf("lock instructor: %w", err)
		}
		if instructor == nil {
			return apperror.NotFound("instructor", ws.InstructorID)
		}
		if err := checkVersion(instructor, expectedVersion); err != nil {
			return err
		}

		if err := s.workingHours.ReplaceWeek(ctx, ws); err != nil {
			return err
		}

		version, err := s.instructors.BumpWorkingHoursVersion(ctx, instructor.ID)
		if err != nil {
			return err
		}
		instructor.WorkingHoursVersion = version

		saved, err = s.load(ctx, instructor)
		return err
	})
	if err != nil {
		return model.WeeklySchedule{}, err
	}

	s.logger.Info("Working hours saved",
		zap.Int64("instructor_id", saved.InstructorID),
		zap.Int64("version", saved.Version),
		zap.Int("days", len(saved.OrderedDays())),
	)

	s.effects.invalidate(ctx, saved.InstructorID)
	s.effects.publish(ctx, events.TypeWorkingHoursUpdated, saved.InstructorID, workinghours.ToPersistencePayload(saved))

	return saved, nil
}

// DeleteSlot удаляет один сохранённый слот и возвращает новую версию.
// expectedVersion проверяется так же, как в Save.
func (s *WorkingHoursService) DeleteSlot(ctx context.Context, slotID int64, expectedVersion *int64) (int64, error) {
	var (
		instructorID int64
		version      int64
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		slot, err := s.workingHours.GetSlotByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return apperror.NotFound("time slot", slotID)
		}
		instructorID = slot.InstructorID

		instructor, err := s.instructors.GetForUpdate(ctx, instructorID)
		if err != nil {
			return fmt.Errorf("lock instructor: %w", err)
		}
		if instructor == nil {
			return apperror.NotFound("instructor", instructorID)
		}
		if err := checkVersion(instructor, expectedVersion); err != nil {
			return err
		}
		if err := s.workingHours.Delete(ctx, slotID); err != nil {
			return err
		}

		version, err = s.instructors.BumpWorkingHoursVersion(ctx, instructorID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Working hours slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("instructor_id", instructorID),
	)

	s.effects.invalidate(ctx, instructorID)
	s.effects.publish(ctx, events.TypeWorkingHoursUpdated, instructorID, map[string]any{
		"teacher_id":      instructorID,
		"deleted_slot_id": slotID,
		"version":         version,
	})

	return version, nil
}

// checkVersion сравнивает ожидаемую версию с заблокированной строкой преподавателя
func checkVersion(instructor *model.Instructor, expected *int64) error {
	if expected != nil && *expected != instructor.WorkingHoursVersion {
		return apperror.With(apperror.ErrConflict,
			"working hours were changed (version %d, expected %d), re-fetch and retry",
			instructor.WorkingHoursVersion, *expected)
	}
	return nil
}

func (s *WorkingHoursService) load(ctx context.Context, instructor *model.Instructor) (model.WeeklySchedule, error) {
	days, err := s.workingHours.GetByInstructorID(ctx, instructor.ID)
	if err != nil {
		return model.WeeklySchedule{}, fmt.Errorf("get working hours: %w", err)
	}
	return model.NewWeeklySchedule(instructor.ID, instructor.WorkingHoursVersion, days), nil
}
