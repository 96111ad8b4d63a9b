package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/events"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"go.uber.org/zap"
)

// CreateBookingInput параметры нового занятия
type CreateBookingInput struct {
	Kind         model.BookingKind
	InstructorID int64
	StudentID    *int64
	GroupID      *int64
	Date         time.Time
	StartTime    timeslot.Clock
	EndTime      timeslot.Clock
}

// RescheduleInput параметры переноса. InstructorID = 0 оставляет текущего преподавателя.
type RescheduleInput struct {
	BookingID    int64
	InstructorID int64
	Date         time.Time
	StartTime    timeslot.Clock
	EndTime      timeslot.Clock
	ReasonID     int64
}

type BookingService struct {
	tx           Transactor
	bookings     BookingRepository
	instructors  InstructorRepository
	reasons      CancellationReasonRepository
	availability *AvailabilityService
	effects      Effects
	logger       *zap.Logger
}

func NewBookingService(
	tx Transactor,
	bookings BookingRepository,
	instructors InstructorRepository,
	reasons CancellationReasonRepository,
	availability *AvailabilityService,
	effects Effects,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:           tx,
		bookings:     bookings,
		instructors:  instructors,
		reasons:      reasons,
		availability: availability,
		effects:      effects,
		logger:       logger,
	}
}

// Get получает бронирование по ID
func (s *BookingService) Get(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("booking", id)
	}
	return booking, nil
}

// CancellationReasons возвращает справочник причин
func (s *BookingService) CancellationReasons(ctx context.Context) ([]model.CancellationReason, error) {
	return s.reasons.ListActive(ctx)
}

// Create создаёт занятие, если время есть среди свободных слотов преподавателя
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	if in.Kind != model.BookingKindClass && in.Kind != model.BookingKindDemo {
		return nil, apperror.Validation("unknown booking kind %q", in.Kind)
	}
	if (in.StudentID == nil) == (in.GroupID == nil) {
		return nil, apperror.Validation("exactly one of student or group must be set")
	}
	if err := checkRange(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		Kind:         in.Kind,
		InstructorID: in.InstructorID,
		StudentID:    in.StudentID,
		GroupID:      in.GroupID,
		Date:         timeslot.Day(in.Date),
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Status:       model.BookingStatusScheduled,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.lockInstructors(ctx, in.InstructorID); err != nil {
			return err
		}
		if err := s.ensureOffered(ctx, in.InstructorID, booking.Date, in.StartTime, in.EndTime, 0); err != nil {
			return err
		}
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("instructor_id", booking.InstructorID),
		zap.String("date", timeslot.FormatDate(booking.Date)),
		zap.String("start", booking.StartTime.String()),
	)

	s.effects.invalidate(ctx, booking.InstructorID)
	s.effects.publish(ctx, events.TypeBookingCreated, booking.ID, booking)

	return booking, nil
}

// Cancel отменяет занятие. Причина обязательна и проверяется до обращения к базе.
func (s *BookingService) Cancel(ctx context.Context, bookingID, reasonID int64) (*model.Booking, error) {
	if reasonID == 0 {
		return nil, apperror.With(apperror.ErrMissingReason, "cancellation reason is required")
	}

	var (
		booking *model.Booking
		reason  *model.CancellationReason
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		reason, err = s.reason(ctx, reasonID)
		if err != nil {
			return err
		}

		booking, err = s.lockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := booking.Cancel(reasonID); err != nil {
			return err
		}
		return s.bookings.UpdateStatus(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("instructor_id", booking.InstructorID),
		zap.Int64("reason_id", reasonID),
	)

	s.effects.invalidate(ctx, booking.InstructorID)
	s.effects.publish(ctx, events.TypeBookingCancelled, booking.ID, booking)
	s.effects.notify(s.instructorOrNil(ctx, booking.InstructorID), func(i model.Instructor) error {
		return s.effects.Notifier.BookingCancelled(ctx, i, *booking, reason.Title)
	})

	return booking, nil
}

// Reschedule переносит занятие.
// Проверка доступности и запись выполняются в одной транзакции под блокировкой
// строк преподавателей, поэтому два переноса на одно время не пройдут оба.
func (s *BookingService) Reschedule(ctx context.Context, in RescheduleInput) (*model.Booking, error) {
	if in.ReasonID == 0 {
		return nil, apperror.With(apperror.ErrMissingReason, "reschedule reason is required")
	}
	if err := checkRange(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	var (
		booking     *model.Booking
		entry       model.RescheduleEntry
		reason      *model.CancellationReason
		instructors map[int64]*model.Instructor
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		reason, err = s.reason(ctx, in.ReasonID)
		if err != nil {
			return err
		}

		booking, err = s.lockBooking(ctx, in.BookingID)
		if err != nil {
			return err
		}
		if _, err := booking.Status.Transition(model.BookingEventReschedule); err != nil {
			return err
		}

		target := in.InstructorID
		if target == 0 {
			target = booking.InstructorID
		}
		instructors, err = s.lockInstructors(ctx, booking.InstructorID, target)
		if err != nil {
			return err
		}

		if err := s.ensureOffered(ctx, target, in.Date, in.StartTime, in.EndTime, booking.ID); err != nil {
			return err
		}

		entry, err = booking.Reschedule(target, in.Date, in.StartTime, in.EndTime, in.ReasonID)
		if err != nil {
			return err
		}
		return s.bookings.Reschedule(ctx, booking, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking rescheduled",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("from_instructor_id", entry.PreviousInstructorID),
		zap.Int64("to_instructor_id", entry.InstructorID),
		zap.String("date", timeslot.FormatDate(entry.Date)),
		zap.String("start", entry.StartTime.String()),
	)

	s.effects.invalidate(ctx, entry.PreviousInstructorID, entry.InstructorID)
	s.effects.publish(ctx, events.TypeBookingRescheduled, booking.ID, map[string]any{
		"booking": booking,
		"entry":   entry,
	})
	s.effects.notify(instructors[entry.InstructorID], func(i model.Instructor) error {
		return s.effects.Notifier.BookingRescheduled(ctx, i, *booking, entry, reason.Title)
	})
	if entry.PreviousInstructorID != entry.InstructorID {
		s.effects.notify(instructors[entry.PreviousInstructorID], func(i model.Instructor) error {
			return s.effects.Notifier.BookingCancelled(ctx, i, previous(*booking, entry), reason.Title)
		})
	}

	return booking, nil
}

// Complete отмечает занятие проведённым
func (s *BookingService) Complete(ctx context.Context, bookingID int64) (*model.Booking, error) {
	var booking *model.Booking
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.lockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := booking.Complete(); err != nil {
			return err
		}
		return s.bookings.UpdateStatus(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking completed", zap.Int64("booking_id", booking.ID))
	s.effects.publish(ctx, events.TypeBookingCompleted, booking.ID, booking)

	return booking, nil
}

// ensureOffered проверяет, что [start, end) есть среди сгенерированных слотов на дату
func (s *BookingService) ensureOffered(ctx context.Context, instructorID int64, date time.Time, start, end timeslot.Clock, excludeBookingID int64) error {
	days, err := s.availability.Generate(ctx, model.AvailabilityQuery{
		InstructorID:        instructorID,
		StartDate:           date,
		EndDate:             date,
		SlotDurationMinutes: timeslot.Minutes(start, end),
		ExcludeBookingID:    excludeBookingID,
	})
	if err != nil {
		return err
	}
	if !model.Offers(days, date, start, end) {
		return apperror.With(apperror.ErrSlotUnavailable, "%s %s-%s is not available for instructor %d",
			timeslot.FormatDate(date), start.HHMM(), end.HHMM(), instructorID)
	}
	return nil
}

func (s *BookingService) reason(ctx context.Context, id int64) (*model.CancellationReason, error) {
	reason, err := s.reasons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cancellation reason: %w", err)
	}
	if reason == nil || !reason.IsActive {
		return nil, apperror.With(apperror.ErrUnknownReason, "unknown cancellation reason %d", id)
	}
	return reason, nil
}

func (s *BookingService) lockBooking(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.bookings.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("booking", id)
	}
	return booking, nil
}

// lockInstructors блокирует строки преподавателей в порядке возрастания ID
func (s *BookingService) lockInstructors(ctx context.Context, ids ...int64) (map[int64]*model.Instructor, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	locked := make(map[int64]*model.Instructor, len(sorted))
	for _, id := range sorted {
		if _, ok := locked[id]; ok {
			continue
		}
		instructor, err := s.instructors.GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lock instructor: %w", err)
		}
		if instructor == nil {
			return nil, apperror.NotFound("instructor", id)
		}
		locked[id] = instructor
	}
	return locked, nil
}

func (s *BookingService) instructorOrNil(ctx context.Context, id int64) *model.Instructor {
	instructor, err := s.instructors.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to get instructor for notification", zap.Int64("instructor_id", id), zap.Error(err))
		return nil
	}
	return instructor
}

func checkRange(start, end timeslot.Clock) error {
	if !start.Valid() || !end.Valid() {
		return apperror.Validation("time must be within 00:00 and 24:00")
	}
	if timeslot.Minutes(start, end) <= 0 {
		return apperror.With(apperror.ErrEndBeforeStart, "end time %s must be after start time %s", end.HHMM(), start.HHMM())
	}
	return nil
}

// previous возвращает занятие в том виде, в каком оно было до переноса
func previous(b model.Booking, e model.RescheduleEntry) model.Booking {
	b.InstructorID = e.PreviousInstructorID
	b.Date = e.PreviousDate
	b.StartTime = e.PreviousStartTime
	b.EndTime = e.PreviousEndTime
	return b
}
