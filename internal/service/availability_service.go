package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/availability"
	"github.com/Freeeeeet/instructor_scheduler/internal/cache"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/jinzhu/now"
	"go.uber.org/zap"
)

const DefaultMaxRangeDays = 62

type AvailabilityService struct {
	instructors  InstructorRepository
	workingHours WorkingHoursRepository
	bookings     BookingRepository
	vacations    VacationRepository
	cache        cache.Availability
	maxRangeDays int
	logger       *zap.Logger
}

func NewAvailabilityService(
	instructors InstructorRepository,
	workingHours WorkingHoursRepository,
	bookings BookingRepository,
	vacations VacationRepository,
	availabilityCache cache.Availability,
	maxRangeDays int,
	logger *zap.Logger,
) *AvailabilityService {
	if availabilityCache == nil {
		availabilityCache = cache.Nop{}
	}
	if maxRangeDays <= 0 {
		maxRangeDays = DefaultMaxRangeDays
	}
	return &AvailabilityService{
		instructors:  instructors,
		workingHours: workingHours,
		bookings:     bookings,
		vacations:    vacations,
		cache:        availabilityCache,
		maxRangeDays: maxRangeDays,
		logger:       logger,
	}
}

// DateRange возвращает доступность за диапазон дат, используя кэш
func (s *AvailabilityService) DateRange(ctx context.Context, q model.AvailabilityQuery) (model.AvailabilityReport, error) {
	if days := timeslot.DaysBetween(q.StartDate, q.EndDate) + 1; days > s.maxRangeDays {
		return model.AvailabilityReport{}, apperror.Validation("date range of %d days exceeds the limit of %d", days, s.maxRangeDays)
	}

	instructor, err := s.instructor(ctx, q.InstructorID)
	if err != nil {
		return model.AvailabilityReport{}, err
	}

	key := cache.Key{
		InstructorID:          q.InstructorID,
		StartDate:             q.StartDate,
		EndDate:               q.EndDate,
		SlotDurationMinutes:   q.SlotDurationMinutes,
		TimezoneOffsetMinutes: q.TimezoneOffsetMinutes,
	}

	// поколение берётся из Get: инвалидация во время генерации не даст записать устаревшие слоты
	entry, cacheErr := s.cache.Get(ctx, key)
	if cacheErr != nil {
		s.logger.Warn("Availability cache read failed", zap.Error(cacheErr))
	}
	days := entry.Days
	if !entry.Hit {
		days, err = s.Generate(ctx, q)
		if err != nil {
			return model.AvailabilityReport{}, err
		}
		if cacheErr == nil {
			if err := s.cache.Set(ctx, key, entry.Generation, days); err != nil {
				s.logger.Warn("Availability cache write failed", zap.Error(err))
			}
		}
	}

	return model.AvailabilityReport{
		TeacherID:           instructor.ID,
		TeacherName:         instructor.Name,
		SlotDurationMinutes: q.SlotDurationMinutes,
		StartDate:           timeslot.Day(q.StartDate),
		EndDate:             timeslot.Day(q.EndDate),
		Availability:        days,
	}, nil
}

// Week возвращает неделю с понедельника по воскресенье, содержащую date
func (s *AvailabilityService) Week(ctx context.Context, instructorID int64, date time.Time, durationMinutes, offsetMinutes int) (model.AvailabilityReport, error) {
	start, end := WeekBounds(date)
	return s.DateRange(ctx, model.AvailabilityQuery{
		InstructorID:          instructorID,
		StartDate:             start,
		EndDate:               end,
		SlotDurationMinutes:   durationMinutes,
		TimezoneOffsetMinutes: offsetMinutes,
	})
}

// SingleDateForBooking возвращает варианты переноса бронирования на дату:
// длительность берётся из бронирования, само бронирование не считается занятым.
// Кэш не используется.
func (s *AvailabilityService) SingleDateForBooking(ctx context.Context, instructorID int64, date time.Time, bookingID int64) (model.DayAvailability, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return model.DayAvailability{}, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return model.DayAvailability{}, apperror.NotFound("booking", bookingID)
	}

	return s.singleDate(ctx, model.AvailabilityQuery{
		InstructorID:        instructorID,
		StartDate:           date,
		EndDate:             date,
		SlotDurationMinutes: booking.DurationMinutes(),
		ExcludeBookingID:    booking.ID,
	})
}

// SingleDateByMinutes возвращает варианты на одну дату для заданной длительности
func (s *AvailabilityService) SingleDateByMinutes(ctx context.Context, instructorID int64, date time.Time, minutes int) (model.DayAvailability, error) {
	return s.singleDate(ctx, model.AvailabilityQuery{
		InstructorID:        instructorID,
		StartDate:           date,
		EndDate:             date,
		SlotDurationMinutes: minutes,
	})
}

// Generate строит доступность по данным из базы, минуя кэш.
// Внутри транзакции читает через неё, поэтому годится для проверки перед записью.
func (s *AvailabilityService) Generate(ctx context.Context, q model.AvailabilityQuery) ([]model.DayAvailability, error) {
	in := availability.Input{
		StartDate:             q.StartDate,
		EndDate:               q.EndDate,
		SlotDurationMinutes:   q.SlotDurationMinutes,
		TimezoneOffsetMinutes: q.TimezoneOffsetMinutes,
		ExcludeBookingID:      q.ExcludeBookingID,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	instructor, err := s.instructor(ctx, q.InstructorID)
	if err != nil {
		return nil, err
	}

	days, err := s.workingHours.GetByInstructorID(ctx, q.InstructorID)
	if err != nil {
		return nil, fmt.Errorf("get working hours: %w", err)
	}
	in.Schedule = model.NewWeeklySchedule(q.InstructorID, instructor.WorkingHoursVersion, days)

	// соседние дни нужны при сдвиге часового пояса, для отпусков тоже
	in.Bookings, err = s.bookings.ListActiveByInstructor(ctx, q.InstructorID, q.StartDate.AddDate(0, 0, -1), q.EndDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}

	in.Vacations, err = s.vacations.ListApprovedOverlapping(ctx, q.InstructorID, q.StartDate.AddDate(0, 0, -1), q.EndDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("get vacations: %w", err)
	}

	return availability.Generate(in)
}

func (s *AvailabilityService) singleDate(ctx context.Context, q model.AvailabilityQuery) (model.DayAvailability, error) {
	days, err := s.Generate(ctx, q)
	if err != nil {
		return model.DayAvailability{}, err
	}
	return days[0], nil
}

func (s *AvailabilityService) instructor(ctx context.Context, id int64) (*model.Instructor, error) {
	instructor, err := s.instructors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil {
		return nil, apperror.NotFound("instructor", id)
	}
	return instructor, nil
}

// WeekBounds возвращает понедельник и воскресенье недели, содержащей date
func WeekBounds(date time.Time) (time.Time, time.Time) {
	cfg := &now.Config{WeekStartDay: time.Monday, TimeLocation: time.UTC}
	n := cfg.With(timeslot.Day(date))
	return timeslot.Day(n.BeginningOfWeek()), timeslot.Day(n.EndOfWeek())
}
