// Package rest exposes the scheduling services over gin.
package rest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/service"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WorkingHoursService interface {
	Get(ctx context.Context, instructorID int64) (model.WeeklySchedule, error)
	Save(ctx context.Context, payload model.WorkingHoursPayload, expectedVersion *int64) (model.WeeklySchedule, error)
	DeleteSlot(ctx context.Context, slotID int64, expectedVersion *int64) (int64, error)
}

type AvailabilityService interface {
	DateRange(ctx context.Context, q model.AvailabilityQuery) (model.AvailabilityReport, error)
	Week(ctx context.Context, instructorID int64, date time.Time, durationMinutes, offsetMinutes int) (model.AvailabilityReport, error)
	SingleDateForBooking(ctx context.Context, instructorID int64, date time.Time, bookingID int64) (model.DayAvailability, error)
	SingleDateByMinutes(ctx context.Context, instructorID int64, date time.Time, minutes int) (model.DayAvailability, error)
}

type BookingService interface {
	Get(ctx context.Context, id int64) (*model.Booking, error)
	CancellationReasons(ctx context.Context) ([]model.CancellationReason, error)
	Create(ctx context.Context, in service.CreateBookingInput) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID, reasonID int64) (*model.Booking, error)
	Reschedule(ctx context.Context, in service.RescheduleInput) (*model.Booking, error)
	Complete(ctx context.Context, bookingID int64) (*model.Booking, error)
}

type VacationService interface {
	Create(ctx context.Context, in service.VacationInput) (*model.Vacation, error)
	Update(ctx context.Context, id int64, in service.VacationInput) (*model.Vacation, error)
	SetStatus(ctx context.Context, id int64, status model.VacationStatus) (*model.Vacation, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Vacation, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]model.Vacation, error)
	ComputeImpact(ctx context.Context, instructorID int64, start, end time.Time) ([]model.Booking, error)
}

type InstructorService interface {
	Create(ctx context.Context, name string, telegramChatID *int64) (*model.Instructor, error)
	Get(ctx context.Context, id int64) (*model.Instructor, error)
}

// Handler держит сервисы, которые обслуживают HTTP запросы
type Handler struct {
	workingHours WorkingHoursService
	availability AvailabilityService
	bookings     BookingService
	vacations    VacationService
	instructors  InstructorService
	now          func() time.Time
	logger       *zap.Logger
}

func NewHandler(
	workingHours WorkingHoursService,
	availability AvailabilityService,
	bookings BookingService,
	vacations VacationService,
	instructors InstructorService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		workingHours: workingHours,
		availability: availability,
		bookings:     bookings,
		vacations:    vacations,
		instructors:  instructors,
		now:          time.Now,
		logger:       logger,
	}
}

// pathID читает положительный целочисленный параметр пути
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

func pathInt(c *gin.Context, name string) (int, error) {
	raw := c.Param(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func pathDate(c *gin.Context, name string) (time.Time, error) {
	return parseDate(name, c.Param(name))
}

func parseDate(field, raw string) (time.Time, error) {
	date, err := timeslot.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperror.Validation("%s: %v", field, err)
	}
	return date, nil
}

// bindJSON декодирует тело и проверяет binding теги
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.Validation("invalid request body: %v", err)
	}
	return nil
}

// etag форматирует версию рабочих часов как сильный ETag
func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// ifMatch разбирает заголовок If-Match. Пустой заголовок и "*" не ограничивают запись.
func ifMatch(c *gin.Context) (*int64, error) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	version, err := strconv.ParseInt(strings.Trim(raw, `"`), 10, 64)
	if err != nil {
		return nil, apperror.Validation("If-Match must be a working hours version, got %q", c.GetHeader("If-Match"))
	}
	return &version, nil
}
