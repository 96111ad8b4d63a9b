// Package client is the Go SDK of the scheduling REST API. It decodes error
// responses back into apperror kinds and never retries on its own: a failed
// call is reported once and the caller decides whether to try again.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/timeslot"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultTimeout = 15 * time.Second

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New создаёт клиент для API с корнем baseURL, например http://localhost:8080/api
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	return &Client{http: rc, logger: logger}
}

// WorkingHours получает недельное расписание, версия берётся из ETag
func (c *Client) WorkingHours(ctx context.Context, instructorID int64) (model.WeeklySchedule, error) {
	var days []model.WorkingHoursDay
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/working_hours/teacher/%d", instructorID), nil, &days)
	if err != nil {
		return model.WeeklySchedule{}, err
	}
	version, err := parseETag(resp.Header().Get("ETag"))
	if err != nil {
		return model.WeeklySchedule{}, err
	}
	return api.WeeklyScheduleOf(instructorID, version, days), nil
}

// SaveWorkingHours сохраняет неделю, версия из тела уходит в If-Match
func (c *Client) SaveWorkingHours(ctx context.Context, payload model.WorkingHoursPayload) (model.WeeklySchedule, error) {
	var out api.Envelope[api.WorkingHours]
	req := c.request(ctx, payload, &out)
	if payload.Version != nil {
		req.SetHeader("If-Match", strconv.Quote(strconv.FormatInt(*payload.Version, 10)))
	}
	if _, err := c.send(req, http.MethodPut, "/working_hours"); err != nil {
		return model.WeeklySchedule{}, err
	}
	return out.Data.Schedule(), nil
}

// DeleteWorkingHoursSlot удаляет сохранённый слот и возвращает новую версию.
// Переданная версия уходит в If-Match, при устаревшей версии будет ErrConflict.
func (c *Client) DeleteWorkingHoursSlot(ctx context.Context, slotID int64, version *int64) (int64, error) {
	var out api.Envelope[api.SlotDeleted]
	req := c.request(ctx, nil, &out)
	if version != nil {
		req.SetHeader("If-Match", strconv.Quote(strconv.FormatInt(*version, 10)))
	}
	if _, err := c.send(req, http.MethodDelete, fmt.Sprintf("/working_hours/%d", slotID)); err != nil {
		return 0, err
	}
	return out.Data.Version, nil
}

func (c *Client) DateRange(ctx context.Context, q model.AvailabilityQuery) (model.AvailabilityReport, error) {
	path := fmt.Sprintf("/availability/date-range/%d/%s/%s/%d/%d", q.InstructorID,
		timeslot.FormatDate(q.StartDate), timeslot.FormatDate(q.EndDate), q.SlotDurationMinutes, q.TimezoneOffsetMinutes)
	return c.report(ctx, path)
}

func (c *Client) Week(ctx context.Context, instructorID int64, date time.Time, durationMinutes, offsetMinutes int) (model.AvailabilityReport, error) {
	path := fmt.Sprintf("/availability/week/%d/%s/%d/%d", instructorID, timeslot.FormatDate(date), durationMinutes, offsetMinutes)
	return c.report(ctx, path)
}

// WeekImage PNG-картинка недели, в которую входит date
func (c *Client) WeekImage(ctx context.Context, instructorID int64, date time.Time, durationMinutes, offsetMinutes int) ([]byte, error) {
	path := fmt.Sprintf("/availability/week-image/%d/%s/%d/%d", instructorID, timeslot.FormatDate(date), durationMinutes, offsetMinutes)
	req := c.request(ctx, nil, nil).SetHeader("Accept", "image/png")
	resp, err := c.send(req, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// SingleDate варианты переноса занятия на один день
func (c *Client) SingleDate(ctx context.Context, instructorID int64, date time.Time, bookingID int64) (model.DayAvailability, error) {
	return c.day(ctx, fmt.Sprintf("/availability/single-date/%d/%s/%d", instructorID, timeslot.FormatDate(date), bookingID))
}

func (c *Client) SingleDateByMinutes(ctx context.Context, instructorID int64, date time.Time, minutes int) (model.DayAvailability, error) {
	return c.day(ctx, fmt.Sprintf("/availability/single-date-by-minutes/%d/%s/%d", instructorID, timeslot.FormatDate(date), minutes))
}

func (c *Client) CreateBooking(ctx context.Context, kind model.BookingKind, req api.CreateBookingRequest) (model.Booking, error) {
	return c.booking(ctx, http.MethodPost, bookingPath(kind), req)
}

func (c *Client) Booking(ctx context.Context, kind model.BookingKind, id int64) (model.Booking, error) {
	return c.booking(ctx, http.MethodGet, fmt.Sprintf("%s/%d", bookingPath(kind), id), nil)
}

// UpdateBooking меняет статус: занятия через PATCH, демо через PUT
func (c *Client) UpdateBooking(ctx context.Context, kind model.BookingKind, id int64, req api.UpdateBookingRequest) (model.Booking, error) {
	method := http.MethodPatch
	if kind == model.BookingKindDemo {
		method = http.MethodPut
	}
	return c.booking(ctx, method, fmt.Sprintf("%s/%d", bookingPath(kind), id), req)
}

// CancelBooking без причины падает с ошибкой, не обращаясь к серверу
func (c *Client) CancelBooking(ctx context.Context, kind model.BookingKind, id, reasonID int64) (model.Booking, error) {
	if reasonID == 0 {
		return model.Booking{}, apperror.ErrMissingReason
	}
	return c.UpdateBooking(ctx, kind, id, api.UpdateBookingRequest{Reason: reasonID, Status: api.StatusCancelled})
}

func (c *Client) CompleteBooking(ctx context.Context, kind model.BookingKind, id int64) (model.Booking, error) {
	return c.UpdateBooking(ctx, kind, id, api.UpdateBookingRequest{Status: api.StatusCompleted})
}

func (c *Client) CancellationReasons(ctx context.Context) ([]model.CancellationReason, error) {
	var out api.Envelope[[]model.CancellationReason]
	if _, err := c.do(ctx, http.MethodGet, "/cancellation_reasons", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreateVacation(ctx context.Context, req api.VacationRequest) (model.Vacation, error) {
	return c.vacation(ctx, http.MethodPost, "/vacation", req)
}

func (c *Client) UpdateVacation(ctx context.Context, id int64, req api.VacationRequest) (model.Vacation, error) {
	return c.vacation(ctx, http.MethodPatch, fmt.Sprintf("/vacation/%d", id), req)
}

func (c *Client) SetVacationStatus(ctx context.Context, id int64, status model.VacationStatus) (model.Vacation, error) {
	return c.vacation(ctx, http.MethodPatch, fmt.Sprintf("/vacation/%d/status", id), api.VacationStatusRequest{Status: string(status)})
}

func (c *Client) Vacation(ctx context.Context, id int64) (model.Vacation, error) {
	return c.vacation(ctx, http.MethodGet, fmt.Sprintf("/vacation/%d", id), nil)
}

func (c *Client) DeleteVacation(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/vacation/%d", id), nil, nil)
	return err
}

func (c *Client) Vacations(ctx context.Context, instructorID int64) ([]model.Vacation, error) {
	var out api.Envelope[[]api.Vacation]
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/vacation/teacher/%d", instructorID), nil, &out); err != nil {
		return nil, err
	}
	vacations := make([]model.Vacation, 0, len(out.Data))
	for _, v := range out.Data {
		vacation, err := v.Domain()
		if err != nil {
			return nil, fmt.Errorf("decode vacation %d: %w", v.ID, err)
		}
		vacations = append(vacations, vacation)
	}
	return vacations, nil
}

// VacationImpact занятия, которые заденет отпуск в [start, end]
func (c *Client) VacationImpact(ctx context.Context, instructorID int64, start, end time.Time) ([]model.Booking, error) {
	var out api.Envelope[api.VacationImpact]
	path := fmt.Sprintf("/vacation/impact/%d/%s/%s", instructorID, timeslot.FormatDate(start), timeslot.FormatDate(end))
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	bookings := make([]model.Booking, 0, len(out.Data.ImpactedClass))
	for _, b := range out.Data.ImpactedClass {
		booking, err := b.Domain()
		if err != nil {
			return nil, fmt.Errorf("decode booking %d: %w", b.ID, err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func (c *Client) CreateInstructor(ctx context.Context, req api.CreateInstructorRequest) (model.Instructor, error) {
	var out api.Envelope[api.Instructor]
	if _, err := c.do(ctx, http.MethodPost, "/instructors", req, &out); err != nil {
		return model.Instructor{}, err
	}
	return out.Data.Domain(), nil
}

func (c *Client) Instructor(ctx context.Context, id int64) (model.Instructor, error) {
	var out api.Envelope[api.Instructor]
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/instructors/%d", id), nil, &out); err != nil {
		return model.Instructor{}, err
	}
	return out.Data.Domain(), nil
}

func (c *Client) report(ctx context.Context, path string) (model.AvailabilityReport, error) {
	var out api.Envelope[api.AvailabilityReport]
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return model.AvailabilityReport{}, err
	}
	report, err := out.Data.Domain()
	if err != nil {
		return model.AvailabilityReport{}, fmt.Errorf("decode availability: %w", err)
	}
	return report, nil
}

func (c *Client) day(ctx context.Context, path string) (model.DayAvailability, error) {
	var out api.Envelope[api.DayAvailability]
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return model.DayAvailability{}, err
	}
	day, err := out.Data.Domain()
	if err != nil {
		return model.DayAvailability{}, fmt.Errorf("decode availability: %w", err)
	}
	return day, nil
}

func (c *Client) booking(ctx context.Context, method, path string, body any) (model.Booking, error) {
	var out api.Envelope[api.Booking]
	if _, err := c.do(ctx, method, path, body, &out); err != nil {
		return model.Booking{}, err
	}
	booking, err := out.Data.Domain()
	if err != nil {
		return model.Booking{}, fmt.Errorf("decode booking: %w", err)
	}
	return booking, nil
}

func (c *Client) vacation(ctx context.Context, method, path string, body any) (model.Vacation, error) {
	var out api.Envelope[api.Vacation]
	if _, err := c.do(ctx, method, path, body, &out); err != nil {
		return model.Vacation{}, err
	}
	vacation, err := out.Data.Domain()
	if err != nil {
		return model.Vacation{}, fmt.Errorf("decode vacation: %w", err)
	}
	return vacation, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*resty.Response, error) {
	return c.send(c.request(ctx, body, out), method, path)
}

func (c *Client) request(ctx context.Context, body, out any) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&api.ErrorBody{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	return req
}

// send выполняет запрос и классифицирует ошибки: транспортные становятся сетевыми,
// HTTP-ошибки разбираются из {message, kind, code}
func (c *Client) send(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("API request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, apperror.Network(err)
	}
	if !resp.IsError() {
		return resp, nil
	}

	var body api.ErrorBody
	if e, ok := resp.Error().(*api.ErrorBody); ok && e != nil {
		body = *e
	}
	if body.Message == "" && body.Kind == "" {
		body.Message = strings.TrimSpace(resp.String())
	}
	c.logger.Debug("API request rejected",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.String("kind", body.Kind),
	)
	return resp, apperror.FromHTTP(resp.StatusCode(), body.Kind, body.Code, body.Message)
}

func bookingPath(kind model.BookingKind) string {
	if kind == model.BookingKindDemo {
		return "/classes/demo-class"
	}
	return "/classes/class-schedule"
}

func parseETag(raw string) (int64, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "W/")
	if raw == "" {
		return 0, nil
	}
	version, err := strconv.ParseInt(strings.Trim(raw, `"`), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse working hours ETag %q: %w", raw, err)
	}
	return version, nil
}
