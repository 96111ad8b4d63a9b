package rest

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/render"
	"github.com/gin-gonic/gin"
)

func (h *Handler) DateRange(c *gin.Context) {
	q, err := dateRangeQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	report, err := h.availability.DateRange(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.AvailabilityReport]{Data: api.FromReport(report)})
}

func (h *Handler) Week(c *gin.Context) {
	report, _, ok := h.week(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.AvailabilityReport]{Data: api.FromReport(report)})
}

// WeekImage рисует неделю PNG картинкой; текущее время сдвигается в пояс запроса
func (h *Handler) WeekImage(c *gin.Context) {
	report, offset, ok := h.week(c)
	if !ok {
		return
	}

	now := h.now().UTC().Add(time.Duration(offset) * time.Minute)
	img, err := render.WeekImage(report, now)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

func (h *Handler) SingleDate(c *gin.Context) {
	instructorID, err := pathID(c, "instructorId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	date, err := pathDate(c, "date")
	if err != nil {
		h.respondError(c, err)
		return
	}
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		h.respondError(c, err)
		return
	}

	day, err := h.availability.SingleDateForBooking(c.Request.Context(), instructorID, date, bookingID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.DayAvailability]{Data: api.FromDay(day)})
}

func (h *Handler) SingleDateByMinutes(c *gin.Context) {
	instructorID, err := pathID(c, "instructorId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	date, err := pathDate(c, "date")
	if err != nil {
		h.respondError(c, err)
		return
	}
	minutes, err := pathInt(c, "minutes")
	if err != nil {
		h.respondError(c, err)
		return
	}

	day, err := h.availability.SingleDateByMinutes(c.Request.Context(), instructorID, date, minutes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.DayAvailability]{Data: api.FromDay(day)})
}

func (h *Handler) week(c *gin.Context) (model.AvailabilityReport, int, bool) {
	q, err := weekQuery(c)
	if err != nil {
		h.respondError(c, err)
		return model.AvailabilityReport{}, 0, false
	}

	report, err := h.availability.Week(c.Request.Context(), q.InstructorID, q.StartDate, q.SlotDurationMinutes, q.TimezoneOffsetMinutes)
	if err != nil {
		h.respondError(c, err)
		return model.AvailabilityReport{}, 0, false
	}
	return report, q.TimezoneOffsetMinutes, true
}

// weekQuery читает параметры недельных маршрутов; StartDate хранит дату из пути
func weekQuery(c *gin.Context) (model.AvailabilityQuery, error) {
	var (
		q   model.AvailabilityQuery
		err error
	)
	if q.InstructorID, err = pathID(c, "instructorId"); err != nil {
		return q, err
	}
	if q.StartDate, err = pathDate(c, "date"); err != nil {
		return q, err
	}
	if q.SlotDurationMinutes, err = pathInt(c, "duration"); err != nil {
		return q, err
	}
	if q.TimezoneOffsetMinutes, err = pathInt(c, "tz"); err != nil {
		return q, err
	}
	return q, nil
}

func dateRangeQuery(c *gin.Context) (model.AvailabilityQuery, error) {
	var (
		q   model.AvailabilityQuery
		err error
	)
	if q.InstructorID, err = pathID(c, "instructorId"); err != nil {
		return q, err
	}
	if q.StartDate, err = pathDate(c, "startDate"); err != nil {
		return q, err
	}
	if q.EndDate, err = pathDate(c, "endDate"); err != nil {
		return q, err
	}
	if q.SlotDurationMinutes, err = pathInt(c, "duration"); err != nil {
		return q, err
	}
	if q.TimezoneOffsetMinutes, err = pathInt(c, "tz"); err != nil {
		return q, err
	}
	return q, nil
}
