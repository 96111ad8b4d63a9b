package rest

import (
	"net/http"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateClass(c *gin.Context) { h.createBooking(c, model.BookingKindClass) }
func (h *Handler) CreateDemo(c *gin.Context)  { h.createBooking(c, model.BookingKindDemo) }
func (h *Handler) GetClass(c *gin.Context)    { h.getBooking(c, model.BookingKindClass) }
func (h *Handler) GetDemo(c *gin.Context)     { h.getBooking(c, model.BookingKindDemo) }
func (h *Handler) UpdateClass(c *gin.Context) { h.updateBooking(c, model.BookingKindClass) }
func (h *Handler) UpdateDemo(c *gin.Context)  { h.updateBooking(c, model.BookingKindDemo) }

func (h *Handler) CancellationReasons(c *gin.Context) {
	reasons, err := h.bookings.CancellationReasons(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if reasons == nil {
		reasons = []model.CancellationReason{}
	}
	c.JSON(http.StatusOK, api.Envelope[[]model.CancellationReason]{Data: reasons})
}

func (h *Handler) createBooking(c *gin.Context, kind model.BookingKind) {
	var req api.CreateBookingRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), service.CreateBookingInput{
		Kind:         kind,
		InstructorID: req.PrimaryInstructor,
		StudentID:    req.Student,
		GroupID:      req.Group,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.Envelope[api.Booking]{Data: api.FromBooking(*booking)})
}

func (h *Handler) getBooking(c *gin.Context, kind model.BookingKind) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	booking, err := h.bookingOfKind(c, id, kind)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.Booking]{Data: api.FromBooking(*booking)})
}

// updateBooking обрабатывает отмену, перенос и завершение.
// Отсутствие причины отклоняется до любых обращений к сервису.
func (h *Handler) updateBooking(c *gin.Context, kind model.BookingKind) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req api.UpdateBookingRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if req.Status != api.StatusCompleted && req.Reason == 0 {
		h.respondError(c, apperror.ErrMissingReason)
		return
	}

	if _, err := h.bookingOfKind(c, id, kind); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	var booking *model.Booking
	switch req.Status {
	case api.StatusCancelled:
		booking, err = h.bookings.Cancel(ctx, id, req.Reason)
	case api.StatusCompleted:
		booking, err = h.bookings.Complete(ctx, id)
	case api.StatusReschedule:
		date, perr := parseDate("date", req.TargetDate())
		if perr != nil {
			h.respondError(c, perr)
			return
		}
		booking, err = h.bookings.Reschedule(ctx, service.RescheduleInput{
			BookingID:    id,
			InstructorID: req.PrimaryInstructor,
			Date:         date,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			ReasonID:     req.Reason,
		})
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.Booking]{Data: api.FromBooking(*booking)})
}

// bookingOfKind скрывает занятие другого типа за NotFound
func (h *Handler) bookingOfKind(c *gin.Context, id int64, kind model.BookingKind) (*model.Booking, error) {
	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if booking.Kind != kind {
		return nil, apperror.NotFound(string(kind), id)
	}
	return booking, nil
}
