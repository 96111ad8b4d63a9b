package rest

import (
	"net/http"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/Freeeeeet/instructor_scheduler/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateVacation(c *gin.Context) {
	in, err := vacationInput(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	v, err := h.vacations.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.Envelope[api.Vacation]{Data: api.FromVacation(*v)})
}

func (h *Handler) UpdateVacation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	in, err := vacationInput(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	v, err := h.vacations.Update(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.Vacation]{Data: api.FromVacation(*v)})
}

func (h *Handler) SetVacationStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req api.VacationStatusRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	status, err := model.ParseVacationStatus(req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	v, err := h.vacations.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.Vacation]{Data: api.FromVacation(*v)})
}

func (h *Handler) DeleteVacation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.vacations.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetVacation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	v, err := h.vacations.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.Vacation]{Data: api.FromVacation(*v)})
}

func (h *Handler) ListVacations(c *gin.Context) {
	instructorID, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	list, err := h.vacations.ListByInstructor(c.Request.Context(), instructorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]api.Vacation, len(list))
	for i, v := range list {
		out[i] = api.FromVacation(v)
	}
	c.JSON(http.StatusOK, api.Envelope[[]api.Vacation]{Data: out})
}

// VacationImpact считает затронутые занятия без создания заявки
func (h *Handler) VacationImpact(c *gin.Context) {
	instructorID, err := pathID(c, "teacherId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	start, err := pathDate(c, "startDate")
	if err != nil {
		h.respondError(c, err)
		return
	}
	end, err := pathDate(c, "endDate")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if end.Before(start) {
		h.respondError(c, apperror.With(apperror.ErrEndBeforeStart, "endDate %s is before startDate %s", c.Param("endDate"), c.Param("startDate")))
		return
	}

	impacted, err := h.vacations.ComputeImpact(c.Request.Context(), instructorID, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	bookings := api.FromBookings(impacted)
	c.JSON(http.StatusOK, api.Envelope[api.VacationImpact]{Data: api.VacationImpact{
		Teacher:            instructorID,
		StartDate:          c.Param("startDate"),
		EndDate:            c.Param("endDate"),
		ImpactedClass:      bookings,
		ImpactedClassCount: len(bookings),
	}})
}

func vacationInput(c *gin.Context) (service.VacationInput, error) {
	var req api.VacationRequest
	if err := bindJSON(c, &req); err != nil {
		return service.VacationInput{}, err
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return service.VacationInput{}, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return service.VacationInput{}, err
	}
	return service.VacationInput{
		InstructorID: req.Teacher,
		StartDate:    start,
		EndDate:      end,
		Reason:       req.Reason,
	}, nil
}
