package rest

import (
	"net/http"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/model"
	"github.com/gin-gonic/gin"
)

// GetWorkingHours отдаёт неделю списком дней, версия уходит в ETag
func (h *Handler) GetWorkingHours(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	ws, err := h.workingHours.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("ETag", etag(ws.Version))
	c.JSON(http.StatusOK, api.FromWeeklySchedule(ws).WeeklySchedule)
}

func (h *Handler) SaveWorkingHours(c *gin.Context) {
	var payload model.WorkingHoursPayload
	if err := bindJSON(c, &payload); err != nil {
		h.respondError(c, err)
		return
	}
	expected, err := ifMatch(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	saved, err := h.workingHours.Save(c.Request.Context(), payload, expected)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("ETag", etag(saved.Version))
	c.JSON(http.StatusOK, api.Envelope[api.WorkingHours]{Data: api.FromWeeklySchedule(saved)})
}

func (h *Handler) DeleteWorkingHoursSlot(c *gin.Context) {
	slotID, err := pathID(c, "slotId")
	if err != nil {
		h.respondError(c, err)
		return
	}

	expected, err := ifMatch(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	version, err := h.workingHours.DeleteSlot(c.Request.Context(), slotID, expected)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("ETag", etag(version))
	c.JSON(http.StatusOK, api.Envelope[api.SlotDeleted]{Data: api.SlotDeleted{ID: slotID, Version: version}})
}
