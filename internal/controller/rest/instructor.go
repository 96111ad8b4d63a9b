package rest

import (
	"net/http"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateInstructor(c *gin.Context) {
	var req api.CreateInstructorRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	instructor, err := h.instructors.Create(c.Request.Context(), req.Name, req.TelegramChatID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.Envelope[api.Instructor]{Data: api.FromInstructor(*instructor)})
}

func (h *Handler) GetInstructor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	instructor, err := h.instructors.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope[api.Instructor]{Data: api.FromInstructor(*instructor)})
}
