package rest

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/instructor_scheduler/internal/api"
	"github.com/Freeeeeet/instructor_scheduler/internal/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError переводит ошибку сервиса в HTTP статус и тело {message, kind, code}.
// Неклассифицированные ошибки логируются, клиент видит только общий текст.
func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("request_id", RequestID(c)),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorBody{
			Message: "internal server error",
			Kind:    string(apperror.KindInternal),
		})
		return
	}

	status := appErr.Kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("route", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Debug("Request rejected",
			zap.String("route", c.FullPath()),
			zap.String("kind", string(appErr.Kind)),
			zap.String("code", appErr.Code),
		)
	}

	message := appErr.Message
	if message == "" {
		message = appErr.Error()
	}
	c.AbortWithStatusJSON(status, api.ErrorBody{
		Message: message,
		Kind:    string(appErr.Kind),
		Code:    appErr.Code,
	})
}
