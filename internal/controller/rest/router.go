package rest

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Production  bool
	CORSOrigins []string
	// RateLimiter необязателен, nil отключает ограничение
	RateLimiter RateLimiter
}

// NewRouter собирает gin engine со всеми маршрутами под /api
func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		RequestIDMiddleware(),
		AccessLogMiddleware(logger),
		RecoveryMiddleware(logger),
		cors.New(corsConfig(cfg.CORSOrigins)),
	)
	if cfg.RateLimiter != nil {
		r.Use(RateLimitMiddleware(cfg.RateLimiter, logger))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	a := r.Group("/api")
	registerWorkingHoursRoutes(a, h)
	registerAvailabilityRoutes(a, h)
	registerBookingRoutes(a, h)
	registerVacationRoutes(a, h)
	registerInstructorRoutes(a, h)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-Match", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "ETag", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func registerWorkingHoursRoutes(r *gin.RouterGroup, h *Handler) {
	g := r.Group("/working_hours")
	{
		g.GET("/teacher/:id", h.GetWorkingHours)
		g.PUT("", h.SaveWorkingHours)
		g.DELETE("/:slotId", h.DeleteWorkingHoursSlot)
	}
}

func registerAvailabilityRoutes(r *gin.RouterGroup, h *Handler) {
	g := r.Group("/availability")
	{
		g.GET("/date-range/:instructorId/:startDate/:endDate/:duration/:tz", h.DateRange)
		g.GET("/week/:instructorId/:date/:duration/:tz", h.Week)
		g.GET("/week-image/:instructorId/:date/:duration/:tz", h.WeekImage)
		g.GET("/single-date/:instructorId/:date/:bookingId", h.SingleDate)
		g.GET("/single-date-by-minutes/:instructorId/:date/:minutes", h.SingleDateByMinutes)
	}
}

func registerBookingRoutes(r *gin.RouterGroup, h *Handler) {
	classes := r.Group("/classes")
	{
		classes.POST("/class-schedule", h.CreateClass)
		classes.GET("/class-schedule/:id", h.GetClass)
		classes.PATCH("/class-schedule/:id", h.UpdateClass)

		classes.POST("/demo-class", h.CreateDemo)
		classes.GET("/demo-class/:id", h.GetDemo)
		classes.PUT("/demo-class/:id", h.UpdateDemo)
	}
	r.GET("/cancellation_reasons", h.CancellationReasons)
}

func registerVacationRoutes(r *gin.RouterGroup, h *Handler) {
	g := r.Group("/vacation")
	{
		g.POST("", h.CreateVacation)
		g.GET("/teacher/:id", h.ListVacations)
		g.GET("/impact/:teacherId/:startDate/:endDate", h.VacationImpact)
		g.GET("/:id", h.GetVacation)
		g.PATCH("/:id", h.UpdateVacation)
		g.DELETE("/:id", h.DeleteVacation)
		g.PATCH("/:id/status", h.SetVacationStatus)
	}
}

func registerInstructorRoutes(r *gin.RouterGroup, h *Handler) {
	g := r.Group("/instructors")
	{
		g.POST("", h.CreateInstructor)
		g.GET("/:id", h.GetInstructor)
	}
}
