package http

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	middleware "equipcare-hub.com/equipcare-hub/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int, logger *zap.Logger) {
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.GET("/tasks/:cadence", h.ListTasks)
	e.POST("/tasks/:cadence", h.CreateTask)
	e.GET("/tasks/:cadence/:id", h.GetTask)
	e.PUT("/tasks/:cadence/:id", h.UpdateTask)
	e.DELETE("/tasks/:cadence/:id", h.DeleteTask)
	e.PUT("/tasks/:cadence/:id/image", h.UploadTaskImage)

	e.GET("/log", h.ListLog)
	e.POST("/log/reconcile", h.ReconcileLog)
	e.GET("/log/export", h.ExportLog)

	e.GET("/schedule", h.ListSchedule)
	e.POST("/schedule", h.CreateScheduleTask)
	e.GET("/schedule/export", h.ExportSchedule)
	e.PUT("/schedule/:id", h.UpdateScheduleTask)
	e.DELETE("/schedule/:id", h.DeleteScheduleTask)

	e.GET("/preferences", h.GetPreferences)
	e.PUT("/preferences", h.UpdatePreferences)
}
