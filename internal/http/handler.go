package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	dto "equipcare-hub.com/equipcare-hub/internal/data_models"
	apperrors "equipcare-hub.com/equipcare-hub/internal/errors"
	"equipcare-hub.com/equipcare-hub/internal/media"
	"equipcare-hub.com/equipcare-hub/internal/services"
	"equipcare-hub.com/equipcare-hub/pkg/constants"
)

type Handler struct {
	tasks       services.TaskServices
	log         *services.LogService
	schedule    *services.ScheduleService
	preferences *services.PreferenceService
	logger      *zap.Logger
}

func NewHandler(
	tasks services.TaskServices,
	log *services.LogService,
	schedule *services.ScheduleService,
	preferences *services.PreferenceService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		tasks:       tasks,
		log:         log,
		schedule:    schedule,
		preferences: preferences,
		logger:      logger,
	}
}

// fail turns a service error into the HTTP error echo renders.
func (h *Handler) fail(c echo.Context, err error) error {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
			"message": "validation failed",
			"fields":  validationErr.Fields,
		})
	}

	status := apperrors.StatusCode(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return echo.NewHTTPError(status, "internal server error")
	}
	return echo.NewHTTPError(status, err.Error())
}

func (h *Handler) taskService(c echo.Context) (*services.TaskService, error) {
	cadence, ok := constants.ParseCadence(c.Param("cadence"))
	if !ok {
		return nil, apperrors.ErrInvalidCadence
	}
	return h.tasks.For(cadence)
}

func (h *Handler) ListTasks(c echo.Context) error {
	svc, err := h.taskService(c)
	if err != nil {
		return h.fail(c, err)
	}

	tasks := svc.List(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) GetTask(c echo.Context) error {
	svc, err := h.taskService(c)
	if err != nil {
		return h.fail(c, err)
	}

	task, err := svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CreateTask(c echo.Context) error {
	svc, err := h.taskService(c)
	if err != nil {
		return h.fail(c, err)
	}

	var form dto.TaskForm
	if err := c.Bind(&form); err != nil {
		return h.fail(c, apperrors.ErrInvalidJSON)
	}

	result, err := svc.Save(c.Request().Context(), form, "")
	if err != nil {
		return h.fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, result.Redirect)
	return c.JSON(http.StatusCreated, result.Task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	svc, err := h.taskService(c)
	if err != nil {
		return h.fail(c, err)
	}

	id := c.Param("id")
	if id == "" {
		return h.fail(c, apperrors.ErrIDRequired)
	}

	var form dto.TaskForm
	if err := c.Bind(&form); err != nil {
		return h.fail(c, apperrors.ErrInvalidJSON)
	}

	result, err := svc.Save(c.Request().Context(), form, id)
	if err != nil {
		return h.fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, result.Redirect)
	return c.JSON(http.StatusOK, result.Task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	svc, err := h.taskService(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadTaskImage stores the multipart "image" file on the task as a data URI.
func (h *Handler) UploadTaskImage(c echo.Context) error {
	svc, err := h.taskService(c)
	if err != nil {
		return h.fail(c, err)
	}

	ctx := c.Request().Context()
	task, err := svc.Get(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}

	header, err := c.FormFile("image")
	if err != nil {
		return h.fail(c, apperrors.ErrImageRequired)
	}
	if header.Size > media.MaxImageBytes {
		return h.fail(c, apperrors.ErrImageTooLarge)
	}

	file, err := header.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, media.MaxImageBytes+1))
	if err != nil {
		return h.fail(c, err)
	}
	if len(data) > media.MaxImageBytes {
		return h.fail(c, apperrors.ErrImageTooLarge)
	}

	uri, err := media.EncodeDataURI(data)
	if err != nil {
		return h.fail(c, err)
	}

	form := dto.TaskForm{
		TaskName:    task.TaskName,
		MachineID:   task.MachineID,
		DueDate:     task.DueDate,
		Status:      task.Status,
		AssignedTo:  task.AssignedTo,
		Priority:    task.Priority,
		Description: task.Description,
		ImageURL:    uri,
	}
	result, err := svc.Save(ctx, form, task.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result.Task)
}

func (h *Handler) ListLog(c echo.Context) error {
	ctx := c.Request().Context()

	entries := h.log.List(ctx)
	if c.QueryParam("view") == "derived" {
		entries = h.log.Derived(ctx)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":   len(entries),
		"entries": entries,
	})
}

func (h *Handler) ReconcileLog(c echo.Context) error {
	report, err := h.log.Reconcile(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ExportLog(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.log.Export(c.Request().Context(), &buf); err != nil {
		return h.fail(c, err)
	}
	return sendPDF(c, "maintenance-log.pdf", buf.Bytes())
}

func (h *Handler) ListSchedule(c echo.Context) error {
	tasks := h.schedule.List(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) CreateScheduleTask(c echo.Context) error {
	var form dto.ScheduleForm
	if err := c.Bind(&form); err != nil {
		return h.fail(c, apperrors.ErrInvalidJSON)
	}

	task, _, err := h.schedule.Save(c.Request().Context(), form, "")
	if err != nil {
		return h.fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, "/schedule")
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateScheduleTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return h.fail(c, apperrors.ErrIDRequired)
	}

	var form dto.ScheduleForm
	if err := c.Bind(&form); err != nil {
		return h.fail(c, apperrors.ErrInvalidJSON)
	}

	task, _, err := h.schedule.Save(c.Request().Context(), form, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteScheduleTask(c echo.Context) error {
	if err := h.schedule.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ExportSchedule(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.schedule.Export(c.Request().Context(), &buf); err != nil {
		return h.fail(c, err)
	}
	return sendPDF(c, "maintenance-schedule.pdf", buf.Bytes())
}

func (h *Handler) GetPreferences(c echo.Context) error {
	return c.JSON(http.StatusOK, h.preferences.Get(c.Request().Context()))
}

func (h *Handler) UpdatePreferences(c echo.Context) error {
	var req dto.PreferencesRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, apperrors.ErrInvalidJSON)
	}

	prefs, err := h.preferences.Update(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

func sendPDF(c echo.Context, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}
