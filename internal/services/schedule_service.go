package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"go.uber.org/zap"

	dto "equipcare-hub.com/equipcare-hub/internal/data_models"
	apperrors "equipcare-hub.com/equipcare-hub/internal/errors"
	"equipcare-hub.com/equipcare-hub/internal/export"
	"equipcare-hub.com/equipcare-hub/internal/records"
	"equipcare-hub.com/equipcare-hub/internal/validators"
	"equipcare-hub.com/equipcare-hub/pkg/constants"
	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

type ScheduleService struct {
	tasks  *records.Collection[model.ScheduleTask]
	newID  func() string
	logger *zap.Logger
}

func NewScheduleService(store *records.Store, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		tasks:  records.NewCollection(store, constants.KeyScheduledTasks, seedSchedule),
		newID:  NewTaskID,
		logger: logger,
	}
}

func (s *ScheduleService) Collection() *records.Collection[model.ScheduleTask] { return s.tasks }

func (s *ScheduleService) Save(ctx context.Context, form dto.ScheduleForm, existingID string) (*model.ScheduleTask, bool, error) {
	if err := validators.ValidateScheduleForm(&form); err != nil {
		return nil, false, err
	}

	id := existingID
	if id == "" {
		id = s.newID()
	}

	status := form.Status
	if status == "" {
		status = constants.StatusPending
	}

	task := model.ScheduleTask{
		ID:            id,
		TaskName:      form.TaskName,
		MachineID:     form.MachineID,
		ScheduledDate: form.ScheduledDate,
		Frequency:     form.Frequency,
		AssignedTo:    form.AssignedTo,
		Status:        status,
		Notes:         form.Notes,
	}

	var created bool
	err := s.tasks.Mutate(ctx, func(tasks []model.ScheduleTask) ([]model.ScheduleTask, bool, error) {
		i := slices.IndexFunc(tasks, func(t model.ScheduleTask) bool { return t.ID == id })
		switch {
		case i >= 0:
			tasks[i] = task
		case existingID != "":
			return nil, false, apperrors.ErrScheduleTaskNotFound
		default:
			tasks = append(tasks, task)
			created = true
		}
		return tasks, true, nil
	})
	if errors.Is(err, apperrors.ErrScheduleTaskNotFound) {
		return nil, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("save scheduled task %s: %w", id, err)
	}

	s.logger.Info("scheduled task saved", zap.String("task_id", id), zap.Bool("created", created))
	return &task, created, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	removed, err := s.tasks.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete scheduled task %s: %w", id, err)
	}
	if !removed {
		return apperrors.ErrScheduleTaskNotFound
	}
	return nil
}

func (s *ScheduleService) Get(ctx context.Context, id string) (*model.ScheduleTask, error) {
	task, ok := s.tasks.Find(ctx, id)
	if !ok {
		return nil, apperrors.ErrScheduleTaskNotFound
	}
	return &task, nil
}

// List returns the schedule ordered by scheduled date.
func (s *ScheduleService) List(ctx context.Context) []model.ScheduleTask {
	tasks := s.tasks.Load(ctx)
	SortScheduleTasks(tasks)
	return tasks
}

func (s *ScheduleService) Export(ctx context.Context, w io.Writer) error {
	return export.WriteSchedulePDF(w, s.List(ctx))
}

func (s *ScheduleService) NewViewer(opts ...ViewerOption[model.ScheduleTask]) *Viewer[model.ScheduleTask] {
	opts = append([]ViewerOption[model.ScheduleTask]{
		WithSort(func(a, b model.ScheduleTask) int { return CompareDates(a.ScheduledDate, b.ScheduledDate) }),
	}, opts...)
	return NewViewer(s.tasks, s.logger, opts...)
}
