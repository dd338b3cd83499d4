package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dto "equipcare-hub.com/equipcare-hub/internal/data_models"
	apperrors "equipcare-hub.com/equipcare-hub/internal/errors"
	"equipcare-hub.com/equipcare-hub/internal/records"
	"equipcare-hub.com/equipcare-hub/internal/validators"
	"equipcare-hub.com/equipcare-hub/pkg/constants"
	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

// LogRetention decides what happens to a task's log entry when the task is
// deleted from its board.
type LogRetention string

const (
	// RetainDeleted keeps the entry: the log is a history of every task saved.
	RetainDeleted LogRetention = "retain"
	// CascadeDelete removes the entry together with the task.
	CascadeDelete LogRetention = "cascade"
)

func ParseLogRetention(s string) (LogRetention, bool) {
	switch LogRetention(s) {
	case RetainDeleted, CascadeDelete:
		return LogRetention(s), true
	default:
		return "", false
	}
}

// NewTaskID mints a time-ordered id for a new task.
func NewTaskID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func NewTaskCollection(store *records.Store, cadence constants.Cadence) *records.Collection[model.Task] {
	return records.NewCollection(store, cadence.CollectionKey(), func() []model.Task {
		return seedTasks(cadence)
	})
}

func NewLogCollection(store *records.Store) *records.Collection[model.LogEntry] {
	return records.NewCollection(store, constants.KeyMaintenanceLog, seedLog)
}

type SaveResult struct {
	Task    model.Task
	Created bool
	// Redirect is the listing view to return to after saving.
	Redirect string
}

// TaskService is the editor and board of one cadence. Every save is written
// to the cadence collection and then mirrored into the maintenance log.
type TaskService struct {
	cadence   constants.Cadence
	tasks     *records.Collection[model.Task]
	log       *records.Collection[model.LogEntry]
	retention LogRetention
	newID     func() string
	logger    *zap.Logger
}

func NewTaskService(
	store *records.Store,
	cadence constants.Cadence,
	retention LogRetention,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		cadence:   cadence,
		tasks:     NewTaskCollection(store, cadence),
		log:       NewLogCollection(store),
		retention: retention,
		newID:     NewTaskID,
		logger:    logger.With(zap.String("cadence", string(cadence))),
	}
}

func (s *TaskService) Cadence() constants.Cadence { return s.cadence }

func (s *TaskService) Collection() *records.Collection[model.Task] { return s.tasks }

func (s *TaskService) ListingPath() string { return "/tasks/" + s.cadence.Slug() }

func (s *TaskService) Save(ctx context.Context, form dto.TaskForm, existingID string) (*SaveResult, error) {
	if err := validators.ValidateTaskForm(&form); err != nil {
		return nil, err
	}

	id := existingID
	if id == "" {
		id = s.newID()
	}

	task := taskFromForm(id, form)

	var created bool
	err := s.tasks.Mutate(ctx, func(tasks []model.Task) ([]model.Task, bool, error) {
		i := slices.IndexFunc(tasks, func(t model.Task) bool { return t.ID == id })
		switch {
		case i >= 0:
			tasks[i] = task
		case existingID != "":
			// Editing only applies to tasks on this cadence's board.
			return nil, false, apperrors.ErrTaskNotFound
		default:
			tasks = append(tasks, task)
			created = true
		}
		return tasks, true, nil
	})
	if errors.Is(err, apperrors.ErrTaskNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("save %s task %s: %w", s.cadence, id, err)
	}

	if _, err := s.log.Upsert(ctx, model.NewLogEntry(task, s.cadence)); err != nil {
		// The board write is not rolled back; Reconcile repairs the log.
		s.logger.Error("maintenance log out of sync", zap.String("task_id", id), zap.Error(err))
		return nil, fmt.Errorf("mirror %s task %s into log: %w", s.cadence, id, err)
	}

	s.logger.Info("task saved", zap.String("task_id", id), zap.Bool("created", created))

	return &SaveResult{
		Task:     task,
		Created:  created,
		Redirect: s.ListingPath(),
	}, nil
}

func taskFromForm(id string, form dto.TaskForm) model.Task {
	status := form.Status
	if status == "" {
		status = constants.StatusPending
	}
	priority := form.Priority
	if priority == "" {
		priority = constants.PriorityMedium
	}

	return model.Task{
		ID:          id,
		TaskName:    form.TaskName,
		MachineID:   form.MachineID,
		DueDate:     form.DueDate,
		Status:      status,
		AssignedTo:  form.AssignedTo,
		Priority:    priority,
		Description: form.Description,
		ImageURL:    form.ImageURL,
	}
}

// Delete removes the task from its board and applies the log retention policy.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	removed, err := s.tasks.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s task %s: %w", s.cadence, id, err)
	}
	if !removed {
		return apperrors.ErrTaskNotFound
	}

	if s.retention == CascadeDelete {
		if _, err := s.log.Remove(ctx, id); err != nil {
			return fmt.Errorf("remove %s task %s from log: %w", s.cadence, id, err)
		}
	}

	s.logger.Info("task deleted", zap.String("task_id", id), zap.String("log_retention", string(s.retention)))
	return nil
}

func (s *TaskService) List(ctx context.Context) []model.Task {
	return s.tasks.Load(ctx)
}

func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	task, ok := s.tasks.Find(ctx, id)
	if !ok {
		return nil, apperrors.ErrTaskNotFound
	}
	return &task, nil
}

// NewBoard returns a viewer whose deletes go through this service.
func (s *TaskService) NewBoard(opts ...ViewerOption[model.Task]) *Viewer[model.Task] {
	opts = append([]ViewerOption[model.Task]{WithDeleter[model.Task](s.Delete)}, opts...)
	return NewViewer(s.tasks, s.logger, opts...)
}

// TaskServices holds one TaskService per cadence.
type TaskServices map[constants.Cadence]*TaskService

func NewTaskServices(store *records.Store, retention LogRetention, logger *zap.Logger) TaskServices {
	services := make(TaskServices, len(constants.Cadences))
	for _, cadence := range constants.Cadences {
		services[cadence] = NewTaskService(store, cadence, retention, logger)
	}
	return services
}

func (ts TaskServices) For(cadence constants.Cadence) (*TaskService, error) {
	s, ok := ts[cadence]
	if !ok {
		return nil, apperrors.ErrInvalidCadence
	}
	return s, nil
}
