package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"equipcare-hub.com/equipcare-hub/internal/broadcast"
	dto "equipcare-hub.com/equipcare-hub/internal/data_models"
	apperrors "equipcare-hub.com/equipcare-hub/internal/errors"
	"equipcare-hub.com/equipcare-hub/internal/records"
	repository "equipcare-hub.com/equipcare-hub/internal/repositories"
	"equipcare-hub.com/equipcare-hub/pkg/constants"
	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(&model.Record{})
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// setupStores returns two contexts sharing one database, like two tabs of
// the dashboard.
func setupStores(t *testing.T) (*records.Store, *records.Store) {
	logger := zaptest.NewLogger(t)
	repo := repository.NewRecordRepository(setupTestDB(t))
	hub := broadcast.NewHub(logger)

	tabA := hub.Connect("tab-a")
	tabB := hub.Connect("tab-b")
	t.Cleanup(func() {
		_ = tabA.Close()
		_ = tabB.Close()
	})

	return records.NewStore(repo, tabA, logger), records.NewStore(repo, tabB, logger)
}

type laggyRepository struct {
	repository.Repository
	delay time.Duration
}

func (r laggyRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, found, err := r.Repository.Get(ctx, key)
	time.Sleep(r.delay)
	return value, found, err
}

func oilCheckForm() dto.TaskForm {
	return dto.TaskForm{TaskName: "Oil Check", MachineID: "CNC-001", DueDate: "2024-09-01"}
}

func findLogEntry(entries []model.LogEntry, id string) (model.LogEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.LogEntry{}, false
}

func TestTaskService_CreateThenList(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	daily := NewTaskService(store, constants.CadenceDaily, RetainDeleted, zaptest.NewLogger(t))
	logs := NewLogService(store, RetainDeleted, zaptest.NewLogger(t))

	before := len(daily.List(ctx))
	beforeLog := len(logs.List(ctx))

	result, err := daily.Save(ctx, oilCheckForm(), "")
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.NotEmpty(t, result.Task.ID)
	assert.Equal(t, "/tasks/daily", result.Redirect)

	tasks := daily.List(ctx)
	require.Len(t, tasks, before+1)

	saved := tasks[len(tasks)-1]
	assert.Equal(t, result.Task.ID, saved.ID)
	assert.Equal(t, constants.StatusPending, saved.Status)
	assert.Equal(t, constants.PriorityMedium, saved.Priority)

	entries := logs.List(ctx)
	require.Len(t, entries, beforeLog+1)
	entry, ok := findLogEntry(entries, saved.ID)
	require.True(t, ok)
	assert.Equal(t, constants.CadenceDaily, entry.Cadence)
	assert.Equal(t, saved, entry.Task)
}

func TestTaskService_EditExisting(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	daily := NewTaskService(store, constants.CadenceDaily, RetainDeleted, zaptest.NewLogger(t))
	logs := NewLogService(store, RetainDeleted, zaptest.NewLogger(t))

	before := len(daily.List(ctx))
	beforeLog := len(logs.List(ctx))

	form := oilCheckForm()
	form.TaskName = "Oil Check v2"
	result, err := daily.Save(ctx, form, "dt001")
	require.NoError(t, err)
	assert.False(t, result.Created)

	assert.Len(t, daily.List(ctx), before)
	got, err := daily.Get(ctx, "dt001")
	require.NoError(t, err)
	assert.Equal(t, "Oil Check v2", got.TaskName)

	entries := logs.List(ctx)
	assert.Len(t, entries, beforeLog)
	entry, ok := findLogEntry(entries, "dt001")
	require.True(t, ok)
	assert.Equal(t, "Oil Check v2", entry.TaskName)
}

func TestTaskService_SaveTwiceKeepsOneEntry(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	weekly := NewTaskService(store, constants.CadenceWeekly, RetainDeleted, zaptest.NewLogger(t))

	first, err := weekly.Save(ctx, oilCheckForm(), "")
	require.NoError(t, err)

	form := oilCheckForm()
	form.Status = constants.StatusCompleted
	_, err = weekly.Save(ctx, form, first.Task.ID)
	require.NoError(t, err)

	count := 0
	for _, task := range weekly.List(ctx) {
		if task.ID == first.Task.ID {
			count++
			assert.Equal(t, constants.StatusCompleted, task.Status)
		}
	}
	assert.Equal(t, 1, count)
}

func TestTaskService_LogMirrorsEveryCadence(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	services := NewTaskServices(store, RetainDeleted, zaptest.NewLogger(t))
	logs := NewLogService(store, RetainDeleted, zaptest.NewLogger(t))

	saved := make(map[string]constants.Cadence)
	for _, cadence := range constants.Cadences {
		svc, err := services.For(cadence)
		require.NoError(t, err)

		form := oilCheckForm()
		form.AssignedTo = "K. Novak"
		form.Priority = constants.PriorityHigh
		result, err := svc.Save(ctx, form, "")
		require.NoError(t, err)
		saved[result.Task.ID] = cadence

		_, err = svc.Save(ctx, dto.TaskForm{TaskName: "Edited", MachineID: "CNC-009", DueDate: "2024-10-01"}, seedTasks(cadence)[0].ID)
		require.NoError(t, err)
		saved[seedTasks(cadence)[0].ID] = cadence
	}

	entries := logs.List(ctx)
	for id, cadence := range saved {
		svc, _ := services.For(cadence)
		task, err := svc.Get(ctx, id)
		require.NoError(t, err)

		entry, ok := findLogEntry(entries, id)
		require.True(t, ok, "log entry for %s", id)
		assert.Equal(t, *task, entry.Task)
		assert.Equal(t, cadence, entry.Cadence)
	}
}

func TestTaskService_ConcurrentSavesAreAllKept(t *testing.T) {
	logger := zaptest.NewLogger(t)
	endpoint := broadcast.NewHub(logger).Connect("api")
	defer endpoint.Close()

	repo := laggyRepository{Repository: repository.NewRecordRepository(setupTestDB(t)), delay: time.Millisecond}
	store := records.NewStore(repo, endpoint, logger)
	ctx := context.Background()
	daily := NewTaskService(store, constants.CadenceDaily, RetainDeleted, logger)
	logs := NewLogService(store, RetainDeleted, logger)
	reconciler := NewReconciler(logs, time.Millisecond, logger)

	before := len(daily.List(ctx))
	beforeLog := len(logs.List(ctx))

	const saves = 20
	ids := make(chan string, saves)
	var wg sync.WaitGroup
	for i := 0; i < saves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := daily.Save(ctx, oilCheckForm(), "")
			if assert.NoError(t, err) {
				ids <- result.Task.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	reconciler.Shutdown(shutdownCtx)

	assert.Len(t, daily.List(ctx), before+saves)
	entries := logs.List(ctx)
	assert.Len(t, entries, beforeLog+saves)
	for id := range ids {
		_, ok := findLogEntry(entries, id)
		assert.True(t, ok, "log entry for %s", id)
	}
}

func TestTaskService_EditRejectsTaskOfAnotherCadence(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	weekly := NewTaskService(store, constants.CadenceWeekly, RetainDeleted, zaptest.NewLogger(t))
	logs := NewLogService(store, RetainDeleted, zaptest.NewLogger(t))

	form := dto.TaskForm{TaskName: "Moved to weekly", MachineID: "CNC-001", DueDate: "2024-08-20"}
	_, err := weekly.Save(ctx, form, "dt001")
	require.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	_, err = weekly.Get(ctx, "dt001")
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	entry, ok := findLogEntry(logs.List(ctx), "dt001")
	require.True(t, ok)
	assert.Equal(t, constants.CadenceDaily, entry.Cadence)

	report, err := logs.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, report.Changed())
}

func TestTaskService_DeleteRetainsLogEntry(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	daily := NewTaskService(store, constants.CadenceDaily, RetainDeleted, zaptest.NewLogger(t))
	logs := NewLogService(store, RetainDeleted, zaptest.NewLogger(t))

	require.NoError(t, daily.NewBoard().Remove(ctx, "dt001"))

	_, err := daily.Get(ctx, "dt001")
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	_, ok := findLogEntry(logs.List(ctx), "dt001")
	assert.True(t, ok, "retained log keeps deleted task")
}

func TestTaskService_DeleteCascadesWhenConfigured(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	monthly := NewTaskService(store, constants.CadenceMonthly, CascadeDelete, zaptest.NewLogger(t))
	logs := NewLogService(store, CascadeDelete, zaptest.NewLogger(t))

	require.Len(t, logs.List(ctx), len(seedLog()))
	require.NoError(t, monthly.Delete(ctx, "mt001"))

	_, ok := findLogEntry(logs.List(ctx), "mt001")
	assert.False(t, ok)
	assert.Len(t, logs.List(ctx), len(seedLog())-1)
}

func TestTaskService_DeleteMissing(t *testing.T) {
	store, _ := setupStores(t)
	daily := NewTaskService(store, constants.CadenceDaily, RetainDeleted, zaptest.NewLogger(t))

	assert.ErrorIs(t, daily.Delete(context.Background(), "nope"), apperrors.ErrTaskNotFound)
}

func TestTaskService_ValidationRejectsWithoutWriting(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	daily := NewTaskService(store, constants.CadenceDaily, RetainDeleted, zaptest.NewLogger(t))
	logs := NewLogService(store, RetainDeleted, zaptest.NewLogger(t))

	_, err := daily.Save(ctx, dto.TaskForm{TaskName: "Oi"}, "")

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "taskName")
	assert.Contains(t, validationErr.Fields, "machineId")
	assert.Contains(t, validationErr.Fields, "dueDate")

	_, found := store.ReadRaw(ctx, constants.KeyDailyTasks)
	assert.False(t, found)
	_, found = store.ReadRaw(ctx, constants.KeyMaintenanceLog)
	assert.False(t, found)
	assert.Len(t, logs.List(ctx), len(seedLog()))
}

func TestTaskServices_ForUnknownCadence(t *testing.T) {
	store, _ := setupStores(t)
	services := NewTaskServices(store, RetainDeleted, zaptest.NewLogger(t))

	_, err := services.For(constants.Cadence("Hourly"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidCadence)
}

func TestNewTaskID_IsUniqueAndOrdered(t *testing.T) {
	first := NewTaskID()
	second := NewTaskID()

	assert.NotEqual(t, first, second)
	assert.Less(t, first, second)
}

func TestParseLogRetention(t *testing.T) {
	r, ok := ParseLogRetention("cascade")
	assert.True(t, ok)
	assert.Equal(t, CascadeDelete, r)

	_, ok = ParseLogRetention("forever")
	assert.False(t, ok)
}

func TestReconciler_RepairsLogInBackground(t *testing.T) {
	store, _ := setupStores(t)
	ctx := context.Background()
	logs := NewLogService(store, RetainDeleted, zaptest.NewLogger(t))
	daily := NewTaskCollection(store, constants.CadenceDaily)

	require.NoError(t, daily.Save(ctx, []model.Task{{ID: "dt900", TaskName: "Drifted", MachineID: "X-1", DueDate: "2024-01-01"}}))

	r := NewReconciler(logs, 10*time.Millisecond, zaptest.NewLogger(t))
	defer r.Shutdown(ctx)

	require.Eventually(t, func() bool {
		_, ok := findLogEntry(logs.List(ctx), "dt900")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconciler_DisabledShutsDownImmediately(t *testing.T) {
	store, _ := setupStores(t)
	r := NewReconciler(NewLogService(store, RetainDeleted, zaptest.NewLogger(t)), 0, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Shutdown(ctx)
	r.Shutdown(ctx)

	assert.NoError(t, ctx.Err())
}
