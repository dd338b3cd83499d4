package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&model.Record{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func repositories(t *testing.T) map[string]Repository {
	fileRepo, err := NewFileRepository(afero.NewMemMapFs(), "/data", "ctx-a")
	require.NoError(t, err)

	return map[string]Repository{
		"sqlite": NewRecordRepository(setupTestDB(t)),
		"memory": NewMemoryRepository(),
		"file":   fileRepo,
	}
}

func TestRepositories_SetGetReplace(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := repo.Get(ctx, "dailyTasks")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, repo.Set(ctx, "dailyTasks", `[{"id":"dt001"}]`))
			require.NoError(t, repo.Set(ctx, "dailyTasks", `[{"id":"dt002"}]`))

			value, found, err := repo.Get(ctx, "dailyTasks")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `[{"id":"dt002"}]`, value)
		})
	}
}

func TestRepositories_KeysAndDelete(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Set(ctx, "weeklyTasks", "[]"))
			require.NoError(t, repo.Set(ctx, "dailyTasks", "[]"))

			keys, err := repo.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"dailyTasks", "weeklyTasks"}, keys)

			require.NoError(t, repo.Delete(ctx, "dailyTasks"))
			require.NoError(t, repo.Delete(ctx, "missing"))

			_, found, err := repo.Get(ctx, "dailyTasks")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestFileRepository_EnvelopeCarriesOrigin(t *testing.T) {
	fsys := afero.NewMemMapFs()
	repo, err := NewFileRepository(fsys, "/data", "tab-1")
	require.NoError(t, err)

	require.NoError(t, repo.Set(context.Background(), "theme", `"dark"`))

	data, err := afero.ReadFile(fsys, "/data/theme.json")
	require.NoError(t, err)

	env, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, "tab-1", env.Origin)
	assert.Equal(t, `"dark"`, env.Value)
}

func TestFileRepository_CorruptFileIsReturnedRaw(t *testing.T) {
	fsys := afero.NewMemMapFs()
	repo, err := NewFileRepository(fsys, "/data", "tab-1")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fsys, "/data/dailyTasks.json", []byte("not json"), 0o644))

	value, found, err := repo.Get(context.Background(), "dailyTasks")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "not json", value)
}

func TestKeyFromPath(t *testing.T) {
	key, ok := KeyFromPath("/data/dailyTasks.json")
	assert.True(t, ok)
	assert.Equal(t, "dailyTasks", key)

	_, ok = KeyFromPath("/data/.dailyTasks.json.tmp")
	assert.False(t, ok)

	_, ok = KeyFromPath("/data/notes.txt")
	assert.False(t, ok)
}
