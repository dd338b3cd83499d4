package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"equipcare-hub.com/equipcare-hub/internal/broadcast"
	repository "equipcare-hub.com/equipcare-hub/internal/repositories"
)

type part struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (p part) RecordID() string { return p.ID }

// twoTabs returns two stores over one repository, as two browser tabs share
// one local storage.
func twoTabs(t *testing.T) (*Store, *Store, repository.Repository) {
	logger := zaptest.NewLogger(t)
	repo := repository.NewMemoryRepository()
	hub := broadcast.NewHub(logger)

	tabA := hub.Connect("tab-a")
	tabB := hub.Connect("tab-b")
	t.Cleanup(func() {
		_ = tabA.Close()
		_ = tabB.Close()
	})

	return NewStore(repo, tabA, logger), NewStore(repo, tabB, logger), repo
}

// laggyRepository widens the gap between reading a collection and writing
// it back.
type laggyRepository struct {
	repository.Repository
	delay time.Duration
}

func (r laggyRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, found, err := r.Repository.Get(ctx, key)
	time.Sleep(r.delay)
	return value, found, err
}

func TestCollection_ConcurrentUpsertsAreNotLost(t *testing.T) {
	logger := zaptest.NewLogger(t)
	endpoint := broadcast.NewHub(logger).Connect("tab-a")
	defer endpoint.Close()

	repo := laggyRepository{Repository: repository.NewMemoryRepository(), delay: time.Millisecond}
	parts := NewCollection(NewStore(repo, endpoint, logger), "parts", func() []part {
		return []part{{ID: "seed", Name: "Seal"}}
	})
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := parts.Upsert(ctx, part{ID: fmt.Sprintf("p%02d", i), Count: i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, ok := parts.Read(ctx)
	require.True(t, ok)
	assert.Len(t, got, writers+1)
}

func TestCollection_MutateErrorDoesNotWrite(t *testing.T) {
	store, _, _ := twoTabs(t)
	ctx := context.Background()
	parts := NewCollection[part](store, "parts", nil)
	require.NoError(t, parts.Save(ctx, []part{{ID: "p1"}}))

	boom := errors.New("boom")
	err := parts.Mutate(ctx, func(items []part) ([]part, bool, error) {
		return nil, true, boom
	})
	require.ErrorIs(t, err, boom)

	got, _ := parts.Read(ctx)
	assert.Equal(t, []part{{ID: "p1"}}, got)
}

func TestCollection_RoundTrip(t *testing.T) {
	store, _, _ := twoTabs(t)
	ctx := context.Background()
	parts := NewCollection[part](store, "parts", nil)

	want := []part{{ID: "p1", Name: "Bearing", Count: 4}, {ID: "p2", Name: "Belt", Count: 1}}
	require.NoError(t, parts.Save(ctx, want))

	got, ok := parts.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCollection_ReadAbsentAndCorrupt(t *testing.T) {
	store, _, repo := twoTabs(t)
	ctx := context.Background()
	parts := NewCollection[part](store, "parts", nil)

	_, ok := parts.Read(ctx)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "parts", "{corrupt"))
	items, ok := parts.Read(ctx)
	assert.False(t, ok)
	assert.Nil(t, items)

	assert.Equal(t, []part{}, parts.Load(ctx))
}

func TestCollection_LoadSeedsOnlyUninitialized(t *testing.T) {
	store, _, repo := twoTabs(t)
	ctx := context.Background()

	seed := func() []part { return []part{{ID: "seed-1", Name: "Filter"}} }
	parts := NewCollection[part](store, "parts", seed)

	assert.Equal(t, seed(), parts.Load(ctx))

	raw, found, err := repo.Get(ctx, "parts")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":"seed-1","name":"Filter","count":0}]`, raw)

	require.NoError(t, parts.Save(ctx, nil))
	assert.Empty(t, parts.Load(ctx))
}

func TestCollection_CorruptDataFallsBackToSeed(t *testing.T) {
	store, _, repo := twoTabs(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "parts", "not json"))

	parts := NewCollection[part](store, "parts", func() []part { return []part{{ID: "seed-1"}} })

	assert.Equal(t, []part{{ID: "seed-1"}}, parts.Load(ctx))
}

func TestCollection_UpsertIsIdempotent(t *testing.T) {
	store, _, _ := twoTabs(t)
	ctx := context.Background()
	parts := NewCollection[part](store, "parts", nil)

	created, err := parts.Upsert(ctx, part{ID: "p1", Name: "Bearing", Count: 1})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = parts.Upsert(ctx, part{ID: "p1", Name: "Bearing", Count: 2})
	require.NoError(t, err)
	assert.False(t, created)

	got := parts.Load(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Count)
}

func TestCollection_Remove(t *testing.T) {
	store, _, _ := twoTabs(t)
	ctx := context.Background()
	parts := NewCollection[part](store, "parts", nil)
	require.NoError(t, parts.Save(ctx, []part{{ID: "p1"}, {ID: "p2"}}))

	removed, err := parts.Remove(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = parts.Remove(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, []part{{ID: "p2"}}, parts.Load(ctx))
}

func TestCollection_CrossTabPropagation(t *testing.T) {
	tabA, tabB, _ := twoTabs(t)
	ctx := context.Background()

	partsA := NewCollection[part](tabA, "parts", nil)
	partsB := NewCollection[part](tabB, "parts", nil)

	var notifiedA, notifiedB atomic.Int32
	partsA.Subscribe(func() { notifiedA.Add(1) })
	unsubscribe := partsB.Subscribe(func() { notifiedB.Add(1) })
	defer unsubscribe()

	require.NoError(t, partsA.Save(ctx, []part{{ID: "p1", Name: "Gasket"}}))

	// The writer sees its own write without waiting for any notification.
	got, ok := partsA.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, "Gasket", got[0].Name)

	require.Eventually(t, func() bool { return notifiedB.Load() == 1 }, time.Second, 5*time.Millisecond)

	got, ok = partsB.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, []part{{ID: "p1", Name: "Gasket"}}, got)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), notifiedA.Load())
}

func TestValue_GetSetAndRawStrings(t *testing.T) {
	store, _, repo := twoTabs(t)
	ctx := context.Background()

	theme := NewValue(store, "theme", "light")
	assert.Equal(t, "light", theme.Get(ctx))

	require.NoError(t, theme.Set(ctx, "dark"))
	assert.Equal(t, "dark", theme.Get(ctx))

	require.NoError(t, repo.Set(ctx, "theme", "system"))
	assert.Equal(t, "system", theme.Get(ctx))

	enabled := NewValue(store, "notificationsEnabled", true)
	require.NoError(t, repo.Set(ctx, "notificationsEnabled", "maybe"))
	assert.True(t, enabled.Get(ctx))
}
