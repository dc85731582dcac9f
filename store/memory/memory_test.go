package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/indicators/model"
	"github.com/rulego/indicators/store"
)

func TestSurveyRepository(t *testing.T) {
	ctx := context.Background()
	repo := New().Surveys()

	sv := &model.Survey{Name: "baseline", Rows: []map[string]any{{"a": 1}, {"a": 2}}}
	require.NoError(t, repo.Create(ctx, sv))
	assert.Equal(t, int64(1), sv.ID)
	assert.Equal(t, 2, sv.RowCount)
	assert.False(t, sv.CreatedAt.IsZero())

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "baseline", got.Name)
	assert.Len(t, got.Rows, 2)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Rows)

	_, err = repo.Get(ctx, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIndicatorRepository(t *testing.T) {
	ctx := context.Background()
	repo := New().Indicators()

	a := &model.Indicator{Name: "a", Formula: "COUNT(x)"}
	b := &model.Indicator{Name: "b", Formula: "SUM(x)"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	a.Name = "renamed"
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, repo.Delete(ctx, 2))
	assert.ErrorIs(t, repo.Delete(ctx, 2), store.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &model.Indicator{ID: 7}), store.ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)

	// ids are never reused
	c := &model.Indicator{Name: "c"}
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, int64(3), c.ID)
}

func TestStoredCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := New().Indicators()
	ind := &model.Indicator{Name: "orig"}
	require.NoError(t, repo.Create(ctx, ind))
	ind.Name = "changed"

	got, err := repo.Get(ctx, ind.ID)
	require.NoError(t, err)
	assert.Equal(t, "orig", got.Name)
}

func TestConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := New().Indicators()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, &model.Indicator{Name: "x"})
		}()
	}
	wg.Wait()
	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Surveys().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
