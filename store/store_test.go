package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridroute/gridgraph"
	"github.com/katalvlaran/gridroute/store"
)

func openTemp(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestRecordRun_RoundTrip(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 9, 30, 0, 123, time.UTC)

	want := store.Run{
		CreatedAt: at,
		Start:     gridgraph.C(7, 2),
		Goal:      gridgraph.C(2, 5),
		Found:     true,
		Steps:     8,
		Visited:   31,
		Path:      []gridgraph.Coordinate{{X: 7, Y: 2}, {X: 7, Y: 3}},
	}
	id, err := s.RecordRun(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := s.Run(ctx, id)
	require.NoError(t, err)
	want.ID = id
	assert.True(t, at.Equal(got.CreatedAt))
	got.CreatedAt = want.CreatedAt
	assert.Equal(t, want, got)
}

func TestRecordRun_NotFoundAndDefaults(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	id, err := s.RecordRun(ctx, store.Run{Start: gridgraph.C(0, 0), Goal: gridgraph.C(5, 5), Steps: -1, Error: "unreachable"})
	require.NoError(t, err)

	got, err := s.Run(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Found)
	assert.Equal(t, -1, got.Steps)
	assert.Equal(t, []gridgraph.Coordinate{}, got.Path)
	assert.Equal(t, "unreachable", got.Error)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

	_, err = s.Run(ctx, 999)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRuns_NewestFirst(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.RecordRun(ctx, store.Run{Start: gridgraph.C(i, 0), Goal: gridgraph.C(i, 1), Found: true, Steps: 1})
		require.NoError(t, err)
	}

	runs, err := s.Runs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []int64{5, 4, 3}, []int64{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, gridgraph.C(4, 0), runs[0].Start)

	all, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	s, path := openTemp(t)
	_, err := s.RecordRun(context.Background(), store.Run{Found: true, Steps: 2})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n))
	assert.Equal(t, 1, n)

	again, err := store.Open(path)
	require.NoError(t, err)
	defer again.Close()
	runs, err := again.Runs(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s, _ := openTemp(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.RecordRun(context.Background(), store.Run{Start: gridgraph.C(i, i), Steps: i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	runs, err := s.Runs(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, runs, 8)
}

func TestOpen_Errors(t *testing.T) {
	_, err := store.Open("")
	require.Error(t, err)

	var nilStore *store.Store
	_, err = nilStore.RecordRun(context.Background(), store.Run{})
	require.ErrorIs(t, err, store.ErrClosed)
	assert.NoError(t, nilStore.Close())
}
