package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type prefKey string

type remembered struct {
	ProjectID string
	ViewMode  string
}

func newTestCache() *InMemoryCacheManager[prefKey, remembered] {
	return NewInMemoryCacheManager[prefKey, remembered]("prefs", DefaultExpiration, DefaultCleanupInterval)
}

func TestInMemoryCacheManager_SetThenGet(t *testing.T) {
	cache := newTestCache()
	want := remembered{ProjectID: "p1", ViewMode: "kanban"}
	cache.Set(context.Background(), "pref:p1", want, 0)

	got, ok := cache.Get(context.Background(), "pref:p1")
	require.True(t, ok)
	require.Equal(t, want, got)
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	cache := newTestCache()

	got, ok := cache.Get(context.Background(), "pref:missing")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestInMemoryCacheManager_WrongTypeIsMiss(t *testing.T) {
	cache := newTestCache()
	cache.cache.Set("pref:p1", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "pref:p1")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := newTestCache()
	cache.Set(context.Background(), "pref:p1", remembered{ProjectID: "p1"}, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "pref:p1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := newTestCache()

	_, ok := cache.GetWithRefresh(context.Background(), "pref:p1", time.Hour)
	require.False(t, ok)

	cache.Set(context.Background(), "pref:p1", remembered{ProjectID: "p1"}, 50*time.Millisecond)
	got, ok := cache.GetWithRefresh(context.Background(), "pref:p1", time.Hour)
	require.True(t, ok)
	require.Equal(t, "p1", got.ProjectID)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get(context.Background(), "pref:p1")
	require.True(t, ok, "refresh should have extended the ttl")
}

func TestInMemoryCacheManager_Delete(t *testing.T) {
	cache := newTestCache()
	require.NoError(t, cache.Delete(context.Background()))

	cache.Set(context.Background(), "pref:p1", remembered{ProjectID: "p1"}, 0)
	cache.Set(context.Background(), "pref:p2", remembered{ProjectID: "p2"}, 0)
	require.NoError(t, cache.Delete(context.Background(), "pref:p1"))

	_, ok := cache.Get(context.Background(), "pref:p1")
	require.False(t, ok)
	_, ok = cache.Get(context.Background(), "pref:p2")
	require.True(t, ok)
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := newTestCache()
	cache.Set(context.Background(), "pref:p1", remembered{ProjectID: "p1"}, 0)

	require.NoError(t, cache.Flush(context.Background()))
	require.Equal(t, 0, cache.Len())
}
