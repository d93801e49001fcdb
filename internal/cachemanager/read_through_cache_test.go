package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager[K comparable, V any] struct {
	mock.Mock
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCacheManager[K, V]) Len() int {
	return m.Called().Int(0)
}

func lengthOf(_ context.Context, s string) (int, error) {
	if s == "boom" {
		return 0, errors.New("boom")
	}
	return len(s), nil
}

func TestReadThroughCache_SkipCacheCallsFn(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	rt := NewReadThroughCache[string, int, string](m, lengthOf, true)

	got, err := rt.Get(context.Background(), "k", "abcd", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 4, got)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_HitDoesNotCallFn(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	m.On("Get", mock.Anything, "k").Return(99, true)

	called := false
	rt := NewReadThroughCache[string, int, string](m, func(ctx context.Context, s string) (int, error) {
		called = true
		return 0, nil
	}, false)

	got, err := rt.Get(context.Background(), "k", "abcd", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 99, got)
	require.False(t, called)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissFillsCache(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	m.On("GetWithRefresh", mock.Anything, "k", time.Minute).Return(0, false)
	m.On("Set", mock.Anything, "k", 3, time.Minute).Return()

	rt := NewReadThroughCache[string, int, string](m, lengthOf, false)
	got, err := rt.GetWithRefresh(context.Background(), "k", "abc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, got)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorIsNotCached(t *testing.T) {
	m := &mockCacheManager[string, int]{}
	m.On("Get", mock.Anything, "k").Return(0, false)

	rt := NewReadThroughCache[string, int, string](m, lengthOf, false)
	_, err := rt.Get(context.Background(), "k", "boom", time.Minute)
	require.Error(t, err)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_RefreshAlwaysRecomputes(t *testing.T) {
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "k", 100, DefaultExpiration)

	rt := NewReadThroughCache[string, int, string](cache, lengthOf, false)
	got, err := rt.Refresh(context.Background(), "k", "ab", DefaultExpiration)
	require.NoError(t, err)
	require.Equal(t, 2, got)

	stored, ok := cache.Get(context.Background(), "k")
	require.True(t, ok)
	require.Equal(t, 2, stored)
}
