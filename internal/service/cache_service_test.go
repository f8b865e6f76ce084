package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

type fakeCacheRepo struct {
	getErr       error
	setErr       error
	deleteErr    error
	stored       map[string]interface{}
	deletedGlob  string
	lastSetValue interface{}
	lastSetTTL   time.Duration
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{stored: make(map[string]interface{})}
}

func (f *fakeCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	value, ok := f.stored[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	ptr := dest.(*string)
	*ptr = value.(string)
	return nil
}

func (f *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.stored[key] = value
	f.lastSetValue = value
	f.lastSetTTL = ttl
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	f.deletedGlob = pattern
	return f.deleteErr
}

func TestCacheServiceDisabledWithoutRepo(t *testing.T) {
	s := NewCacheService(nil, nil, 0, nil, true)
	assert.False(t, s.Enabled())

	hit, err := s.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceDisabledWhenFlagFalse(t *testing.T) {
	s := NewCacheService(newFakeCacheRepo(), nil, 0, nil, false)
	assert.False(t, s.Enabled())
}

func TestCacheServiceGetMissReturnsFalseNoError(t *testing.T) {
	s := NewCacheService(newFakeCacheRepo(), nil, 0, nil, true)
	var dest string
	hit, err := s.Get(context.Background(), "missing", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceSetThenGetHits(t *testing.T) {
	repo := newFakeCacheRepo()
	s := NewCacheService(repo, nil, 0, nil, true)

	require.NoError(t, s.Set(context.Background(), "k", "value", 0))
	assert.Equal(t, 10*time.Minute, repo.lastSetTTL)

	var dest string
	hit, err := s.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", dest)
}

func TestCacheServiceSetHonorsExplicitTTL(t *testing.T) {
	repo := newFakeCacheRepo()
	s := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, s.Set(context.Background(), "k", "v", 5*time.Minute))
	assert.Equal(t, 5*time.Minute, repo.lastSetTTL)
}

func TestCacheServiceInvalidateDelegatesToRepo(t *testing.T) {
	repo := newFakeCacheRepo()
	s := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, s.Invalidate(context.Background(), "plan:*"))
	assert.Equal(t, "plan:*", repo.deletedGlob)
}

func TestCacheServiceNilReceiverIsSafe(t *testing.T) {
	var s *CacheService
	assert.False(t, s.Enabled())
}
