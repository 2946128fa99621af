package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.SiteSettings)
	return s, args.Error(1)
}

func (m *RepoMock) SaveSettings(ctx context.Context, settings models.SiteSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Get(t *testing.T) {
	stored := &models.SiteSettings{SiteName: "AI Pro Platform", Currency: "USD", MaintenanceMode: false}

	t.Run("cache miss - loads from storage and caches", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		service := New(repo, cache, newNoopLogger())

		cache.On("Get", "settings:site", mock.Anything).Return(false, nil).Once()
		repo.On("GetSettings", mock.Anything).Return(stored, nil).Once()
		cache.On("Set", "settings:site", stored, 5*time.Minute).Return(nil).Once()

		got, err := service.Get(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, stored, got)

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit - storage untouched", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		service := New(repo, cache, newNoopLogger())

		cache.On("Get", "settings:site", mock.Anything).Return(true, nil).Once()

		_, err := service.Get(context.Background())
		assert.NoError(t, err)

		repo.AssertNotCalled(t, "GetSettings", mock.Anything)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		service := New(repo, cache, newNoopLogger())

		cache.On("Get", "settings:site", mock.Anything).Return(false, nil).Once()
		repo.On("GetSettings", mock.Anything).Return(nil, errors.New("db error")).Once()

		_, err := service.Get(context.Background())
		assert.Error(t, err)
	})
}

func TestService_Update(t *testing.T) {
	req := models.DummySettings{SiteName: "AI Pro Platform", Currency: "EUR", MaintenanceMode: true}
	want := models.SiteSettings{SiteName: "AI Pro Platform", Currency: "EUR", MaintenanceMode: true}

	t.Run("success - saves and invalidates cache", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		service := New(repo, cache, newNoopLogger())

		repo.On("SaveSettings", mock.Anything, want).Return(nil).Once()
		cache.On("Invalidate", "settings:site").Return(nil).Once()

		err := service.Update(context.Background(), req)
		assert.NoError(t, err)

		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("repository error - cache untouched", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		service := New(repo, cache, newNoopLogger())

		repo.On("SaveSettings", mock.Anything, want).Return(errors.New("db error")).Once()

		err := service.Update(context.Background(), req)
		assert.Error(t, err)

		cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}
