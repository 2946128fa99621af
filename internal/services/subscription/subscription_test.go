package subscription

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
	"github.com/magabrotheeeer/ai-pro-platform/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func (m *RepoMock) ActivateSubscription(ctx context.Context, sub models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *RepoMock) ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLedger_ActiveFor(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		ID:        "sub1",
		UserUID:   "user123",
		PlanID:    "basic",
		ExpiresAt: now.Add(-time.Hour),
		Status:    models.SubscriptionActive,
	}

	tests := []struct {
		name          string
		setupMocks    func(*RepoMock)
		wantSub       *models.Subscription
		expectedError bool
	}{
		{
			name: "active subscription found",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveSubscription", mock.Anything, "user123").Return(sub, nil).Once()
			},
			wantSub: sub,
		},
		{
			name: "no active subscription - nil without error",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveSubscription", mock.Anything, "user123").Return(nil, storage.ErrNotFound).Once()
			},
			wantSub: nil,
		},
		{
			name: "repository error",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveSubscription", mock.Anything, "user123").Return(nil, errors.New("db error")).Once()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			ledger := NewLedger(repo, newNoopLogger())

			tt.setupMocks(repo)

			got, err := ledger.ActiveFor(context.Background(), "user123")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantSub, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

// Реестр возвращает запись со статусом active как есть, даже если её
// ExpiresAt уже в прошлом: сверка с текущим временем — дело вызывающего.
func TestLedger_ActiveFor_DoesNotExpireOnRead(t *testing.T) {
	staleSub := &models.Subscription{
		ID:        "sub1",
		UserUID:   "user123",
		PlanID:    "basic",
		ExpiresAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.SubscriptionActive,
	}

	repo := new(RepoMock)
	ledger := NewLedger(repo, newNoopLogger())

	repo.On("GetActiveSubscription", mock.Anything, "user123").Return(staleSub, nil).Once()

	got, err := ledger.ActiveFor(context.Background(), "user123")
	assert.NoError(t, err)
	assert.Equal(t, staleSub, got)
	assert.Equal(t, models.SubscriptionActive, got.Status)

	repo.AssertNotCalled(t, "ActivateSubscription", mock.Anything, mock.Anything)
}

func TestLedger_Activate(t *testing.T) {
	sub := models.Subscription{
		ID:        "sub2",
		UserUID:   "user123",
		PlanID:    "pro",
		StartDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		Status:    models.SubscriptionActive,
	}

	tests := []struct {
		name          string
		setupMocks    func(*RepoMock)
		expectedError bool
	}{
		{
			name: "success",
			setupMocks: func(r *RepoMock) {
				r.On("ActivateSubscription", mock.Anything, sub).Return(nil).Once()
			},
		},
		{
			name: "repository error",
			setupMocks: func(r *RepoMock) {
				r.On("ActivateSubscription", mock.Anything, sub).Return(errors.New("db error")).Once()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			ledger := NewLedger(repo, newNoopLogger())

			tt.setupMocks(repo)

			err := ledger.Activate(context.Background(), sub)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestLedger_History(t *testing.T) {
	expected := []*models.Subscription{
		{ID: "sub2", UserUID: "user123", PlanID: "pro", Status: models.SubscriptionActive},
		{ID: "sub1", UserUID: "user123", PlanID: "free", Status: models.SubscriptionExpired},
	}

	repo := new(RepoMock)
	ledger := NewLedger(repo, newNoopLogger())

	repo.On("ListSubscriptions", mock.Anything, "user123").Return(expected, nil).Once()

	got, err := ledger.History(context.Background(), "user123")
	assert.NoError(t, err)
	assert.Equal(t, expected, got)

	repo.AssertExpectations(t)
}
