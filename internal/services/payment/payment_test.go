package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
	"github.com/magabrotheeeer/ai-pro-platform/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreatePayment(ctx context.Context, payment models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *RepoMock) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(*models.Payment)
	return p, args.Error(1)
}

func (m *RepoMock) SettlePayment(ctx context.Context, paymentID, status string) (bool, error) {
	args := m.Called(ctx, paymentID, status)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *RepoMock) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

type PlanCatalogMock struct {
	mock.Mock
}

func (m *PlanCatalogMock) Lookup(ctx context.Context, planID string) (*models.Plan, error) {
	args := m.Called(ctx, planID)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

type LedgerMock struct {
	mock.Mock
}

func (m *LedgerMock) Activate(ctx context.Context, sub models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time { return f.now }

func (f fakeClock) DayKey(t time.Time) string { return t.UTC().Format(clock.DayLayout) }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_CreateIntent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	proPlan := &models.Plan{ID: "pro", Name: "Pro", Price: 29.99, DurationDays: 30, DailyRequestLimit: 150}

	tests := []struct {
		name          string
		planID        string
		setupMocks    func(*RepoMock, *PlanCatalogMock)
		expectedError error
	}{
		{
			name:   "success - pending payment with catalog price",
			planID: "pro",
			setupMocks: func(r *RepoMock, p *PlanCatalogMock) {
				p.On("Lookup", mock.Anything, "pro").Return(proPlan, nil).Once()
				r.On("CreatePayment", mock.Anything, mock.MatchedBy(func(pay models.Payment) bool {
					return pay.UserUID == "user123" &&
						pay.PlanID == "pro" &&
						pay.Amount == 29.99 &&
						pay.Status == models.PaymentPending &&
						pay.CreatedAt.Equal(now) &&
						pay.ID != ""
				})).Return(nil).Once()
			},
		},
		{
			name:   "unknown plan",
			planID: "ghost",
			setupMocks: func(_ *RepoMock, p *PlanCatalogMock) {
				p.On("Lookup", mock.Anything, "ghost").Return(nil, nil).Once()
			},
			expectedError: ErrPlanNotFound,
		},
		{
			name:   "repository error",
			planID: "pro",
			setupMocks: func(r *RepoMock, p *PlanCatalogMock) {
				p.On("Lookup", mock.Anything, "pro").Return(proPlan, nil).Once()
				r.On("CreatePayment", mock.Anything, mock.Anything).Return(errors.New("db error")).Once()
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			plans := new(PlanCatalogMock)
			service := New(repo, plans, new(LedgerMock), nil, fakeClock{now: now}, newNoopLogger())

			tt.setupMocks(repo, plans)

			got, err := service.CreateIntent(context.Background(), "user123", tt.planID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.PaymentPending, got.Status)
				assert.Equal(t, 29.99, got.Amount)
			}

			repo.AssertExpectations(t)
			plans.AssertExpectations(t)
		})
	}
}

func TestService_Approve(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pending := &models.Payment{
		ID:      "pay1",
		UserUID: "user123",
		PlanID:  "pro",
		Amount:  29.99,
		Status:  models.PaymentPending,
	}
	proPlan := &models.Plan{ID: "pro", Name: "Pro", Price: 29.99, DurationDays: 30, DailyRequestLimit: 150}

	t.Run("winner activates subscription for plan duration", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlanCatalogMock)
		ledger := new(LedgerMock)
		publisher := new(PublisherMock)
		service := New(repo, plans, ledger, publisher, fakeClock{now: now}, newNoopLogger())

		repo.On("GetPayment", mock.Anything, "pay1").Return(pending, nil).Once()
		repo.On("SettlePayment", mock.Anything, "pay1", models.PaymentPaid).Return(true, nil).Once()
		plans.On("Lookup", mock.Anything, "pro").Return(proPlan, nil).Once()
		ledger.On("Activate", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
			return sub.UserUID == "user123" &&
				sub.PlanID == "pro" &&
				sub.Status == models.SubscriptionActive &&
				sub.StartDate.Equal(now) &&
				sub.ExpiresAt.Equal(now.AddDate(0, 0, 30))
		})).Return(nil).Once()
		publisher.On("Publish", "payment.approved", ApprovedEvent{
			PaymentID: "pay1", UserUID: "user123", PlanID: "pro", Amount: 29.99,
		}).Return(nil).Once()

		err := service.Approve(context.Background(), "pay1")
		require.NoError(t, err)

		repo.AssertExpectations(t)
		plans.AssertExpectations(t)
		ledger.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("repeat approve is a no-op without reactivation", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlanCatalogMock)
		ledger := new(LedgerMock)
		service := New(repo, plans, ledger, nil, fakeClock{now: now}, newNoopLogger())

		paid := &models.Payment{ID: "pay1", UserUID: "user123", PlanID: "pro", Status: models.PaymentPaid}
		repo.On("GetPayment", mock.Anything, "pay1").Return(paid, nil).Once()
		repo.On("SettlePayment", mock.Anything, "pay1", models.PaymentPaid).Return(false, nil).Once()

		err := service.Approve(context.Background(), "pay1")
		require.NoError(t, err)

		ledger.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
		plans.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("missing plan leaves payment paid without subscription", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlanCatalogMock)
		ledger := new(LedgerMock)
		service := New(repo, plans, ledger, nil, fakeClock{now: now}, newNoopLogger())

		repo.On("GetPayment", mock.Anything, "pay1").Return(pending, nil).Once()
		repo.On("SettlePayment", mock.Anything, "pay1", models.PaymentPaid).Return(true, nil).Once()
		plans.On("Lookup", mock.Anything, "pro").Return(nil, nil).Once()

		err := service.Approve(context.Background(), "pay1")
		require.NoError(t, err)

		ledger.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
		plans.AssertExpectations(t)
	})

	t.Run("unknown payment", func(t *testing.T) {
		repo := new(RepoMock)
		service := New(repo, new(PlanCatalogMock), new(LedgerMock), nil, fakeClock{now: now}, newNoopLogger())

		repo.On("GetPayment", mock.Anything, "ghost").Return(nil, storage.ErrNotFound).Once()

		err := service.Approve(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrPaymentNotFound)

		repo.AssertExpectations(t)
	})

	t.Run("nil publisher does not fail approve", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlanCatalogMock)
		ledger := new(LedgerMock)
		service := New(repo, plans, ledger, nil, fakeClock{now: now}, newNoopLogger())

		repo.On("GetPayment", mock.Anything, "pay1").Return(pending, nil).Once()
		repo.On("SettlePayment", mock.Anything, "pay1", models.PaymentPaid).Return(true, nil).Once()
		plans.On("Lookup", mock.Anything, "pro").Return(proPlan, nil).Once()
		ledger.On("Activate", mock.Anything, mock.Anything).Return(nil).Once()

		err := service.Approve(context.Background(), "pay1")
		assert.NoError(t, err)
	})
}

func TestService_Reject(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pending := &models.Payment{ID: "pay1", UserUID: "user123", PlanID: "pro", Status: models.PaymentPending}

	tests := []struct {
		name          string
		setupMocks    func(*RepoMock)
		expectedError error
	}{
		{
			name: "success - payment becomes failed",
			setupMocks: func(r *RepoMock) {
				r.On("GetPayment", mock.Anything, "pay1").Return(pending, nil).Once()
				r.On("SettlePayment", mock.Anything, "pay1", models.PaymentFailed).Return(true, nil).Once()
			},
		},
		{
			name: "already settled - no-op",
			setupMocks: func(r *RepoMock) {
				r.On("GetPayment", mock.Anything, "pay1").Return(pending, nil).Once()
				r.On("SettlePayment", mock.Anything, "pay1", models.PaymentFailed).Return(false, nil).Once()
			},
		},
		{
			name: "unknown payment",
			setupMocks: func(r *RepoMock) {
				r.On("GetPayment", mock.Anything, "pay1").Return(nil, storage.ErrNotFound).Once()
			},
			expectedError: ErrPaymentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			ledger := new(LedgerMock)
			service := New(repo, new(PlanCatalogMock), ledger, nil, fakeClock{now: now}, newNoopLogger())

			tt.setupMocks(repo)

			err := service.Reject(context.Background(), "pay1")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			ledger.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_List(t *testing.T) {
	all := []*models.Payment{
		{ID: "pay1", UserUID: "user123"},
		{ID: "pay2", UserUID: "user456"},
	}
	own := all[:1]

	t.Run("admin sees all payments", func(t *testing.T) {
		repo := new(RepoMock)
		service := New(repo, new(PlanCatalogMock), new(LedgerMock), nil, fakeClock{}, newNoopLogger())

		repo.On("ListPayments", mock.Anything).Return(all, nil).Once()

		got, err := service.List(context.Background(), "admin-uid", models.RoleAdmin)
		assert.NoError(t, err)
		assert.Equal(t, all, got)

		repo.AssertNotCalled(t, "ListPaymentsByUser", mock.Anything, mock.Anything)
	})

	t.Run("user sees only own payments", func(t *testing.T) {
		repo := new(RepoMock)
		service := New(repo, new(PlanCatalogMock), new(LedgerMock), nil, fakeClock{}, newNoopLogger())

		repo.On("ListPaymentsByUser", mock.Anything, "user123").Return(own, nil).Once()

		got, err := service.List(context.Background(), "user123", models.RoleUser)
		assert.NoError(t, err)
		assert.Equal(t, own, got)

		repo.AssertNotCalled(t, "ListPayments", mock.Anything)
	})
}
