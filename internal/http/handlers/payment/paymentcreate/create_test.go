package paymentcreate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/ai-pro-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
	"github.com/magabrotheeeer/ai-pro-platform/internal/services/payment"
)

type PaymentServiceMock struct {
	mock.Mock
}

func (m *PaymentServiceMock) CreateIntent(ctx context.Context, userUID, planID string) (*models.Payment, error) {
	args := m.Called(ctx, userUID, planID)
	p, _ := args.Get(0).(*models.Payment)
	return p, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	created := &models.Payment{
		ID:      "pay1",
		UserUID: "user123",
		PlanID:  "pro",
		Amount:  29.99,
		Status:  models.PaymentPending,
	}

	tests := []struct {
		name           string
		requestBody    any
		userUID        string
		setupMocks     func(*PaymentServiceMock)
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:        "success - pending payment created",
			requestBody: models.DummyPaymentCreate{PlanID: "pro"},
			userUID:     "user123",
			setupMocks: func(s *PaymentServiceMock) {
				s.On("CreateIntent", mock.Anything, "user123", "pro").Return(created, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:        "unknown plan",
			requestBody: models.DummyPaymentCreate{PlanID: "ghost"},
			userUID:     "user123",
			setupMocks: func(s *PaymentServiceMock) {
				s.On("CreateIntent", mock.Anything, "user123", "ghost").
					Return(nil, payment.ErrPlanNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "plan not found",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			userUID:        "user123",
			setupMocks:     func(*PaymentServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing plan id",
			requestBody:    models.DummyPaymentCreate{},
			userUID:        "user123",
			setupMocks:     func(*PaymentServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field PlanID is a required field",
		},
		{
			name:           "missing user in context",
			requestBody:    models.DummyPaymentCreate{PlanID: "pro"},
			userUID:        "",
			setupMocks:     func(*PaymentServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "unauthorized",
		},
		{
			name:        "internal error",
			requestBody: models.DummyPaymentCreate{PlanID: "pro"},
			userUID:     "user123",
			setupMocks: func(s *PaymentServiceMock) {
				s.On("CreateIntent", mock.Anything, "user123", "pro").
					Return(nil, errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "could not create payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(PaymentServiceMock)
			handler := New(newNoopLogger(), service)

			tt.setupMocks(service)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			service.AssertExpectations(t)
		})
	}
}
