package send

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
	"github.com/magabrotheeeer/ai-pro-platform/internal/services/access"
	"github.com/magabrotheeeer/ai-pro-platform/internal/services/chat"
)

type ChatServiceMock struct {
	mock.Mock
}

func (m *ChatServiceMock) Send(ctx context.Context, userUID, prompt string) (chat.Reply, access.Decision, error) {
	args := m.Called(ctx, userUID, prompt)
	return args.Get(0).(chat.Reply), args.Get(1).(access.Decision), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSendHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		userUID        string
		setupMocks     func(*ChatServiceMock)
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:        "allowed request returns model reply",
			requestBody: Request{Prompt: "hello"},
			userUID:     "user123",
			setupMocks: func(s *ChatServiceMock) {
				s.On("Send", mock.Anything, "user123", "hello").
					Return(chat.Reply{Text: "hi", Remaining: 4}, access.Decision{Allowed: true, Remaining: 5}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:        "denied request returns 403 with reason",
			requestBody: Request{Prompt: "hello"},
			userUID:     "user123",
			setupMocks: func(s *ChatServiceMock) {
				s.On("Send", mock.Anything, "user123", "hello").
					Return(chat.Reply{}, access.Decision{Allowed: false, Reason: access.DenyQuotaExceeded}, nil).Once()
			},
			wantStatusCode: http.StatusForbidden,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			userUID:        "user123",
			setupMocks:     func(*ChatServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - empty prompt",
			requestBody:    Request{},
			userUID:        "user123",
			setupMocks:     func(*ChatServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Prompt is a required field",
		},
		{
			name:           "missing user in context",
			requestBody:    Request{Prompt: "hello"},
			userUID:        "",
			setupMocks:     func(*ChatServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "unauthorized",
		},
		{
			name:        "service error",
			requestBody: Request{Prompt: "hello"},
			userUID:     "user123",
			setupMocks: func(s *ChatServiceMock) {
				s.On("Send", mock.Anything, "user123", "hello").
					Return(chat.Reply{}, access.Decision{}, errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "internal service error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ChatServiceMock)
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

			req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(bodyBytes))
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
