package register

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

	services "github.com/magabrotheeeer/newsroom-backend/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, email, username, password string) (string, error) {
	args := m.Called(ctx, email, username, password)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		mockUID        string
		mockErr        error
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
	}{
		{
			name:           "valid registration",
			requestBody:    Request{Email: "user1@example.com", Username: "user1", Password: "password123"},
			mockUID:        "uid-1",
			wantStatusCode: http.StatusCreated,
			wantSuccess:    true,
			wantMessage:    "check your email for the verification code",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "invalid request body",
		},
		{
			name:           "validation error - bad email",
			requestBody:    Request{Email: "not-an-email", Username: "user1", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantSuccess:    false,
			wantMessage:    "field Email must be a valid email address",
		},
		{
			name:           "validation error - short password",
			requestBody:    Request{Email: "user1@example.com", Username: "user1", Password: "short"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantSuccess:    false,
			wantMessage:    "field Password is too short",
		},
		{
			name:           "user already exists",
			requestBody:    Request{Email: "user1@example.com", Username: "user1", Password: "password123"},
			mockErr:        services.ErrUserExists,
			wantStatusCode: http.StatusConflict,
			wantSuccess:    false,
			wantMessage:    "user already exists",
		},
		{
			name:           "internal error",
			requestBody:    Request{Email: "user1@example.com", Username: "user1", Password: "password123"},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantSuccess:    false,
			wantMessage:    "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock)

			if tt.mockUID != "" || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				authMock.On("Register", mock.Anything, req.Email, req.Username, req.Password).
					Return(tt.mockUID, tt.mockErr).Once()
			}

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

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantSuccess, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])

			if tt.mockUID != "" {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.mockUID, data["uid"])
			}

			authMock.AssertExpectations(t)
		})
	}
}
