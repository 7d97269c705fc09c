package login

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
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	services "github.com/magabrotheeeer/newsroom-backend/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, username, password)
	res, _ := args.Get(0).(*services.LoginResult)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	lockedUntil := time.Now().Add(10 * time.Minute)

	tests := []struct {
		name           string
		requestBody    interface{}
		mockResult     *services.LoginResult
		mockErr        error
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
		wantData       map[string]any
		wantRetryAfter bool
	}{
		{
			name:        "valid login",
			requestBody: Request{Username: "user1", Password: "password123"},
			mockResult: &services.LoginResult{
				AccessToken:  "tok",
				RefreshToken: "ref",
				Username:     "user1",
				Role:         "reader",
			},
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
			wantMessage:    "login successful",
			wantData: map[string]any{
				"token":         "tok",
				"refresh_token": "ref",
				"role":          "reader",
				"username":      "user1",
			},
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "invalid request body",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Username: "user1"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantSuccess:    false,
			wantMessage:    "field Password is a required field",
		},
		{
			name:           "invalid credentials",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        services.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantSuccess:    false,
			wantMessage:    "invalid credentials",
		},
		{
			name:           "account locked",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        &services.AccountLockedError{Until: lockedUntil},
			wantStatusCode: http.StatusLocked,
			wantSuccess:    false,
			wantMessage:    "account temporarily locked",
			wantRetryAfter: true,
		},
		{
			name:           "account not active",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        services.ErrAccountNotActive,
			wantStatusCode: http.StatusForbidden,
			wantSuccess:    false,
			wantMessage:    "account is not active",
		},
		{
			name:           "mfa required",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        services.ErrMfaRequired,
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
			wantMessage:    "mfa code sent",
			wantData: map[string]any{
				"mfa_required": true,
				"username":     "user1",
			},
		},
		{
			name:           "internal error",
			requestBody:    Request{Username: "user1", Password: "password123"},
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

			if tt.mockResult != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				authMock.On("Login", mock.Anything, req.Username, req.Password).
					Return(tt.mockResult, tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantSuccess, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			} else {
				assert.Nil(t, got["data"])
			}

			if tt.wantRetryAfter {
				assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			}

			authMock.AssertExpectations(t)
		})
	}
}
