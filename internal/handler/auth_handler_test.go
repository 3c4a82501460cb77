package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nestegg/backend/internal/model"
	"github.com/nestegg/backend/internal/service"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input service.RegisterInput) (*service.AuthResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResponse), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, input service.LoginInput) (*service.AuthResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResponse), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateSettings(ctx context.Context, userID uuid.UUID, input service.UpdateSettingsInput) (*model.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func sampleUser() *model.User {
	return &model.User{
		ID:                     uuid.New(),
		Email:                  "saver@example.com",
		FullName:               "Test Saver",
		EmailNotifications:     true,
		DashboardNotifications: true,
	}
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewAuthHandler(mockService)

		user := sampleUser()
		mockService.On("Register", mock.Anything, service.RegisterInput{
			Email: "saver@example.com", Password: "password123", FullName: "Test Saver",
		}).Return(&service.AuthResponse{Token: "jwt-token", User: user}, nil)

		body := `{"email":"saver@example.com","password":"password123","fullName":"Test Saver"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp service.AuthResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "jwt-token", resp.Token)
		assert.Equal(t, "saver@example.com", resp.User.Email)
	})

	t.Run("email taken", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewAuthHandler(mockService)

		mockService.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterInput")).
			Return(nil, service.ErrEmailTaken)

		body := `{"email":"saver@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewAuthHandler(mockService)

		mockService.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterInput")).
			Return(nil, service.ErrWeakPassword)

		body := `{"email":"saver@example.com","password":"short"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewAuthHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{broken"))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Register")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewAuthHandler(mockService)

		user := sampleUser()
		mockService.On("Login", mock.Anything, service.LoginInput{
			Email: "saver@example.com", Password: "password123",
		}).Return(&service.AuthResponse{Token: "jwt-token", User: user}, nil)

		body := `{"email":"saver@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewAuthHandler(mockService)

		mockService.On("Login", mock.Anything, mock.AnythingOfType("service.LoginInput")).
			Return(nil, service.ErrInvalidCredentials)

		body := `{"email":"saver@example.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	user := sampleUser()
	mockService.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), user.ID)
	w := httptest.NewRecorder()

	handler.Me(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got model.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.Email, got.Email)
}

func TestAuthHandler_UpdateSettings(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	user := sampleUser()
	user.EmailNotifications = false
	mockService.On("UpdateSettings", mock.Anything, user.ID, mock.MatchedBy(func(in service.UpdateSettingsInput) bool {
		return in.EmailNotifications != nil && !*in.EmailNotifications
	})).Return(user, nil)

	body := `{"emailNotifications":false}`
	req := withUser(httptest.NewRequest(http.MethodPut, "/api/auth/settings", bytes.NewBufferString(body)), user.ID)
	w := httptest.NewRecorder()

	handler.UpdateSettings(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got model.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.EmailNotifications)
	mockService.AssertExpectations(t)
}
