package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/nestegg/backend/internal/model"
	"github.com/nestegg/backend/internal/repository"
)

// MockUserRepo implements UserRepositoryInterface for testing
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) UpdateSettings(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     RegisterInput
		setupMock func(*MockUserRepo)
		wantErr   error
		check     func(*testing.T, *AuthResponse)
	}{
		{
			name:  "success normalizes email and defaults preferences on",
			input: RegisterInput{Email: "  Ana@Example.com ", Password: "hunter2hunter2", FullName: "Ana"},
			setupMock: func(m *MockUserRepo) {
				m.On("EmailExists", mock.Anything, "ana@example.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "ana@example.com" && u.EmailNotifications && u.DashboardNotifications
				})).Return(nil)
			},
			check: func(t *testing.T, resp *AuthResponse) {
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, "ana@example.com", resp.User.Email)
				assert.NotNil(t, resp.User.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*resp.User.PasswordHash), []byte("hunter2hunter2")))
			},
		},
		{
			name:    "email taken",
			input:   RegisterInput{Email: "ana@example.com", Password: "hunter2hunter2"},
			setupMock: func(m *MockUserRepo) {
				m.On("EmailExists", mock.Anything, "ana@example.com").Return(true, nil)
			},
			wantErr: ErrEmailTaken,
		},
		{
			name:    "short password",
			input:   RegisterInput{Email: "ana@example.com", Password: "short"},
			wantErr: ErrWeakPassword,
		},
		{
			name:    "invalid email",
			input:   RegisterInput{Email: "not-an-email", Password: "hunter2hunter2"},
			wantErr: ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(MockUserRepo)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}
			svc := NewUserService(repo)

			resp, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			if tt.check != nil {
				tt.check(t, resp)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()

	password := "hunter2hunter2"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	hashStr := string(hash)

	tests := []struct {
		name      string
		input     LoginInput
		setupMock func(*MockUserRepo)
		wantErr   error
	}{
		{
			name:  "success",
			input: LoginInput{Email: "ana@example.com", Password: password},
			setupMock: func(m *MockUserRepo) {
				m.On("GetByEmail", mock.Anything, "ana@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "ana@example.com",
					PasswordHash: &hashStr,
				}, nil)
			},
		},
		{
			name:  "wrong password",
			input: LoginInput{Email: "ana@example.com", Password: "wrong-password"},
			setupMock: func(m *MockUserRepo) {
				m.On("GetByEmail", mock.Anything, "ana@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "ana@example.com",
					PasswordHash: &hashStr,
				}, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "unknown email",
			input: LoginInput{Email: "ghost@example.com", Password: password},
			setupMock: func(m *MockUserRepo) {
				m.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "repository failure surfaces",
			input: LoginInput{Email: "ana@example.com", Password: password},
			setupMock: func(m *MockUserRepo) {
				m.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, errors.New("db down"))
			},
			wantErr: nil, // generic error, checked below
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(MockUserRepo)
			tt.setupMock(repo)
			svc := NewUserService(repo)

			resp, err := svc.Login(context.Background(), tt.input)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.name == "repository failure surfaces":
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrInvalidCredentials)
			default:
				assert.NoError(t, err)
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func TestUserService_UpdateSettings(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	existing := &model.User{
		ID:                     userID,
		Email:                  "ana@example.com",
		FullName:               "Ana",
		EmailNotifications:     true,
		DashboardNotifications: true,
	}

	repo := new(MockUserRepo)
	repo.On("GetByID", mock.Anything, userID).Return(existing, nil)
	repo.On("UpdateSettings", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return !u.EmailNotifications && u.DashboardNotifications && u.FullName == "Ana B"
	})).Return(nil)

	svc := NewUserService(repo)

	off := false
	name := "Ana B"
	user, err := svc.UpdateSettings(context.Background(), userID, UpdateSettingsInput{
		FullName:           &name,
		EmailNotifications: &off,
	})

	assert.NoError(t, err)
	assert.False(t, user.EmailNotifications)
	assert.True(t, user.DashboardNotifications)
	repo.AssertExpectations(t)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		token, err := GenerateTokenForTest()
		assert.NoError(t, err)

		userID, err := ValidateToken(token)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, userID)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		_, err := ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

// Tokens must be signed with the secret handed to ConfigureJWT, not with
// whatever happens to be in the environment.
func TestConfigureJWT(t *testing.T) {
	t.Cleanup(func() { ConfigureJWT("") })

	ConfigureJWT("startup-secret")
	token, err := GenerateTokenForTest()
	assert.NoError(t, err)

	userID, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, userID)

	// A different configured secret must reject the same token.
	ConfigureJWT("rotated-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
