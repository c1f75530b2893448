package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewCredentialsValidator(), slog.Default())

	email := "user@example.com"
	password := "testpassword123"
	newID := uuid.New()

	// Хэш предсказать нельзя, проверяем что он не пустой
	mockRepo.On("Create", mock.Anything, email, mock.MatchedBy(func(hash string) bool {
		return hash != ""
	})).Return(newID, nil)

	userID, err := service.Register(context.Background(), email, password)
	assert.NoError(t, err)
	assert.Equal(t, newID, userID)

	mockRepo.AssertExpectations(t)
}

func TestService_Register_NormalizesEmail(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewCredentialsValidator(), slog.Default())

	newID := uuid.New()
	mockRepo.On("Create", mock.Anything, "user@example.com", mock.AnythingOfType("string")).Return(newID, nil)

	_, err := service.Register(context.Background(), "  User@Example.COM ", "testpassword123")
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestService_Register_InvalidInput(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewCredentialsValidator(), slog.Default())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"short password", "user@example.com", "short"},
		{"no at sign", "userexample.com", "testpassword123"},
		{"empty email", "", "testpassword123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Register_EmailTaken(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewCredentialsValidator(), slog.Default())

	mockRepo.On("Create", mock.Anything, "user@example.com", mock.AnythingOfType("string")).
		Return(uuid.Nil, ErrEmailTaken)

	_, err := service.Register(context.Background(), "user@example.com", "testpassword123")
	assert.ErrorIs(t, err, ErrEmailTaken)

	mockRepo.AssertExpectations(t)
}

func TestService_Authenticate_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewCredentialsValidator(), slog.Default())

	email := "user@example.com"
	password := "testpassword123"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	assert.NoError(t, err)

	u := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}

	mockRepo.On("FindByEmail", mock.Anything, email).Return(u, nil)

	authUser, err := service.Authenticate(context.Background(), email, password)
	assert.NoError(t, err)
	assert.Equal(t, u, authUser)

	mockRepo.AssertExpectations(t)
}

func TestService_Authenticate_UserNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewCredentialsValidator(), slog.Default())

	mockRepo.On("FindByEmail", mock.Anything, "missing@example.com").
		Return(User{}, errors.New("no rows"))

	_, err := service.Authenticate(context.Background(), "missing@example.com", "testpassword123")
	assert.ErrorIs(t, err, ErrNotFound)

	mockRepo.AssertExpectations(t)
}

func TestService_Authenticate_InvalidPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, NewCredentialsValidator(), slog.Default())

	hash, err := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	u := User{ID: uuid.New(), Email: "user@example.com", PasswordHash: string(hash)}
	mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(u, nil)

	_, err = service.Authenticate(context.Background(), "user@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidAuth)

	mockRepo.AssertExpectations(t)
}
