package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID, deviceID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, deviceID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) Validate(ctx context.Context, tokenHash string) (Identity, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(Identity), args.Error(1)
}

func (m *MockRepository) DeleteByDevice(ctx context.Context, deviceID uuid.UUID) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func TestService_Create_TokenIsOpaque(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	userID := uuid.New()

	var storedHash string
	mockRepo.On("Create", mock.Anything, userID, uuid.Nil, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			storedHash = args.String(3)
		}).
		Return(nil)

	token, err := service.Create(context.Background(), userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	// В репозиторий уходит хэш, а не сам токен
	assert.NotEqual(t, token, storedHash)
	assert.Len(t, storedHash, 64)

	mockRepo.AssertExpectations(t)
}

func TestService_CreateForDevice_BindsDevice(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	userID := uuid.New()
	deviceID := uuid.New()

	mockRepo.On("Create", mock.Anything, userID, deviceID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil)

	token, err := service.CreateForDevice(context.Background(), userID, deviceID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	mockRepo.AssertExpectations(t)
}

func TestService_Validate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	userID := uuid.New()
	deviceID := uuid.New()

	var storedHash string
	mockRepo.On("Create", mock.Anything, userID, deviceID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { storedHash = args.String(3) }).
		Return(nil)

	token, err := service.CreateForDevice(context.Background(), userID, deviceID)
	assert.NoError(t, err)

	mockRepo.On("Validate", mock.Anything, storedHash).
		Return(Identity{UserID: userID, DeviceID: deviceID}, nil)

	identity, err := service.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, deviceID, identity.DeviceID)
	assert.True(t, identity.HasDevice())
}

func TestService_Validate_Invalid(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Validate", mock.Anything, mock.AnythingOfType("string")).
		Return(Identity{}, errors.New("no rows"))

	_, err := service.Validate(context.Background(), "garbage-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
