package syncdata

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpsertSlot(ctx context.Context, slot Slot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockRepository) ListSlots(ctx context.Context, userID uuid.UUID) ([]Slot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Slot), args.Error(1)
}

func (m *MockRepository) InsertHistory(ctx context.Context, item HistoryItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]HistoryItem, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]HistoryItem), args.Error(1)
}

func (m *MockRepository) DeleteHistory(ctx context.Context, userID, itemID uuid.UUID) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.Default(), ServiceConfig{SlotCount: 10, MaxBlobSize: 1024})
}

func TestService_UpsertSlot(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := uuid.New()
	deviceID := uuid.New()

	var saved Slot
	mockRepo.On("UpsertSlot", mock.Anything, mock.AnythingOfType("syncdata.Slot")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(Slot)
		}).
		Return(nil)

	slot, err := service.UpsertSlot(context.Background(), userID, deviceID, 3, "YmxvYg==", 1700000000000)
	assert.NoError(t, err)
	assert.Equal(t, 3, slot.SlotNumber)
	assert.Equal(t, int64(1700000000000), slot.Timestamp)
	assert.Equal(t, deviceID, saved.UpdatedBy)
	assert.Equal(t, userID, saved.UserID)
}

func TestService_UpsertSlot_OutOfRange(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	tests := []struct {
		name string
		slot int
	}{
		{"ноль", 0},
		{"отрицательный", -1},
		{"больше лимита", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.UpsertSlot(context.Background(), uuid.New(), uuid.New(), tt.slot, "YmxvYg==", 0)
			assert.ErrorIs(t, err, ErrSlotOutOfRange)
		})
	}

	mockRepo.AssertNotCalled(t, "UpsertSlot")
}

func TestService_UpsertSlot_BlobTooLarge(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	blob := strings.Repeat("a", 1025)
	_, err := service.UpsertSlot(context.Background(), uuid.New(), uuid.New(), 1, blob, 0)
	assert.ErrorIs(t, err, ErrBlobTooLarge)
}

func TestService_UpsertSlot_DefaultsTimestamp(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("UpsertSlot", mock.Anything, mock.AnythingOfType("syncdata.Slot")).Return(nil)

	slot, err := service.UpsertSlot(context.Background(), uuid.New(), uuid.New(), 1, "YmxvYg==", 0)
	assert.NoError(t, err)
	assert.Greater(t, slot.Timestamp, int64(0))
}

func TestService_PushHistory(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := uuid.New()
	deviceID := uuid.New()
	itemID := uuid.New()

	mockRepo.On("InsertHistory", mock.Anything, mock.AnythingOfType("syncdata.HistoryItem")).
		Return(true, nil)

	item, inserted, err := service.PushHistory(context.Background(), userID, deviceID, itemID, "YmxvYg==", "abc123")
	assert.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, itemID, item.ID)
	assert.Equal(t, deviceID, item.CreatedBy)
}

func TestService_PushHistory_Duplicate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("InsertHistory", mock.Anything, mock.AnythingOfType("syncdata.HistoryItem")).
		Return(false, nil)

	// Дубликат по content_hash не считается ошибкой
	_, inserted, err := service.PushHistory(context.Background(), uuid.New(), uuid.New(), uuid.New(), "YmxvYg==", "abc123")
	assert.NoError(t, err)
	assert.False(t, inserted)
}

func TestService_PushHistory_GeneratesID(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("InsertHistory", mock.Anything, mock.AnythingOfType("syncdata.HistoryItem")).
		Return(true, nil)

	item, _, err := service.PushHistory(context.Background(), uuid.New(), uuid.New(), uuid.Nil, "YmxvYg==", "abc123")
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)
}

func TestService_PushHistory_InvalidInput(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	_, _, err := service.PushHistory(context.Background(), uuid.New(), uuid.New(), uuid.New(), "", "abc123")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = service.PushHistory(context.Background(), uuid.New(), uuid.New(), uuid.New(), "YmxvYg==", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_ListHistory_LimitClamping(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := uuid.New()

	// Нулевой лимит заменяется дефолтным
	mockRepo.On("ListHistory", mock.Anything, userID, defaultHistoryLimit, 0).
		Return([]HistoryItem{}, nil).Once()
	_, err := service.ListHistory(context.Background(), userID, 0, 0)
	assert.NoError(t, err)

	// Слишком большой лимит обрезается до максимума
	mockRepo.On("ListHistory", mock.Anything, userID, maxHistoryLimit, 0).
		Return([]HistoryItem{}, nil).Once()
	_, err = service.ListHistory(context.Background(), userID, 1000, 0)
	assert.NoError(t, err)

	// Отрицательный offset обнуляется
	mockRepo.On("ListHistory", mock.Anything, userID, 10, 0).
		Return([]HistoryItem{}, nil).Once()
	_, err = service.ListHistory(context.Background(), userID, 10, -5)
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestService_DeleteHistory_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := uuid.New()
	itemID := uuid.New()

	mockRepo.On("DeleteHistory", mock.Anything, userID, itemID).Return(ErrNotFound)

	err := service.DeleteHistory(context.Background(), userID, itemID)
	assert.ErrorIs(t, err, ErrNotFound)
}
