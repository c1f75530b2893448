package sync

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/session"
	"clipsync/internal/domain/syncdata"
)

type MockDataService struct {
	mock.Mock
}

func (m *MockDataService) UpsertSlot(ctx context.Context, userID, deviceID uuid.UUID, slotNumber int, blob string, timestamp int64) (syncdata.Slot, error) {
	args := m.Called(ctx, userID, deviceID, slotNumber, blob, timestamp)
	return args.Get(0).(syncdata.Slot), args.Error(1)
}

func (m *MockDataService) ListSlots(ctx context.Context, userID uuid.UUID) ([]syncdata.Slot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]syncdata.Slot), args.Error(1)
}

func (m *MockDataService) PushHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, blob, contentHash string) (syncdata.HistoryItem, bool, error) {
	args := m.Called(ctx, userID, deviceID, itemID, blob, contentHash)
	return args.Get(0).(syncdata.HistoryItem), args.Bool(1), args.Error(2)
}

func (m *MockDataService) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]syncdata.HistoryItem, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]syncdata.HistoryItem), args.Error(1)
}

func (m *MockDataService) DeleteHistory(ctx context.Context, userID, itemID uuid.UUID) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

type MockRelayService struct {
	mock.Mock
}

func (m *MockRelayService) UpdateSlot(ctx context.Context, userID, deviceID uuid.UUID, slotNumber int, blob string, timestamp int64) (syncdata.Slot, error) {
	args := m.Called(ctx, userID, deviceID, slotNumber, blob, timestamp)
	return args.Get(0).(syncdata.Slot), args.Error(1)
}

func (m *MockRelayService) PushHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, blob, contentHash string) (syncdata.HistoryItem, bool, error) {
	args := m.Called(ctx, userID, deviceID, itemID, blob, contentHash)
	return args.Get(0).(syncdata.HistoryItem), args.Bool(1), args.Error(2)
}

func (m *MockRelayService) DeleteHistory(ctx context.Context, userID, deviceID, itemID uuid.UUID, timestamp int64) error {
	args := m.Called(ctx, userID, deviceID, itemID, timestamp)
	return args.Error(0)
}

func deviceCtx(userID, deviceID uuid.UUID) context.Context {
	return auth.WithIdentity(context.Background(), session.Identity{UserID: userID, DeviceID: deviceID})
}

func userCtx(userID uuid.UUID) context.Context {
	return auth.WithIdentity(context.Background(), session.Identity{UserID: userID})
}

func newTestHandler(data syncdata.Servicer, rel *MockRelayService) *Handler {
	return NewHandler(data, rel, slog.Default(), huma.Middlewares{})
}

func TestHandler_updateSlot(t *testing.T) {
	mockRelay := new(MockRelayService)
	handler := newTestHandler(new(MockDataService), mockRelay)

	userID := uuid.New()
	deviceID := uuid.New()
	stored := syncdata.Slot{SlotNumber: 3, EncryptedBlob: "YmxvYg==", Timestamp: 100, UpdatedBy: deviceID}

	mockRelay.On("UpdateSlot", mock.Anything, userID, deviceID, 3, "YmxvYg==", int64(100)).
		Return(stored, nil)

	output, err := handler.updateSlot(deviceCtx(userID, deviceID), &updateSlotInput{
		Number: 3,
		Body:   SlotUpdateRequest{EncryptedBlob: "YmxvYg==", Timestamp: 100},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", output.Body.Status)
	assert.Equal(t, 3, output.Body.Slot.SlotNumber)
}

func TestHandler_updateSlot_RequiresDeviceToken(t *testing.T) {
	mockRelay := new(MockRelayService)
	handler := newTestHandler(new(MockDataService), mockRelay)

	// Пользовательский токен без привязки к устройству
	_, err := handler.updateSlot(userCtx(uuid.New()), &updateSlotInput{
		Number: 1,
		Body:   SlotUpdateRequest{EncryptedBlob: "YmxvYg=="},
	})
	assert.Error(t, err)
	mockRelay.AssertNotCalled(t, "UpdateSlot")
}

func TestHandler_updateSlot_OutOfRange(t *testing.T) {
	mockRelay := new(MockRelayService)
	handler := newTestHandler(new(MockDataService), mockRelay)

	userID := uuid.New()
	deviceID := uuid.New()

	mockRelay.On("UpdateSlot", mock.Anything, userID, deviceID, 99, "YmxvYg==", int64(0)).
		Return(syncdata.Slot{}, syncdata.ErrSlotOutOfRange)

	_, err := handler.updateSlot(deviceCtx(userID, deviceID), &updateSlotInput{
		Number: 99,
		Body:   SlotUpdateRequest{EncryptedBlob: "YmxvYg=="},
	})
	assert.Error(t, err)
}

func TestHandler_pushHistory_StatusCodes(t *testing.T) {
	userID := uuid.New()
	deviceID := uuid.New()
	itemID := uuid.New()

	tests := []struct {
		name       string
		inserted   bool
		wantStatus int
	}{
		{"новая запись", true, http.StatusCreated},
		{"дубликат", false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRelay := new(MockRelayService)
			handler := newTestHandler(new(MockDataService), mockRelay)

			mockRelay.On("PushHistory", mock.Anything, userID, deviceID, itemID, "YmxvYg==", "hash").
				Return(syncdata.HistoryItem{ID: itemID}, tt.inserted, nil)

			output, err := handler.pushHistory(deviceCtx(userID, deviceID), &pushHistoryInput{
				Body: HistoryPushRequest{ID: itemID, EncryptedBlob: "YmxvYg==", ContentHash: "hash"},
			})
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, output.Status)
			assert.Equal(t, tt.inserted, output.Body.Inserted)
		})
	}
}

func TestHandler_listHistory(t *testing.T) {
	mockData := new(MockDataService)
	handler := newTestHandler(mockData, new(MockRelayService))

	userID := uuid.New()
	items := []syncdata.HistoryItem{{ID: uuid.New(), ContentHash: "h1"}}

	mockData.On("ListHistory", mock.Anything, userID, 25, 50).Return(items, nil)

	output, err := handler.listHistory(userCtx(userID), &listHistoryInput{Limit: 25, Offset: 50})
	assert.NoError(t, err)
	assert.Len(t, output.Body.Items, 1)
}

func TestHandler_deleteHistory_NotFound(t *testing.T) {
	mockRelay := new(MockRelayService)
	handler := newTestHandler(new(MockDataService), mockRelay)

	userID := uuid.New()
	deviceID := uuid.New()
	itemID := uuid.New()

	mockRelay.On("DeleteHistory", mock.Anything, userID, deviceID, itemID, int64(0)).
		Return(syncdata.ErrNotFound)

	_, err := handler.deleteHistory(deviceCtx(userID, deviceID), &deleteHistoryInput{ID: itemID})
	assert.Error(t, err)
}
