package protocol

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SlotUpdate(t *testing.T) {
	raw := []byte(`{"type":"slot_update","slot_number":3,"encrypted_blob":"QUJD","timestamp":1700000000000}`)

	msg, err := Decode(raw)
	require.NoError(t, err)

	update, ok := msg.(SlotUpdate)
	require.True(t, ok)
	assert.Equal(t, 3, update.SlotNumber)
	assert.Equal(t, "QUJD", update.EncryptedBlob)
	assert.Equal(t, int64(1700000000000), update.Timestamp)
}

func TestDecode_RoundTrip(t *testing.T) {
	device := uuid.New()
	id := uuid.New()

	tests := []struct {
		name string
		msg  any
	}{
		{"slot_updated", NewSlotUpdated(1, "YmxvYg==", device, 42)},
		{"history_push", NewHistoryPush(id, "YmxvYg==", "abc123")},
		{"history_new", NewHistoryNew(id, "YmxvYg==", "abc123", device, 1700000000000)},
		{"history_delete", NewHistoryDelete(id, 42)},
		{"history_deleted", NewHistoryDeleted(id, device, 42)},
		{"error", NewError("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.msg)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, decoded)
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"nope"}`))
	assert.Error(t, err)
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	assert.Error(t, err)
}
