package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"clipsync/internal/protocol"
)

func TestRelayURL(t *testing.T) {
	got, err := relayURL("https://clip.example.com", "tok")
	require.NoError(t, err)
	assert.Equal(t, "wss://clip.example.com/api/sync/ws?token=tok", got)

	got, err = relayURL("http://localhost:8080", "tok")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/api/sync/ws?token=tok", got)
}

func TestWSClient_CloseUnblocksReadLoop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		data, err := protocol.Marshal(protocol.NewSlotUpdated(1, "YmxvYg==", uuid.New(), 100))
		require.NoError(t, err)

		// Шлем заведомо больше емкости клиентского буфера
		for i := 0; i < 64; i++ {
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	w, err := dialWS(context.Background(), srv.URL, "tok", slog.Default())
	require.NoError(t, err)

	// Сообщения никто не читает: буфер переполняется, readLoop встает
	// на отправке в канал. Close обязан его разблокировать.
	time.Sleep(100 * time.Millisecond)
	w.Close()

	assert.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-w.Messages():
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 10*time.Millisecond)
}
