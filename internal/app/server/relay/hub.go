// Package relay реализует WebSocket-ретрансляцию изменений между
// устройствами одного пользователя. Релей не заглядывает в зашифрованные
// blob-ы: он сохраняет их и рассылает остальным подключенным устройствам.
package relay

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/protocol"
)

// Hub — реестр активных соединений, сгруппированных по пользователю
type Hub struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]map[*Conn]struct{}
	log   *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]map[*Conn]struct{}),
		log:   log,
	}
}

func (h *Hub) add(c *Conn) {
	h.mu.Lock()
	if h.conns[c.userID] == nil {
		h.conns[c.userID] = make(map[*Conn]struct{})
	}
	h.conns[c.userID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *Conn) {
	h.mu.Lock()
	if set := h.conns[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, c.userID)
		}
	}
	h.mu.Unlock()
}

// Broadcast рассылает сообщение всем соединениям пользователя, кроме
// устройства-автора. Медленное соединение с переполненным буфером
// закрывается: клиент переподключится и доберет состояние через REST.
func (h *Hub) Broadcast(userID, originDevice uuid.UUID, msg any) {
	data, err := protocol.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal broadcast message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		if c.deviceID == originDevice {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.log.Warn("slow consumer, dropping connection",
				"user_id", userID, "device_id", c.deviceID)
			go c.close()
		}
	}
}

// ConnCount возвращает число активных соединений пользователя
func (h *Hub) ConnCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
