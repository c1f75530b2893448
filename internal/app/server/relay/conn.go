package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/syncdata"
	"clipsync/internal/protocol"
)

const writeWait = 10 * time.Second

// Config — тюнинг соединений релея
type Config struct {
	SendBuffer        int           // емкость исходящего буфера на соединение
	HeartbeatInterval time.Duration // период ping
	ReadTimeout       time.Duration // дедлайн чтения, сбрасывается pong-ом
	MaxMessageSize    int64         // лимит входящего сообщения
}

// Conn — одно WebSocket-соединение устройства
type Conn struct {
	hub      *Hub
	ws       *websocket.Conn
	userID   uuid.UUID
	deviceID uuid.UUID
	send     chan []byte
	done     chan struct{}
	service  Servicer
	cfg      Config
	log      *slog.Logger

	closeOnce sync.Once
}

func newConn(hub *Hub, ws *websocket.Conn, userID, deviceID uuid.UUID, service Servicer, cfg Config, log *slog.Logger) *Conn {
	return &Conn{
		hub:      hub,
		ws:       ws,
		userID:   userID,
		deviceID: deviceID,
		send:     make(chan []byte, cfg.SendBuffer),
		done:     make(chan struct{}),
		service:  service,
		cfg:      cfg,
		log:      log,
	}
}

// close снимает соединение с учета и сигналит обеим горутинам через done.
// Канал send никогда не закрывается: в него конкурентно пишут Broadcast
// и reply, закрытие превратило бы гонку в панику.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		c.hub.remove(c)
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// writePump гонит исходящий буфер в сокет и шлет ping по таймеру
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump читает мутации от устройства и прогоняет их через общий
// сервисный путь (запись + рассылка). Некорректное сообщение получает
// адресную ошибку, соединение при этом не рвется.
func (c *Conn) readPump(ctx context.Context) {
	defer c.close()

	c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read error", "device_id", c.deviceID, "error", err)
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.reply(protocol.NewError("malformed message"))
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			c.log.Error("failed to handle inbound message",
				"device_id", c.deviceID, "error", err)
			c.reply(protocol.NewError(clientMessage(err)))
		}
	}
}

func (c *Conn) handle(ctx context.Context, msg any) error {
	switch m := msg.(type) {
	case protocol.SlotUpdate:
		_, err := c.service.UpdateSlot(ctx, c.userID, c.deviceID, m.SlotNumber, m.EncryptedBlob, m.Timestamp)
		return err
	case protocol.HistoryPush:
		_, _, err := c.service.PushHistory(ctx, c.userID, c.deviceID, m.ID, m.EncryptedBlob, m.ContentHash)
		return err
	case protocol.HistoryDelete:
		return c.service.DeleteHistory(ctx, c.userID, c.deviceID, m.ID, m.Timestamp)
	default:
		// Серверные типы (slot_updated и прочие) от клиента не принимаются
		c.reply(protocol.NewError("unexpected message type"))
		return nil
	}
}

// clientMessage переводит ошибку сервиса в текст для пира. Ошибки
// валидации отдаются как есть, внутренние детали остаются в логе.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, syncdata.ErrSlotOutOfRange),
		errors.Is(err, syncdata.ErrBlobTooLarge),
		errors.Is(err, syncdata.ErrInvalidInput),
		errors.Is(err, syncdata.ErrNotFound):
		return err.Error()
	default:
		return "internal error"
	}
}

func (c *Conn) reply(msg protocol.ErrorMessage) {
	data, err := protocol.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
	}
}
