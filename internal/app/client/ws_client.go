package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/syncerr"
	"clipsync/internal/protocol"
)

const (
	wsPath        = "/api/sync/ws"
	wsReadTimeout = 90 * time.Second
	wsWriteWait   = 10 * time.Second
)

// wsClient держит постоянное соединение с релеем и отдает
// декодированные сообщения в канал. Запись в сокет не используется:
// все мутации уходят через REST и durable-очередь.
type wsClient struct {
	conn      *websocket.Conn
	log       *slog.Logger
	messages  chan any
	done      chan struct{}
	closeOnce sync.Once
}

// dialWS поднимает WebSocket-соединение с device-токеном.
// HTTP-ответ 401 на рукопожатие означает отозванную сессию.
func dialWS(ctx context.Context, serverURL, token string, log *slog.Logger) (*wsClient, error) {
	wsURL, err := relayURL(serverURL, token)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == 401 {
			return nil, syncerr.ErrAuth
		}
		return nil, fmt.Errorf("%w: %v", syncerr.ErrTransport, err)
	}

	w := &wsClient{
		conn:     conn,
		log:      log,
		messages: make(chan any, 32),
		done:     make(chan struct{}),
	}

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(wsWriteWait))
	})

	go w.readLoop()
	return w, nil
}

// relayURL переводит http(s) базовый адрес в ws(s) и добавляет токен
func relayURL(serverURL, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("ошибка разбора адреса сервера: %w", err)
	}

	switch {
	case strings.EqualFold(u.Scheme, "https"):
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = wsPath
	u.RawQuery = url.Values{"token": {token}}.Encode()

	return u.String(), nil
}

// Messages отдает входящие сообщения релея. Канал закрывается
// при обрыве соединения — для движка это сигнал на реконнект.
func (w *wsClient) Messages() <-chan any {
	return w.messages
}

func (w *wsClient) readLoop() {
	defer close(w.messages)

	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			w.log.Debug("WebSocket закрыт", "error", err)
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		msg, err := protocol.Decode(data)
		if err != nil {
			// Непонятное сообщение не роняет соединение
			w.log.Warn("Нечитаемое сообщение релея", "error", err)
			continue
		}

		// Если буфер полон, а потребитель уже ушел, Close снимает
		// блокировку через done
		select {
		case w.messages <- msg:
		case <-w.done:
			return
		}
	}
}

// Close закрывает соединение. Канал сообщений закроет readLoop.
func (w *wsClient) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(wsWriteWait))
		w.conn.Close()
	})
}
