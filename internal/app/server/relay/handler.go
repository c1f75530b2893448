package relay

import (
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/device"
	"clipsync/internal/domain/session"
)

// Handler апгрейдит HTTP-запрос устройства до WebSocket-соединения.
// Токен передается query-параметром: браузерные и CLI клиенты не могут
// выставить заголовок при апгрейде одинаково надежно.
type Handler struct {
	hub      *Hub
	service  Servicer
	sessions session.Servicer
	devices  device.Servicer
	cfg      Config
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, service Servicer, sessions session.Servicer, devices device.Servicer, cfg Config, log *slog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		service:  service,
		sessions: sessions,
		devices:  devices,
		cfg:      cfg,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Релей обслуживает собственные CLI-клиенты, не браузеры
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	identity, err := h.sessions.Validate(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	// Для синхронизации нужен токен, привязанный к устройству
	if !identity.HasDevice() {
		http.Error(w, "device token required", http.StatusForbidden)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	conn := newConn(h.hub, ws, identity.UserID, identity.DeviceID, h.service, h.cfg, h.log)
	h.hub.add(conn)
	h.devices.Touch(r.Context(), identity.DeviceID)

	h.log.Info("device connected",
		"user_id", identity.UserID, "device_id", identity.DeviceID,
		"connections", h.hub.ConnCount(identity.UserID))

	go conn.writePump()
	// readPump блокирует горутину запроса до разрыва соединения
	conn.readPump(r.Context())

	h.devices.Touch(r.Context(), identity.DeviceID)
	h.log.Info("device disconnected",
		"user_id", identity.UserID, "device_id", identity.DeviceID)
}
