// Релей ClipSync: REST-поверхность + WebSocket фан-аут.
//
// POST /api/user/register        # Регистрация (публичный)
// POST /api/user/login           # Логин (публичный)
// POST /api/devices              # Зарегистрировать устройство (auth)
// GET  /api/devices              # Список устройств (auth)
// DELETE /api/devices/{id}       # Отозвать устройство (auth)
// GET  /api/sync/slots           # Все слоты (auth)
// PUT  /api/sync/slots/{number}  # Записать слот (device auth)
// GET  /api/sync/history         # Страница истории (auth)
// POST /api/sync/history         # Добавить элемент истории (device auth)
// DELETE /api/sync/history/{id}  # Удалить элемент истории (device auth)
// POST /api/link/code            # Открыть сессию передачи ключа (auth)
// POST /api/link/redeem          # Обменять код на ключ (auth)
// GET  /api/health               # Проверка доступности (публичный)
// GET  /api/sync/ws              # WebSocket-подписка (device token)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	deviceAPI "clipsync/internal/app/server/api/http/device"
	healthAPI "clipsync/internal/app/server/api/http/health"
	linkAPI "clipsync/internal/app/server/api/http/link"
	"clipsync/internal/app/server/api/http/middleware"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/app/server/api/http/middleware/logger"
	syncAPI "clipsync/internal/app/server/api/http/sync"
	userAPI "clipsync/internal/app/server/api/http/user"
	"clipsync/internal/app/server/config"
	"clipsync/internal/app/server/relay"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/link"
	"clipsync/internal/domain/session"
	"clipsync/internal/domain/syncdata"
	"clipsync/internal/domain/user"
	"clipsync/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Device *deviceAPI.Handler
	Sync   *syncAPI.Handler
	Link   *linkAPI.Handler
	WS     *relay.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
// и WebSocket-эндпоинтом релея поверх того же роутера
func New(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("ClipSync Relay API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(storage, cfg, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Device.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Link.SetupRoutes(API)

	// WebSocket не укладывается в huma-операции, монтируем напрямую
	mux.Get("/api/sync/ws", h.WS.ServeHTTP)

	return mux
}

func handlers(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage, log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(storage, log)
	userService := user.NewService(userRepo, user.NewCredentialsValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, middlewares.GetAllAndClear())

	deviceRepo := postgres.NewDeviceRepository(storage, log)
	deviceService := device.NewService(deviceRepo, sessionService, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	deviceHandler := deviceAPI.NewHandler(deviceService, sessionService, log, middlewares.GetAllAndClear())

	syncRepo := postgres.NewSyncDataRepository(storage, log)
	syncService := syncdata.NewService(syncRepo, log, syncdata.ServiceConfig{
		SlotCount:   cfg.Relay.SlotCount,
		MaxBlobSize: cfg.Relay.MaxBlobSize,
	})

	hub := relay.NewHub(log)
	relayService := relay.NewService(syncService, hub, log)
	relayCfg := relay.Config{
		SendBuffer:        cfg.Relay.SendBuffer,
		HeartbeatInterval: cfg.Relay.HeartbeatInterval,
		ReadTimeout:       cfg.Relay.ReadTimeout,
		// Запас поверх blob-а на служебные поля сообщения
		MaxMessageSize: int64(cfg.Relay.MaxBlobSize) + 4096,
	}
	wsHandler := relay.NewHandler(hub, relayService, sessionService, deviceService, relayCfg, log)

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(syncService, relayService, log, middlewares.GetAllAndClear())

	linkRepo := postgres.NewLinkRepository(storage, log)
	linkService := link.NewService(linkRepo, log, cfg.Relay.LinkCodeTTL)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	linkHandler := linkAPI.NewHandler(linkService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Device: deviceHandler,
		Sync:   syncHandler,
		Link:   linkHandler,
		WS:     wsHandler,
	}
}
