package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const maxNameLen = 64

// SessionRevoker отзывает сессии удаленного устройства
type SessionRevoker interface {
	RevokeDevice(ctx context.Context, deviceID uuid.UUID) error
}

type Servicer interface {
	// Register регистрирует новое устройство пользователя
	Register(ctx context.Context, userID uuid.UUID, name, kind string) (uuid.UUID, error)

	// List возвращает устройства пользователя
	List(ctx context.Context, userID uuid.UUID) ([]Device, error)

	// Revoke удаляет устройство и отзывает его сессии
	Revoke(ctx context.Context, userID, deviceID uuid.UUID) error

	// Touch обновляет отметку последней активности устройства
	Touch(ctx context.Context, deviceID uuid.UUID)
}

type Service struct {
	repo     Repository
	sessions SessionRevoker
	log      *slog.Logger
}

func NewService(repo Repository, sessions SessionRevoker, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		log:      log,
	}
}

// Register регистрирует новое устройство пользователя
func (s *Service) Register(ctx context.Context, userID uuid.UUID, name, kind string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return uuid.Nil, fmt.Errorf("%w: device name", ErrInvalidInput)
	}

	id, err := s.repo.Create(ctx, userID, name, kind)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create device: %w", err)
	}

	s.log.Info("device registered", "user_id", userID, "device_id", id, "name", name)
	return id, nil
}

// List возвращает устройства пользователя
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Device, error) {
	devices, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// Revoke удаляет устройство и отзывает его сессии.
// Репозиторий проверяет принадлежность устройства пользователю.
func (s *Service) Revoke(ctx context.Context, userID, deviceID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, deviceID); err != nil {
		return err
	}

	if err := s.sessions.RevokeDevice(ctx, deviceID); err != nil {
		s.log.Warn("failed to revoke device sessions", "device_id", deviceID, "error", err)
	}

	s.log.Info("device revoked", "user_id", userID, "device_id", deviceID)
	return nil
}

// Touch обновляет отметку последней активности устройства.
// Ошибка не критична для запроса, поэтому только логируется.
func (s *Service) Touch(ctx context.Context, deviceID uuid.UUID) {
	if err := s.repo.Touch(ctx, deviceID); err != nil {
		s.log.Debug("failed to touch device", "device_id", deviceID, "error", err)
	}
}
