package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	// Токен без привязки к устройству живет сутки — за это время
	// клиент должен зарегистрировать устройство и получить долгий токен.
	userTokenTTL = 24 * time.Hour

	// Токен устройства живет неделю
	deviceTokenTTL = 7 * 24 * time.Hour
)

type Servicer interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	CreateForDevice(ctx context.Context, userID, deviceID uuid.UUID) (string, error)
	Validate(ctx context.Context, token string) (Identity, error)
	RevokeDevice(ctx context.Context, deviceID uuid.UUID) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Create выдает токен, привязанный только к пользователю
func (s *Service) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.create(ctx, userID, uuid.Nil, userTokenTTL)
}

// CreateForDevice выдает токен, привязанный к пользователю и устройству
func (s *Service) CreateForDevice(ctx context.Context, userID, deviceID uuid.UUID) (string, error) {
	return s.create(ctx, userID, deviceID, deviceTokenTTL)
}

func (s *Service) create(ctx context.Context, userID, deviceID uuid.UUID, ttl time.Duration) (string, error) {
	// Генерация токена
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)
	tokenHash := sha256.Sum256([]byte(token))

	expiresAt := time.Now().Add(ttl)
	if err := s.repo.Create(ctx, userID, deviceID, hex.EncodeToString(tokenHash[:]), expiresAt); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return token, nil
}

// Validate проверяет токен и возвращает идентичность владельца
func (s *Service) Validate(ctx context.Context, token string) (Identity, error) {
	tokenHash := sha256.Sum256([]byte(token))

	identity, err := s.repo.Validate(ctx, hex.EncodeToString(tokenHash[:]))
	if err != nil {
		return Identity{}, ErrInvalidSession
	}
	return identity, nil
}

// RevokeDevice удаляет все сессии устройства (при отзыве устройства)
func (s *Service) RevokeDevice(ctx context.Context, deviceID uuid.UUID) error {
	return s.repo.DeleteByDevice(ctx, deviceID)
}
