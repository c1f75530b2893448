package link

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	defaultTTL    = 5 * time.Minute
	codeHashLen   = 64        // sha256 в hex
	maxPayloadLen = 16 * 1024 // salt и encrypted_key в base64
)

type Servicer interface {
	// Create сохраняет сессию обмена ключом и возвращает срок ее действия
	Create(ctx context.Context, userID uuid.UUID, codeHash, salt, encryptedKey string) (time.Time, error)

	// Redeem одноразово выдает зашифрованный ключ по хешу кода
	Redeem(ctx context.Context, userID uuid.UUID, codeHash string) (Payload, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
	ttl  time.Duration
}

func NewService(repo Repository, log *slog.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{
		repo: repo,
		log:  log,
		ttl:  ttl,
	}
}

// Create сохраняет сессию обмена ключом и возвращает срок ее действия.
// Код генерируется на клиенте, сервер видит только его sha256.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, codeHash, salt, encryptedKey string) (time.Time, error) {
	if !validCodeHash(codeHash) {
		return time.Time{}, fmt.Errorf("%w: code_hash", ErrInvalidInput)
	}
	if salt == "" || encryptedKey == "" {
		return time.Time{}, fmt.Errorf("%w: salt and encrypted_key required", ErrInvalidInput)
	}
	if len(salt) > maxPayloadLen || len(encryptedKey) > maxPayloadLen {
		return time.Time{}, fmt.Errorf("%w: payload too large", ErrInvalidInput)
	}

	// Попутно вычищаем просроченные сессии
	if err := s.repo.DeleteExpired(ctx); err != nil {
		s.log.Warn("failed to clean up expired link sessions", "error", err)
	}

	now := time.Now()
	session := Session{
		CodeHash:     codeHash,
		UserID:       userID,
		Salt:         salt,
		EncryptedKey: encryptedKey,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return time.Time{}, fmt.Errorf("create link session: %w", err)
	}

	s.log.Info("link session created", "user_id", userID, "expires_at", session.ExpiresAt)
	return session.ExpiresAt, nil
}

// Redeem одноразово выдает зашифрованный ключ по хешу кода.
// Неизвестный, чужой, просроченный и использованный код неразличимы.
func (s *Service) Redeem(ctx context.Context, userID uuid.UUID, codeHash string) (Payload, error) {
	if !validCodeHash(codeHash) {
		return Payload{}, ErrCodeInvalid
	}

	payload, err := s.repo.Consume(ctx, userID, codeHash)
	if err != nil {
		return Payload{}, err
	}

	s.log.Info("link code redeemed", "user_id", userID)
	return payload, nil
}

func validCodeHash(codeHash string) bool {
	if len(codeHash) != codeHashLen {
		return false
	}
	_, err := hex.DecodeString(codeHash)
	return err == nil
}
