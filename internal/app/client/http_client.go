package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/config"
	"clipsync/internal/app/client/syncerr"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/syncdata"
	"clipsync/internal/protocol"
)

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log,
		baseURL:   cfg.ServerURL,
		userAgent: "ClipSync-Client/1.0",
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, "GET", "/api/health", nil)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

// Register создает аккаунт и возвращает пользовательский токен
func (h *httpClient) Register(ctx context.Context, email, password string) (uuid.UUID, string, error) {
	return h.auth(ctx, "/api/user/register", email, password)
}

// Login возвращает пользовательский токен по паролю
func (h *httpClient) Login(ctx context.Context, email, password string) (uuid.UUID, string, error) {
	return h.auth(ctx, "/api/user/login", email, password)
}

func (h *httpClient) auth(ctx context.Context, path, email, password string) (uuid.UUID, string, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	resp, err := h.doRequest(ctx, "POST", path, req)
	if err != nil {
		return uuid.Nil, "", err
	}

	var authResp struct {
		UserID uuid.UUID `json:"user_id"`
		Token  string    `json:"token"`
	}
	if err := h.parseResponse(resp, &authResp); err != nil {
		return uuid.Nil, "", err
	}

	h.token = authResp.Token
	return authResp.UserID, authResp.Token, nil
}

// RegisterDevice регистрирует устройство и возвращает привязанный
// к нему токен. Дальше клиент работает только с device-токеном.
func (h *httpClient) RegisterDevice(ctx context.Context, name, kind string) (uuid.UUID, string, error) {
	req := struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}{Name: name, Kind: kind}

	resp, err := h.doRequest(ctx, "POST", "/api/devices", req)
	if err != nil {
		return uuid.Nil, "", err
	}

	var devResp struct {
		DeviceID uuid.UUID `json:"device_id"`
		Token    string    `json:"token"`
	}
	if err := h.parseResponse(resp, &devResp); err != nil {
		return uuid.Nil, "", err
	}

	return devResp.DeviceID, devResp.Token, nil
}

// ListDevices возвращает все устройства аккаунта
func (h *httpClient) ListDevices(ctx context.Context) ([]device.Device, error) {
	resp, err := h.doRequest(ctx, "GET", "/api/devices", nil)
	if err != nil {
		return nil, err
	}

	var listResp struct {
		Devices []device.Device `json:"devices"`
	}
	if err := h.parseResponse(resp, &listResp); err != nil {
		return nil, err
	}
	return listResp.Devices, nil
}

// RevokeDevice отзывает устройство и все его сессии
func (h *httpClient) RevokeDevice(ctx context.Context, id uuid.UUID) error {
	resp, err := h.doRequest(ctx, "DELETE", "/api/devices/"+id.String(), nil)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

// GetSlots возвращает серверное состояние всех слотов
func (h *httpClient) GetSlots(ctx context.Context) ([]syncdata.Slot, error) {
	resp, err := h.doRequest(ctx, "GET", "/api/sync/slots", nil)
	if err != nil {
		return nil, err
	}

	var slotsResp struct {
		Slots []syncdata.Slot `json:"slots"`
	}
	if err := h.parseResponse(resp, &slotsResp); err != nil {
		return nil, err
	}
	return slotsResp.Slots, nil
}

// GetHistory возвращает страницу истории, новые сначала
func (h *httpClient) GetHistory(ctx context.Context, limit, offset int) ([]syncdata.HistoryItem, error) {
	path := fmt.Sprintf("/api/sync/history?limit=%d&offset=%d", limit, offset)
	resp, err := h.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var histResp struct {
		Items []syncdata.HistoryItem `json:"items"`
	}
	if err := h.parseResponse(resp, &histResp); err != nil {
		return nil, err
	}
	return histResp.Items, nil
}

// SendSlotUpdate пишет слот через REST. Успех — это ack для очереди.
func (h *httpClient) SendSlotUpdate(ctx context.Context, msg protocol.SlotUpdate) error {
	req := struct {
		EncryptedBlob string `json:"encrypted_blob"`
		Timestamp     int64  `json:"timestamp"`
	}{EncryptedBlob: msg.EncryptedBlob, Timestamp: msg.Timestamp}

	path := fmt.Sprintf("/api/sync/slots/%d", msg.SlotNumber)
	resp, err := h.doRequest(ctx, "PUT", path, req)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

// SendHistoryPush отправляет элемент истории. ID фиксирован клиентом,
// поэтому повторная отправка после сбоя дедуплицируется сервером.
func (h *httpClient) SendHistoryPush(ctx context.Context, msg protocol.HistoryPush) error {
	req := struct {
		ID            uuid.UUID `json:"id"`
		EncryptedBlob string    `json:"encrypted_blob"`
		ContentHash   string    `json:"content_hash"`
	}{ID: msg.ID, EncryptedBlob: msg.EncryptedBlob, ContentHash: msg.ContentHash}

	resp, err := h.doRequest(ctx, "POST", "/api/sync/history", req)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

// SendHistoryDelete отправляет tombstone. Отсутствие элемента на
// сервере считается успехом: удалять больше нечего.
func (h *httpClient) SendHistoryDelete(ctx context.Context, msg protocol.HistoryDelete) error {
	path := fmt.Sprintf("/api/sync/history/%s?timestamp=%d", msg.ID, msg.Timestamp)
	resp, err := h.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil
	}
	return h.parseResponse(resp, nil)
}

// LinkCreate загружает зашифрованный мастер-ключ для передачи
// на новое устройство
func (h *httpClient) LinkCreate(ctx context.Context, codeHash, salt, encryptedKey string) (time.Time, error) {
	req := struct {
		CodeHash     string `json:"code_hash"`
		Salt         string `json:"salt"`
		EncryptedKey string `json:"encrypted_key"`
	}{CodeHash: codeHash, Salt: salt, EncryptedKey: encryptedKey}

	resp, err := h.doRequest(ctx, "POST", "/api/link/code", req)
	if err != nil {
		return time.Time{}, err
	}

	var createResp struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := h.parseResponse(resp, &createResp); err != nil {
		return time.Time{}, err
	}
	return createResp.ExpiresAt, nil
}

// LinkRedeem обменивает хеш кода на зашифрованный мастер-ключ
func (h *httpClient) LinkRedeem(ctx context.Context, codeHash string) (salt, encryptedKey string, err error) {
	req := struct {
		CodeHash string `json:"code_hash"`
	}{CodeHash: codeHash}

	resp, err := h.doRequest(ctx, "POST", "/api/link/redeem", req)
	if err != nil {
		return "", "", err
	}

	// Неизвестный, просроченный, уже использованный код и превышение
	// лимита попыток неразличимы для пользователя
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return "", "", syncerr.ErrCodeInvalid
	}

	var redeemResp struct {
		Salt         string `json:"salt"`
		EncryptedKey string `json:"encrypted_key"`
	}
	if err := h.parseResponse(resp, &redeemResp); err != nil {
		return "", "", err
	}
	return redeemResp.Salt, redeemResp.EncryptedKey, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", syncerr.ErrTransport, err)
	}

	return resp, nil
}

// parseResponse разбирает ответ и приводит HTTP-статусы к ошибкам
// движка: 401 фатален для сессии, 5xx — временный сбой транспорта.
func (h *httpClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: чтение ответа: %v", syncerr.ErrTransport, err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return syncerr.ErrAuth
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: сервер вернул статус %d", syncerr.ErrTransport, resp.StatusCode)
	case resp.StatusCode >= 400:
		var errResp struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("ошибка сервера: %s", errResp.Detail)
		}
		return fmt.Errorf("ошибка сервера: статус %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}
