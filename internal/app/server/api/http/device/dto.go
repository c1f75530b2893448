package device

import (
	"github.com/google/uuid"

	"clipsync/internal/domain/device"
)

type registerInput struct {
	Body RegisterRequest
}

type RegisterRequest struct {
	Name string `json:"name" doc:"Имя устройства" example:"MacBook Pro"`
	Kind string `json:"kind" doc:"Платформа устройства" example:"macos"`
}

type registerOutput struct {
	Body RegisterResponse
}

// RegisterResponse содержит токен, привязанный к устройству.
// Именно им устройство подключается к WebSocket-релею.
type RegisterResponse struct {
	DeviceID uuid.UUID `json:"device_id"`
	Token    string    `json:"token"`
	Status   string    `json:"status"`
}

type listOutput struct {
	Body ListResponse
}

type ListResponse struct {
	Devices []device.Device `json:"devices"`
	Status  string          `json:"status"`
}

type revokeInput struct {
	ID uuid.UUID `path:"id" doc:"ID устройства"`
}

type revokeOutput struct {
	Body StatusResponse
}

type StatusResponse struct {
	Status string `json:"status"`
}
