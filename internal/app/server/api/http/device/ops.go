package device

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID: "devices-register",
		Method:      http.MethodPost,
		Path:        "/api/devices",
		Summary:     "Зарегистрировать устройство",
		Description: "Возвращает токен, привязанный к устройству. Он нужен для подключения к WebSocket-релею и мутаций синхронизации.",
		Tags:        []string{"devices"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "devices-list",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "Список устройств пользователя",
		Tags:        []string{"devices"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) revokeOp() huma.Operation {
	return huma.Operation{
		OperationID: "devices-revoke",
		Method:      http.MethodDelete,
		Path:        "/api/devices/{id}",
		Summary:     "Отозвать устройство",
		Description: "Удаляет устройство и отзывает его сессии. Устройство теряет доступ при следующем обращении.",
		Tags:        []string{"devices"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
