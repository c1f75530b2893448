package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listSlotsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-slots-list",
		Method:      http.MethodGet,
		Path:        "/api/sync/slots",
		Summary:     "Все занятые слоты пользователя",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateSlotOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-slots-update",
		Method:      http.MethodPut,
		Path:        "/api/sync/slots/{number}",
		Summary:     "Записать слот",
		Description: "Сохраняет зашифрованное содержимое слота и рассылает slot_updated остальным подключенным устройствам.",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listHistoryOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-history-list",
		Method:      http.MethodGet,
		Path:        "/api/sync/history",
		Summary:     "Страница истории, новые сначала",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) pushHistoryOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-history-push",
		Method:      http.MethodPost,
		Path:        "/api/sync/history",
		Summary:     "Добавить элемент истории",
		Description: "Дедупликация по content_hash: повторная отправка того же текста возвращает 200 без вставки и рассылки.",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteHistoryOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-history-delete",
		Method:      http.MethodDelete,
		Path:        "/api/sync/history/{id}",
		Summary:     "Удалить элемент истории",
		Description: "Удаляет элемент и рассылает history_deleted с таймстемпом удаления.",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
