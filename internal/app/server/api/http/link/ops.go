package link

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "link-create",
		Method:      http.MethodPost,
		Path:        "/api/link/code",
		Summary:     "Открыть сессию передачи ключа",
		Description: "Сохраняет мастер-ключ, зашифрованный ключом из короткого кода. Сессия живет пять минут и сгорает после первого обмена.",
		Tags:        []string{"link"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) redeemOp() huma.Operation {
	return huma.Operation{
		OperationID: "link-redeem",
		Method:      http.MethodPost,
		Path:        "/api/link/redeem",
		Summary:     "Обменять код на зашифрованный ключ",
		Tags:        []string{"link"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
