package link

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

// LinkCmd - родительская команда для передачи мастер-ключа
var LinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Передача мастер-ключа между устройствами",
	Long: `Одноразовые коды для передачи мастер-ключа на новое устройство.
Код действует пять минут и сгорает после первого использования.
Сервер видит только хеш кода и не может расшифровать ключ.`,
}

func appFromContext(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
