package history

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

// HistoryCmd - родительская команда для работы с историей буфера обмена
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Работа с историей буфера обмена",
	Long: `История хранит прошлые копирования. Элементы дедуплицируются
по содержимому, удаление распространяется на все устройства.`,
}

func appFromContext(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
