package slot

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

// SlotCmd - родительская команда для работы со слотами буфера обмена
var SlotCmd = &cobra.Command{
	Use:   "slot",
	Short: "Работа со слотами буфера обмена",
	Long: `Пронумерованные слоты — это именованные ячейки буфера обмена,
синхронизируемые между устройствами. Запись в слот на одном
устройстве появляется на остальных.`,
}

func appFromContext(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
