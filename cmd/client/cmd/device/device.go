package device

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

// DeviceCmd - родительская команда для операций с устройствами
var DeviceCmd = &cobra.Command{
	Use:   "devices",
	Short: "Управление устройствами",
	Long:  `Регистрация, просмотр и отзыв устройств аккаунта.`,
}

func appFromContext(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
