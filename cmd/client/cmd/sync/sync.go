package sync

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

// SyncCmd запускает движок синхронизации в реальном времени
var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация в реальном времени",
	Long: `Подключается к релею и синхронизирует слоты и историю
до прерывания (Ctrl+C). При обрыве связи переподключается
с экспоненциальной задержкой.

Для разового прогона очереди без подключения используйте
clipsync sync --once.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated() {
			return fmt.Errorf("требуется вход: clipsync auth login")
		}
		if !app.HasDevice() {
			return fmt.Errorf("устройство не зарегистрировано: clipsync devices register")
		}

		if syncOnce {
			if err := app.SyncOnce(cmd.Context()); err != nil {
				return fmt.Errorf("ошибка доставки очереди: %w", err)
			}
			fmt.Println("✓ Очередь доставлена")
			return nil
		}

		fmt.Println("Синхронизация запущена, Ctrl+C для остановки")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err = app.RunSync(ctx)
		if errors.Is(err, context.Canceled) {
			fmt.Println("Синхронизация остановлена")
			return nil
		}
		return err
	},
}

var syncOnce bool

func appFromContext(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

func init() {
	SyncCmd.Flags().BoolVar(&syncOnce, "once", false, "прогнать очередь один раз и выйти")
}
