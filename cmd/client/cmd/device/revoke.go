// cmd/client/cmd/device/revoke.go
package device

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var RevokeCmd = &cobra.Command{
	Use:   "revoke <device-id>",
	Short: "Отозвать устройство",
	Long: `Отзывает устройство и все его сессии. Отозванное устройство
теряет доступ к аккаунту немедленно; его локальные данные остаются
только у него.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("некорректный идентификатор устройства: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.RevokeDevice(ctx, id); err != nil {
			return fmt.Errorf("ошибка отзыва устройства: %w", err)
		}

		fmt.Println("✓ Устройство отозвано")
		return nil
	},
}
