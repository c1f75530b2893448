// cmd/client/cmd/link/redeem.go
package link

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var RedeemCmd = &cobra.Command{
	Use:   "redeem",
	Short: "Получить мастер-ключ по коду",
	Long: `Обменивает одноразовый код на мастер-ключ аккаунта.
Код создается на уже подключенном устройстве командой
clipsync link generate.

Внимание: полученный ключ заменяет локальный мастер-ключ.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated() {
			return fmt.Errorf("требуется вход: clipsync auth login")
		}

		fmt.Print("Код с другого устройства: ")
		var code string
		_, _ = fmt.Scanln(&code)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.LinkRedeem(ctx, code); err != nil {
			return fmt.Errorf("ошибка получения ключа: %w", err)
		}

		fmt.Println()
		fmt.Println("✅ Мастер-ключ получен, устройство готово к синхронизации")
		return nil
	},
}
