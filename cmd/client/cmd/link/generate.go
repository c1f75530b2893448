// cmd/client/cmd/link/generate.go
package link

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Создать одноразовый код для нового устройства",
	Long: `Создает одноразовый код передачи мастер-ключа.

Введите этот код на новом устройстве:
  clipsync link redeem

Код показывается один раз и действует пять минут.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		code, expiresAt, err := app.LinkGenerate(ctx)
		if err != nil {
			return fmt.Errorf("ошибка создания кода: %w", err)
		}

		fmt.Println("=== Код подключения устройства ===")
		fmt.Println()
		fmt.Printf("    %s\n", color.New(color.Bold, color.FgCyan).Sprint(code))
		fmt.Println()
		fmt.Printf("Действует до %s, одно использование.\n", expiresAt.Local().Format("15:04:05"))
		fmt.Println("Никому не передавайте код, кроме своего устройства.")

		return nil
	},
}
