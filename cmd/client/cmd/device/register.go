// cmd/client/cmd/device/register.go
package device

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
)

var (
	deviceName string
	deviceKind string
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать это устройство",
	Long: `Регистрирует текущее устройство в аккаунте и получает
привязанный к нему токен. Только зарегистрированное устройство
может менять слоты и подключаться к синхронизации.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated() {
			return fmt.Errorf("требуется вход: clipsync auth login")
		}

		name := deviceName
		if name == "" {
			if hostname, err := os.Hostname(); err == nil {
				name = hostname
			} else {
				name = "device"
			}
		}

		kind := deviceKind
		if kind == "" {
			kind = runtime.GOOS
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.RegisterDevice(ctx, name, kind); err != nil {
			return fmt.Errorf("ошибка регистрации устройства: %w", err)
		}

		fmt.Printf("✅ Устройство %q зарегистрировано\n", name)
		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVar(&deviceName, "name", "", "имя устройства (по умолчанию hostname)")
	RegisterCmd.Flags().StringVar(&deviceKind, "kind", "", "платформа устройства (по умолчанию текущая ОС)")
}
