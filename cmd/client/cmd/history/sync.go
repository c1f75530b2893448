// cmd/client/cmd/history/sync.go
package history

import (
	"fmt"

	"github.com/spf13/cobra"
)

var SyncCmd = &cobra.Command{
	Use:   "sync <on|off>",
	Short: "Включить или выключить синхронизацию истории",
	Long: `Управляет синхронизацией истории для этого устройства.
Слоты синхронизируются всегда, эта настройка касается только истории.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("ожидается on или off, получено %q", args[0])
		}

		if err := app.SetHistorySync(enabled); err != nil {
			return fmt.Errorf("ошибка изменения настройки: %w", err)
		}

		if enabled {
			fmt.Println("✓ Синхронизация истории включена")
		} else {
			fmt.Println("✓ Синхронизация истории выключена")
		}
		return nil
	},
}
