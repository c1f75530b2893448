// cmd/client/cmd/history/delete.go
package history

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить элемент истории",
	Long: `Удаляет элемент истории на всех устройствах. Удаление
перебивается только более поздней перезаписью того же элемента.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("некорректный идентификатор элемента: %w", err)
		}

		if err := app.DeleteHistory(cmd.Context(), id); err != nil {
			return fmt.Errorf("ошибка удаления: %w", err)
		}

		fmt.Println("✓ Элемент удален")
		return nil
	},
}
