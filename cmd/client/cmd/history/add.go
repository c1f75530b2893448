// cmd/client/cmd/history/add.go
package history

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var addFromStdin bool

var AddCmd = &cobra.Command{
	Use:   "add [текст]",
	Short: "Добавить текст в историю",
	Long: `Добавляет текст в историю напрямую, без записи в слот.
Повторное добавление того же текста ничего не меняет.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		var text string
		if addFromStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("ошибка чтения stdin: %w", err)
			}
			text = string(data)
		} else {
			if len(args) == 0 {
				return fmt.Errorf("укажите текст аргументом или используйте --stdin")
			}
			text = strings.Join(args, " ")
		}

		if text == "" {
			return fmt.Errorf("нечего добавлять: текст пуст")
		}

		if err := app.PushHistory(cmd.Context(), text); err != nil {
			return fmt.Errorf("ошибка добавления в историю: %w", err)
		}

		fmt.Println("✓ Добавлено в историю")
		return nil
	},
}

func init() {
	AddCmd.Flags().BoolVar(&addFromStdin, "stdin", false, "читать текст из stdin")
}
