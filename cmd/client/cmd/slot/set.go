// cmd/client/cmd/slot/set.go
package slot

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var setFromStdin bool

var SetCmd = &cobra.Command{
	Use:   "set <номер> [текст]",
	Short: "Записать текст в слот",
	Long: `Записывает текст в слот. Текст передается аргументом
или через stdin с флагом --stdin.

Прежнее содержимое слота сохраняется в историю. Если сервер
недоступен, изменение встанет в очередь и доставится позже.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		number, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("некорректный номер слота: %q", args[0])
		}

		var text string
		if setFromStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("ошибка чтения stdin: %w", err)
			}
			text = string(data)
		} else {
			if len(args) < 2 {
				return fmt.Errorf("укажите текст аргументом или используйте --stdin")
			}
			text = strings.Join(args[1:], " ")
		}

		if text == "" {
			return fmt.Errorf("нечего записывать: текст пуст")
		}

		if err := app.SetSlot(cmd.Context(), number, text); err != nil {
			return fmt.Errorf("ошибка записи в слот: %w", err)
		}

		queued, _ := app.QueueLen()
		if queued > 0 {
			fmt.Printf("✓ Слот %d записан (в очереди на доставку: %d)\n", number, queued)
		} else {
			fmt.Printf("✓ Слот %d записан и синхронизирован\n", number)
		}
		return nil
	},
}

func init() {
	SetCmd.Flags().BoolVar(&setFromStdin, "stdin", false, "читать текст из stdin")
}
