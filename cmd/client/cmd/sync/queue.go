// cmd/client/cmd/sync/queue.go
package sync

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// QueueCmd показывает недоставленные мутации и dead-letter элементы
var QueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Состояние очереди доставки",
	Long: `Показывает недоставленные мутации. Элементы, исчерпавшие
попытки доставки, помечаются как dead-letter: они не ретраятся
автоматически, но и не удаляются без вашего решения.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		pending, err := app.QueueLen()
		if err != nil {
			return fmt.Errorf("ошибка чтения очереди: %w", err)
		}
		fmt.Printf("В очереди на доставку: %d\n", pending)

		dead, err := app.DeadLetters()
		if err != nil {
			return fmt.Errorf("ошибка чтения dead-letter: %w", err)
		}
		if len(dead) == 0 {
			return nil
		}

		fmt.Println()
		color.Yellow("Недоставленные после всех попыток:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Seq\tТип\tПопыток\tСоздан\t\n")
		for _, item := range dead {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t\n",
				item.Seq, item.Kind, item.Attempts,
				time.UnixMilli(item.CreatedAt).Format("2006-01-02 15:04"))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("Повторить:  clipsync sync retry <seq>")
		fmt.Println("Отбросить:  clipsync sync discard <seq>")
		return nil
	},
}

// RetryCmd возвращает dead-letter мутацию в очередь
var RetryCmd = &cobra.Command{
	Use:   "retry <seq>",
	Short: "Повторить доставку dead-letter мутации",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный номер элемента: %q", args[0])
		}

		if err := app.RetryDead(seq); err != nil {
			return fmt.Errorf("ошибка возврата в очередь: %w", err)
		}

		fmt.Println("✓ Элемент вернулся в очередь")
		return nil
	},
}

// DiscardCmd окончательно удаляет dead-letter мутацию
var DiscardCmd = &cobra.Command{
	Use:   "discard <seq>",
	Short: "Отбросить dead-letter мутацию",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный номер элемента: %q", args[0])
		}

		if err := app.DiscardDead(seq); err != nil {
			return fmt.Errorf("ошибка удаления: %w", err)
		}

		fmt.Println("✓ Элемент отброшен")
		return nil
	},
}
