// cmd/client/cmd/history/list.go
package history

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	limit  int
	offset int
)

const previewLen = 60

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список элементов истории",
	Long:  `Просмотр истории копирований, новые сначала. Пагинация через --limit и --offset.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		items, err := app.History(limit, offset)
		if err != nil {
			return fmt.Errorf("ошибка получения истории: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("История пуста")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tСодержимое\tСоздан\t\n")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t\n",
				item.ID, preview(item.Text), item.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func preview(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len([]rune(text)) > previewLen {
		return string([]rune(text)[:previewLen]) + "…"
	}
	return text
}

func init() {
	ListCmd.Flags().IntVar(&limit, "limit", 50, "размер страницы")
	ListCmd.Flags().IntVar(&offset, "offset", 0, "смещение от начала")
}
