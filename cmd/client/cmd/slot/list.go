// cmd/client/cmd/slot/list.go
package slot

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const previewLen = 60

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список непустых слотов",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		slots, err := app.ListSlots()
		if err != nil {
			return fmt.Errorf("ошибка получения слотов: %w", err)
		}

		if len(slots) == 0 {
			fmt.Println("Все слоты пусты")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Слот\tСодержимое\tОбновлен\t\n")
		for _, s := range slots {
			fmt.Fprintf(w, "%d\t%s\t%s\t\n",
				s.SlotNumber, preview(s.Text), s.UpdatedAt.Format("2006-01-02 15:04"))
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
