// cmd/client/cmd/slot/get.go
package slot

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var GetCmd = &cobra.Command{
	Use:   "get <номер>",
	Short: "Прочитать содержимое слота",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		number, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("некорректный номер слота: %q", args[0])
		}

		view, err := app.GetSlot(number)
		if err != nil {
			return err
		}

		// Только содержимое, чтобы вывод можно было пайпить
		fmt.Print(view.Text)
		return nil
	},
}
