// cmd/client/cmd/device/list.go
package device

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список устройств аккаунта",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		devices, err := app.Devices(ctx)
		if err != nil {
			return fmt.Errorf("ошибка получения списка устройств: %w", err)
		}

		if len(devices) == 0 {
			fmt.Println("Устройства не зарегистрированы")
			return nil
		}

		currentID, _ := app.DeviceID()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tИмя\tПлатформа\tПоследняя активность\t\n")
		for _, d := range devices {
			name := d.Name
			if d.ID.String() == currentID {
				name = color.GreenString("%s (это устройство)", name)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				d.ID, name, d.Kind, d.LastSeen.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}
