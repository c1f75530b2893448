// cmd/client/cmd/init.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/auth"
	"clipsync/cmd/client/cmd/device"
	"clipsync/cmd/client/cmd/history"
	"clipsync/cmd/client/cmd/link"
	"clipsync/cmd/client/cmd/slot"
	"clipsync/cmd/client/cmd/sync"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Состояние клиента",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Println("=== ClipSync ===")
		fmt.Printf("Сервер: %s\n", cfg.ServerURL)

		if app.IsAuthenticated() {
			color.Green("Вход выполнен")
		} else {
			color.Yellow("Вход не выполнен: clipsync auth login")
		}

		if id, err := app.DeviceID(); err == nil {
			fmt.Printf("Устройство: %s\n", id)
		} else {
			color.Yellow("Устройство не зарегистрировано: clipsync devices register")
		}

		if queued, err := app.QueueLen(); err == nil && queued > 0 {
			fmt.Printf("В очереди на доставку: %d\n", queued)
		}
		if dead, err := app.DeadLetters(); err == nil && len(dead) > 0 {
			color.Red("Недоставленных мутаций: %d (clipsync sync queue)", len(dead))
		}
		if quarantined, err := app.Quarantined(); err == nil && len(quarantined) > 0 {
			color.Red("Элементов в карантине: %d", len(quarantined))
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := app.CheckConnection(ctx); err != nil {
			color.Yellow("Сервер недоступен: %v", err)
		} else {
			color.Green("Соединение с сервером установлено")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	rootCmd.AddCommand(device.DeviceCmd)
	device.DeviceCmd.AddCommand(device.RegisterCmd)
	device.DeviceCmd.AddCommand(device.ListCmd)
	device.DeviceCmd.AddCommand(device.RevokeCmd)

	rootCmd.AddCommand(slot.SlotCmd)
	slot.SlotCmd.AddCommand(slot.SetCmd)
	slot.SlotCmd.AddCommand(slot.GetCmd)
	slot.SlotCmd.AddCommand(slot.ListCmd)

	rootCmd.AddCommand(history.HistoryCmd)
	history.HistoryCmd.AddCommand(history.ListCmd)
	history.HistoryCmd.AddCommand(history.AddCmd)
	history.HistoryCmd.AddCommand(history.DeleteCmd)
	history.HistoryCmd.AddCommand(history.SyncCmd)

	rootCmd.AddCommand(link.LinkCmd)
	link.LinkCmd.AddCommand(link.GenerateCmd)
	link.LinkCmd.AddCommand(link.RedeemCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.QueueCmd)
	sync.SyncCmd.AddCommand(sync.RetryCmd)
	sync.SyncCmd.AddCommand(sync.DiscardCmd)

	rootCmd.AddCommand(statusCmd)
}
