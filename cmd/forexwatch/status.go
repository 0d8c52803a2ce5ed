package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/raykavin/forexwatch/pkg/config"
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/storage"
)

func buildStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show dispatched alerts from the alert log",
		RunE:  runStatus,
	}

	statusCmd.Flags().StringVarP(&statusPair, "pair", "p", "", "Filter by currency pair, e.g. EUR/USD")
	statusCmd.Flags().StringVarP(&statusType, "type", "t", "", "Filter by event type, e.g. price_spike")
	statusCmd.Flags().StringVarP(&statusSince, "since", "d", "24h", "Only alerts newer than this, e.g. 30m, 7d")

	return statusCmd
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	window, err := str2duration.ParseDuration(statusSince)
	if err != nil {
		return fmt.Errorf("invalid --since value: %w", err)
	}

	alertLog, err := storage.FromFile(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer alertLog.Close()

	filters := []core.AlertFilter{core.CreatedSince(time.Now().Add(-window))}
	if statusPair != "" {
		filters = append(filters, core.WithPair(statusPair))
	}
	if statusType != "" {
		eventType := core.EventType(statusType)
		if !eventType.Valid() {
			return fmt.Errorf("unknown event type: %s", statusType)
		}
		filters = append(filters, core.WithType(eventType))
	}

	alerts, err := alertLog.Alerts(filters...)
	if err != nil {
		return err
	}

	if len(alerts) == 0 {
		fmt.Println("No alerts match the given filters.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Type", "Pair", "Change", "Call ID", "Message"})

	for _, alert := range alerts {
		table.Append([]string{
			alert.CreatedAt.Format("2006-01-02 15:04:05"),
			string(alert.Type),
			alert.Pair,
			fmt.Sprintf("%.2f%%", alert.Change),
			alert.CallID,
			alert.String(),
		})
	}

	table.Render()
	return nil
}
