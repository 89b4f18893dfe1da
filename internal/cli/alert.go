package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tradedesk/internal/engine"
	"tradedesk/internal/store"
)

func newAlertCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Price alert management",
		Long: `Manage price alerts. Alerts are display-only watches: the market price
next to each alert is refreshed on every tick of the symbol, but nothing
fires when the alert price is crossed.`,
	}

	cmd.AddCommand(newAlertAddCmd(app))
	cmd.AddCommand(newAlertListCmd(app))
	cmd.AddCommand(newAlertRemoveCmd(app))
	cmd.AddCommand(newAlertClearCmd(app))

	return cmd
}

func newAlertAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <symbol> <price>",
		Short: "Add a price alert",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				symbol := strings.ToUpper(args[0])
				var price float64
				if _, err := fmt.Sscanf(args[1], "%f", &price); err != nil {
					return fmt.Errorf("invalid price %q", args[1])
				}

				alert := eng.AddAlert(symbol, price)

				if output.IsJSON() {
					return output.JSON(alert)
				}
				output.Success("Watching %s at %.5f (id %s)", alert.Symbol, alert.AlertPrice, alert.ID)
				return nil
			})
		},
	}
}

func newAlertListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List price alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				alerts := eng.Alerts()

				if output.IsJSON() {
					return output.JSON(alerts)
				}

				if len(alerts) == 0 {
					output.Dim("No alerts.")
					return nil
				}

				table := NewTable(output, "ID", "SYMBOL", "ALERT PRICE", "MARKET PRICE", "CREATED")
				for _, a := range alerts {
					table.AddRow(
						a.ID,
						a.Symbol,
						fmt.Sprintf("%.5f", a.AlertPrice),
						fmt.Sprintf("%.5f", a.MarketPrice),
						a.CreatedAt.Format("02 Jan 15:04"),
					)
				}
				table.Render()
				return nil
			})
		},
	}
}

func newAlertRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <alert-id>",
		Short: "Remove a price alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				removed := eng.RemoveAlert(args[0])

				if output.IsJSON() {
					return output.JSON(map[string]bool{"removed": removed})
				}
				if removed {
					output.Success("Removed alert %s", args[0])
				} else {
					output.Warning("No alert %s", args[0])
				}
				return nil
			})
		},
	}
}

func newAlertClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all price alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				n := eng.ClearAlerts()

				if output.IsJSON() {
					return output.JSON(map[string]int{"cleared": n})
				}
				output.Success("Cleared %d alert(s)", n)
				return nil
			})
		},
	}
}
