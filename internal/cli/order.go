package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tradedesk/internal/engine"
	"tradedesk/internal/models"
	"tradedesk/internal/store"
	"tradedesk/pkg/utils"
)

func newOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Pending order management",
		Long:  "Place, list and cancel pending limit and stop orders.",
	}

	cmd.AddCommand(newOrderPlaceCmd(app))
	cmd.AddCommand(newOrderListCmd(app))
	cmd.AddCommand(newOrderCancelCmd(app))
	cmd.AddCommand(newOrderCancelAllCmd(app))

	return cmd
}

// parseSide parses a side argument, accepting any case.
func parseSide(s string) (models.Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return models.SideBuy, nil
	case "sell":
		return models.SideSell, nil
	}
	return "", fmt.Errorf("invalid side %q (must be buy or sell)", s)
}

// parseKind parses an order kind argument, accepting any case.
func parseKind(s string) (models.OrderKind, error) {
	switch strings.ToLower(s) {
	case "limit":
		return models.OrderKindLimit, nil
	case "stop":
		return models.OrderKindStop, nil
	}
	return "", fmt.Errorf("invalid order kind %q (must be limit or stop)", s)
}

func newOrderPlaceCmd(app *App) *cobra.Command {
	var sl, tp float64

	cmd := &cobra.Command{
		Use:   "place <side> <kind> <symbol> <volume> <price>",
		Short: "Place a pending order",
		Long: `Place a pending limit or stop order. The order waits in the book until
a simulated tick satisfies its trigger condition, then fills at the tick price.

Examples:
  tradedesk order place buy limit EURUSD 1.0 1.0800
  tradedesk order place sell stop GBPJPY 0.5 190.00 --sl 191.00 --tp 188.00`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				side, err := parseSide(args[0])
				if err != nil {
					return err
				}
				kind, err := parseKind(args[1])
				if err != nil {
					return err
				}
				symbol := strings.ToUpper(args[2])

				var volume, price float64
				if _, err := fmt.Sscanf(args[3], "%f", &volume); err != nil {
					return fmt.Errorf("invalid volume %q", args[3])
				}
				if _, err := fmt.Sscanf(args[4], "%f", &price); err != nil {
					return fmt.Errorf("invalid price %q", args[4])
				}

				order, err := eng.PlaceOrder(accountArg(cmd), engine.OrderSpec{
					Symbol:     symbol,
					Side:       side,
					Kind:       kind,
					Price:      price,
					Volume:     volume,
					StopLoss:   sl,
					TakeProfit: tp,
				})
				if err != nil {
					return err
				}

				if output.IsJSON() {
					return output.JSON(order)
				}
				output.Success("Placed %s %s %s %s @ %.5f (id %s)",
					order.Side, order.Kind, utils.FormatVolume(order.Volume),
					order.Symbol, order.Price, order.ID)
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&sl, "sl", 0, "stop loss carried onto the filled position")
	cmd.Flags().Float64Var(&tp, "tp", 0, "take profit carried onto the filled position")

	return cmd
}

func newOrderListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				orders := eng.Orders(accountArg(cmd))

				if output.IsJSON() {
					return output.JSON(orders)
				}

				if len(orders) == 0 {
					output.Dim("No pending orders.")
					return nil
				}

				table := NewTable(output, "ID", "TYPE", "SYMBOL", "VOLUME", "PRICE", "MARKET", "SL", "TP", "PLACED")
				for _, o := range orders {
					table.AddRow(
						o.ID,
						o.Type(),
						o.Symbol,
						utils.FormatVolume(o.Volume),
						fmt.Sprintf("%.5f", o.Price),
						fmt.Sprintf("%.5f", o.CurrentPrice),
						formatLevel(o.StopLoss),
						formatLevel(o.TakeProfit),
						o.PlacedAt.Format("15:04:05"),
					)
				}
				table.Render()
				return nil
			})
		},
	}
}

// formatLevel renders an optional SL/TP level, blank when unset.
func formatLevel(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.5f", v)
}

func newOrderCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				cancelled := eng.CancelOrder(accountArg(cmd), args[0])

				if output.IsJSON() {
					return output.JSON(map[string]bool{"cancelled": cancelled})
				}
				if cancelled {
					output.Success("Cancelled order %s", args[0])
				} else {
					output.Warning("No pending order %s", args[0])
				}
				return nil
			})
		},
	}
}

func newOrderCancelAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel all pending orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				n := eng.CancelAllPending(accountArg(cmd))

				if output.IsJSON() {
					return output.JSON(map[string]int{"cancelled": n})
				}
				output.Success("Cancelled %d pending order(s)", n)
				return nil
			})
		},
	}
}
