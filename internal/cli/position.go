package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tradedesk/internal/engine"
	"tradedesk/internal/models"
	"tradedesk/internal/store"
	"tradedesk/pkg/utils"
)

func newPositionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "position",
		Aliases: []string{"pos"},
		Short:   "Open position management",
		Long:    "List and close open positions, individually or in bulk.",
	}

	cmd.AddCommand(newPositionListCmd(app))
	cmd.AddCommand(newPositionCloseCmd(app))
	cmd.AddCommand(newPositionCloseAllCmd(app))

	return cmd
}

func newPositionListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				positions := eng.Positions(accountArg(cmd))

				if output.IsJSON() {
					return output.JSON(positions)
				}

				if len(positions) == 0 {
					output.Dim("No open positions.")
					return nil
				}

				var total float64
				table := NewTable(output, "ID", "SYMBOL", "SIDE", "VOLUME", "OPEN", "CURRENT", "SL", "TP", "P&L")
				for _, p := range positions {
					total += p.PnL
					table.AddRow(
						p.ID,
						p.Symbol,
						string(p.Side),
						utils.FormatVolume(p.Volume),
						fmt.Sprintf("%.5f", p.OpenPrice),
						fmt.Sprintf("%.5f", p.CurrentPrice),
						formatLevel(p.StopLoss),
						formatLevel(p.TakeProfit),
						output.FormatPnL(p.PnL),
					)
				}
				table.Render()
				output.Printf("Total unrealized P&L: %s\n", output.FormatPnL(total))
				return nil
			})
		},
	}
}

func newPositionCloseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close <position-id>",
		Short: "Close an open position at the current market price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				entry, err := eng.ClosePosition(accountArg(cmd), args[0])
				if err != nil {
					return err
				}
				if err := st.AppendHistory(ctx, []models.HistoryEntry{*entry}); err != nil {
					app.Logger.Warn().Err(err).Msg("failed to mirror history entry")
				}

				if output.IsJSON() {
					return output.JSON(entry)
				}
				output.Success("Closed %s %s %s @ %.5f", entry.Side,
					utils.FormatVolume(entry.Volume), entry.Symbol, entry.ClosePrice)
				output.Printf("Realized P&L: %s (commission %s)\n",
					output.FormatPnL(entry.PnL), utils.FormatCurrency(entry.Commission))
				return nil
			})
		},
	}
}

func newPositionCloseAllCmd(app *App) *cobra.Command {
	var profitable, losing bool

	cmd := &cobra.Command{
		Use:   "close-all",
		Short: "Close open positions in bulk",
		Long: `Close all open positions, or only the winners or losers.

Positions at exactly zero PnL are neither profitable nor losing and are
left open by --profitable and --losing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profitable && losing {
				return fmt.Errorf("--profitable and --losing are mutually exclusive")
			}
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				id := accountArg(cmd)

				var entries []models.HistoryEntry
				switch {
				case profitable:
					entries = eng.CloseProfitable(id)
				case losing:
					entries = eng.CloseLosing(id)
				default:
					entries = eng.CloseAll(id)
				}

				if len(entries) > 0 {
					if err := st.AppendHistory(ctx, entries); err != nil {
						app.Logger.Warn().Err(err).Msg("failed to mirror history entries")
					}
				}

				if output.IsJSON() {
					return output.JSON(entries)
				}

				if len(entries) == 0 {
					output.Dim("No matching positions.")
					return nil
				}

				var total float64
				for _, e := range entries {
					total += e.PnL
					output.Printf("  closed %s %s %s @ %.5f  %s\n",
						e.Side, utils.FormatVolume(e.Volume), e.Symbol,
						e.ClosePrice, output.FormatPnL(e.PnL))
				}
				output.Success("Closed %d position(s), realized %s", len(entries), output.FormatPnL(total))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&profitable, "profitable", false, "close only positions with positive PnL")
	cmd.Flags().BoolVar(&losing, "losing", false, "close only positions with negative PnL")

	return cmd
}
