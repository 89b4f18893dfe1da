package cli

import (
	"context"

	"github.com/spf13/cobra"

	"tradedesk/internal/engine"
	"tradedesk/internal/store"
	"tradedesk/pkg/utils"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	var fromStore bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show closed trades",
		Long: `Show the account's closed trades, most recent first. By default the
in-memory log from the snapshot is shown; --db reads the append-only
history table instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				id := accountArg(cmd)
				if id == "" {
					id = eng.CurrentAccount()
				}

				entries := eng.History(id)
				if fromStore {
					var err error
					entries, err = st.GetHistory(ctx, id, limit)
					if err != nil {
						return err
					}
				} else if limit > 0 && len(entries) > limit {
					entries = entries[len(entries)-limit:]
				}

				if output.IsJSON() {
					return output.JSON(entries)
				}

				if len(entries) == 0 {
					output.Dim("No closed trades.")
					return nil
				}

				var total float64
				table := NewTable(output, "CLOSED", "SYMBOL", "SIDE", "VOLUME", "OPEN", "CLOSE", "P&L", "COMMISSION")
				for _, e := range entries {
					total += e.PnL
					table.AddRow(
						e.CloseTime.Format("02 Jan 15:04:05"),
						e.Symbol,
						string(e.Side),
						utils.FormatVolume(e.Volume),
						utils.FormatPrice(e.OpenPrice, 5),
						utils.FormatPrice(e.ClosePrice, 5),
						output.FormatPnL(e.PnL),
						utils.FormatCurrency(e.Commission),
					)
				}
				table.Render()
				output.Printf("Total realized P&L: %s\n", output.FormatPnL(total))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "show at most this many entries")
	cmd.Flags().BoolVar(&fromStore, "db", false, "read from the history table instead of the snapshot")

	return cmd
}
