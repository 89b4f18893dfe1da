package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tradedesk/internal/engine"
	"tradedesk/internal/store"
)

func newQuotesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quotes",
		Short: "Show current quotes for all symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				quotes := eng.Quotes()

				if output.IsJSON() {
					return output.JSON(quotes)
				}

				if len(quotes) == 0 {
					output.Dim("No quotes yet.")
					return nil
				}

				table := NewTable(output, "SYMBOL", "PRICE", "DAY OPEN", "CHANGE", "CHANGE %")
				for _, q := range quotes {
					table.AddRow(
						q.Symbol,
						fmt.Sprintf("%.5f", q.Price),
						fmt.Sprintf("%.5f", q.DayOpen),
						output.ColoredString(output.PnLColor(q.Change), fmt.Sprintf("%+.5f", q.Change)),
						output.FormatPercent(q.ChangePercent),
					)
				}
				table.Render()
				return nil
			})
		},
	}
}

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price table management",
	}

	cmd.AddCommand(newPriceSetCmd(app))
	cmd.AddCommand(newPriceChartCmd(app))

	return cmd
}

func newPriceSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <symbol> <price>",
		Short: "Push a manual price tick",
		Long: `Push a manual price tick through the engine. The tick is processed
exactly like a simulator tick: positions are marked, pending orders are
evaluated and account metrics are recomputed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				symbol := strings.ToUpper(args[0])
				var price float64
				if _, err := fmt.Sscanf(args[1], "%f", &price); err != nil {
					return fmt.Errorf("invalid price %q", args[1])
				}

				if err := eng.UpdatePrice(symbol, price); err != nil {
					return err
				}

				if output.IsJSON() {
					return output.JSON(map[string]interface{}{"symbol": symbol, "price": price})
				}
				output.Success("%s = %.5f", symbol, price)
				return nil
			})
		},
	}
}

func newPriceChartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chart [symbol]",
		Short: "Show or set the chart symbol",
		Long: `The chart symbol is driven by an external chart feed rather than the
simulator; the simulator skips it. A prefix before ':' (such as "FX:") is
stripped when matching.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				if len(args) == 1 {
					eng.SetChartSymbol(args[0])
				}
				symbol := eng.ChartSymbol()

				if output.IsJSON() {
					return output.JSON(map[string]string{"chart_symbol": symbol})
				}
				output.Println(symbol)
				return nil
			})
		},
	}
}
