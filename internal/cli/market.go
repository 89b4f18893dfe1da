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

func newBuyCmd(app *App) *cobra.Command {
	return newMarketCmd(app, models.SideBuy)
}

func newSellCmd(app *App) *cobra.Command {
	return newMarketCmd(app, models.SideSell)
}

// newMarketCmd builds an immediate market execution command for one side.
func newMarketCmd(app *App, side models.Side) *cobra.Command {
	use := strings.ToLower(string(side))

	return &cobra.Command{
		Use:   use + " <symbol> <volume>",
		Short: fmt.Sprintf("%s at the current market price", side),
		Long: fmt.Sprintf(`Open a %s position immediately at the last simulated price for the
symbol. Fails if the symbol has no price yet or free margin is insufficient.`, side),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				symbol := strings.ToUpper(args[0])
				var volume float64
				if _, err := fmt.Sscanf(args[1], "%f", &volume); err != nil {
					return fmt.Errorf("invalid volume %q", args[1])
				}

				pos, err := eng.PlaceMarket(accountArg(cmd), side, volume, symbol)
				if err != nil {
					return err
				}

				if output.IsJSON() {
					return output.JSON(pos)
				}
				output.Success("Opened %s %s %s @ %.5f (id %s)",
					pos.Side, utils.FormatVolume(pos.Volume), pos.Symbol,
					pos.OpenPrice, pos.ID)
				output.Dim("Commission: %s, margin held: %s",
					utils.FormatCurrency(pos.Commission),
					utils.FormatCurrency(pos.Margin()))
				return nil
			})
		},
	}
}
