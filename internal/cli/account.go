package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	dErrors "tradedesk/internal/errors"
	"tradedesk/internal/engine"
	"tradedesk/internal/models"
	"tradedesk/internal/store"
	"tradedesk/pkg/utils"
)

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management",
		Long:  "List, inspect and switch between trading accounts.",
	}

	cmd.AddCommand(newAccountListCmd(app))
	cmd.AddCommand(newAccountShowCmd(app))
	cmd.AddCommand(newAccountSelectCmd(app))
	cmd.AddCommand(newAccountAddCmd(app))
	cmd.AddCommand(newAccountBalanceCmd(app))

	return cmd
}

func newAccountListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				accounts := eng.Accounts()
				current := eng.CurrentAccount()

				if output.IsJSON() {
					return output.JSON(accounts)
				}

				table := NewTable(output, "", "ID", "NAME", "NUMBER", "KIND", "BALANCE", "EQUITY", "FREE MARGIN", "DAILY P&L")
				for _, a := range accounts {
					marker := " "
					if a.ID == current {
						marker = "*"
					}
					table.AddRow(
						marker,
						a.ID,
						a.Name,
						a.Number,
						string(a.Kind),
						utils.FormatCurrency(a.Balance),
						utils.FormatCurrency(a.Equity),
						utils.FormatCurrency(a.FreeMargin),
						output.FormatPnL(a.DailyPnL),
					)
				}
				table.Render()
				return nil
			})
		},
	}
}

func newAccountShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show account details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				id := accountArg(cmd)
				if len(args) > 0 {
					id = args[0]
				}
				if id == "" {
					id = eng.CurrentAccount()
				}

				acct := eng.Account(id)
				if acct == nil {
					return dErrors.Wrapf(dErrors.ErrAccountNotFound, "account %s", id)
				}

				if output.IsJSON() {
					return output.JSON(acct)
				}

				output.Bold("%s (#%s)", acct.Name, acct.Number)
				output.Printf("  Kind:        %s %s\n", acct.Kind, acct.Currency)
				output.Printf("  Balance:     %s\n", utils.FormatCurrency(acct.Balance))
				output.Printf("  Equity:      %s\n", utils.FormatCurrency(acct.Equity))
				output.Printf("  Margin Used: %s\n", utils.FormatCurrency(acct.MarginUsed))
				output.Printf("  Free Margin: %s\n", utils.FormatCurrency(acct.FreeMargin))
				output.Printf("  Daily P&L:   %s\n", output.FormatPnL(acct.DailyPnL))
				output.Printf("  Daily Stop:  %s\n", utils.FormatCurrency(acct.DailyStopLevel))
				return nil
			})
		},
	}
}

func newAccountSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Switch the current account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)
				acct := eng.SelectAccount(args[0])
				if output.IsJSON() {
					return output.JSON(acct)
				}
				output.Success("Current account: %s (%s)", acct.Name, acct.ID)
				return nil
			})
		},
	}
}

func newAccountAddCmd(app *App) *cobra.Command {
	var name, number, kind, currency string
	var balance, dailyStop float64

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				if balance < 0 {
					return fmt.Errorf("balance must be non-negative")
				}
				if balance == 0 {
					balance = app.Config.Trading.InitialBalance
				}
				if dailyStop == 0 {
					dailyStop = balance * 0.05
				}

				acct := eng.AddAccount(models.Account{
					ID:             args[0],
					Name:           name,
					Number:         number,
					Currency:       currency,
					Kind:           models.AccountKind(kind),
					Visible:        true,
					Active:         true,
					Balance:        balance,
					DailyStopLevel: dailyStop,
				})

				if output.IsJSON() {
					return output.JSON(acct)
				}
				output.Success("Added account %s with balance %s", acct.ID, utils.FormatCurrency(acct.Balance))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account display name")
	cmd.Flags().StringVar(&number, "number", "", "account number")
	cmd.Flags().StringVar(&kind, "kind", "demo", "account kind (live or demo)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "account currency")
	cmd.Flags().Float64Var(&balance, "balance", 0, "starting balance (default: configured initial balance)")
	cmd.Flags().Float64Var(&dailyStop, "daily-stop", 0, "daily loss cutoff (default: 5% of balance)")

	return cmd
}

func newAccountBalanceCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "balance [id]",
		Short: "Show recorded balance history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(cmd, func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error {
				output := NewOutput(cmd)

				id := accountArg(cmd)
				if len(args) > 0 {
					id = args[0]
				}
				if id == "" {
					id = eng.CurrentAccount()
				}

				history := eng.BalanceHistory(id)
				if limit > 0 && len(history) > limit {
					history = history[len(history)-limit:]
				}

				if output.IsJSON() {
					return output.JSON(history)
				}

				table := NewTable(output, "TIME", "BALANCE", "EQUITY", "MARGIN USED", "MARGIN FREE")
				for _, snap := range history {
					table.AddRow(
						snap.Time.Format("15:04:05"),
						utils.FormatCurrency(snap.Balance),
						utils.FormatCurrency(snap.Equity),
						utils.FormatCurrency(snap.MarginUsed),
						utils.FormatCurrency(snap.MarginFree),
					)
				}
				table.Render()
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many entries")

	return cmd
}
