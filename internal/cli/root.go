package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradedesk/internal/config"
	"tradedesk/internal/engine"
	"tradedesk/internal/logging"
	"tradedesk/internal/models"
	"tradedesk/internal/store"
)

// Version information
const (
	Version   = "0.2.0"
	BuildDate = "2026-08-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "tradedesk",
		Short: "TradeDesk - simulated FX trading terminal",
		Long: `TradeDesk is a simulated FX trading terminal.

It runs a local price feed simulator, fills limit and stop orders against
simulated ticks, and tracks balance, equity and margin across multiple
demo accounts. All state is persisted in a local SQLite database.

Use 'tradedesk run' to start the live simulation loop, or the one-shot
commands (order, position, account, ...) to inspect and mutate state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradedesk)")
	rootCmd.PersistentFlags().String("account", "", "account id to operate on (default: current account)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newAccountCmd(app))
	rootCmd.AddCommand(newOrderCmd(app))
	rootCmd.AddCommand(newPositionCmd(app))
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newQuotesCmd(app))
	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newAlertCmd(app))

	return rootCmd
}

// openStore opens the configured SQLite store.
func (a *App) openStore() (store.SnapshotStore, error) {
	st, err := store.NewSQLiteStore(a.Config.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", a.Config.Store.Path, err)
	}
	return st, nil
}

// loadEngine builds an engine from the persisted snapshot, seeding defaults
// on first run.
func (a *App) loadEngine(ctx context.Context, st store.SnapshotStore) (*engine.Engine, error) {
	eng := engine.New(a.Logger)

	snap, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		eng.Restore(snap)
		return eng, nil
	}

	a.seedEngine(eng)
	return eng, nil
}

// seedEngine populates a fresh engine from the configured seeds.
func (a *App) seedEngine(eng *engine.Engine) {
	for _, seed := range a.Config.SeedAccounts() {
		kind := models.AccountKind(seed.Kind)
		if kind == "" {
			kind = models.AccountDemo
		}
		eng.AddAccount(models.Account{
			ID:             seed.ID,
			Name:           seed.Name,
			Number:         seed.Number,
			Currency:       seed.Currency,
			Kind:           kind,
			Visible:        true,
			Active:         true,
			Balance:        seed.Balance,
			DailyStopLevel: seed.DailyStopLevel,
		})
	}
	for _, seed := range a.Config.SeedSymbols() {
		eng.SeedPrice(seed.Symbol, seed.Price)
	}
	eng.SetChartSymbol(a.Config.Trading.ChartSymbol)
	a.Logger.Info().
		Int("accounts", len(a.Config.SeedAccounts())).
		Int("symbols", len(a.Config.SeedSymbols())).
		Msg("seeded fresh state")
}

// withEngine runs a one-shot command: load state, apply fn, persist the
// result. History produced by fn is mirrored by comparing before and after.
func (a *App) withEngine(cmd *cobra.Command, fn func(ctx context.Context, eng *engine.Engine, st store.SnapshotStore) error) error {
	ctx := cmd.Context()
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	eng, err := a.loadEngine(ctx, st)
	if err != nil {
		return err
	}

	if err := fn(ctx, eng, st); err != nil {
		return err
	}

	return st.Save(ctx, eng.Snapshot())
}

// accountArg resolves the --account flag; empty means the current account.
func accountArg(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("account")
	return id
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("TradeDesk v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Simulator")
	output.Printf("  Interval:        %s\n", cfg.Simulator.Interval)
	output.Printf("  Jitter:          %g\n", cfg.Simulator.Jitter)
	output.Printf("  Price Decimals:  %d\n", cfg.Simulator.PriceDecimals)
	output.Println()

	output.Bold("Reconciler")
	output.Printf("  Interval:        %s\n", cfg.Reconciler.Interval)
	output.Println()

	output.Bold("Trading")
	output.Printf("  Initial Balance: %.2f\n", cfg.Trading.InitialBalance)
	output.Printf("  Chart Symbol:    %s\n", cfg.Trading.ChartSymbol)
	output.Println()

	output.Bold("Store")
	output.Printf("  Path:            %s\n", cfg.Store.Path)
	output.Printf("  Autosave:        %s\n", cfg.Store.Autosave)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:         %v\n", cfg.Notifications.Enabled)
	output.Printf("  Level:           %s\n", cfg.Notifications.Level)
	output.Printf("  Bell:            %v\n", cfg.Notifications.Bell)
	output.Printf("  Webhook:         %v\n", cfg.Notifications.Webhook.Enabled)

	return nil
}
