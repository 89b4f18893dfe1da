package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tradedesk/internal/engine"
	"tradedesk/internal/feed"
	"tradedesk/internal/models"
	"tradedesk/internal/notify"
	"tradedesk/internal/stream"
)

func newRunCmd(app *App) *cobra.Command {
	var interval time.Duration
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the live simulation loop",
		Long: `Run starts the price feed simulator and the account reconciler and
keeps them running until interrupted. State is autosaved periodically and on
shutdown. Fills, rejections and closes are printed as they happen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runLoop(cmd, interval, quiet)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "override simulator tick interval")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress per-tick quote output")

	return cmd
}

func (app *App) runLoop(cmd *cobra.Command, interval time.Duration, quiet bool) error {
	output := NewOutput(cmd)

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	eng, err := app.loadEngine(ctx, st)
	if err != nil {
		return err
	}

	// Event fan-out
	hub := stream.NewHub()
	eng.AddSink(hub)
	hub.Start(ctx)
	defer hub.Stop()

	// Notifications
	if app.Config.Notifications.Enabled {
		notifier := notify.NewMultiNotifier(
			notify.NotificationLevel(app.Config.Notifications.Level), app.Logger)
		notifier.AddChannel(notify.NewTerminalNotifier(app.Config.Notifications.Bell))
		if app.Config.Notifications.Webhook.Enabled {
			notifier.AddChannel(notify.NewWebhookNotifier(app.Config.Notifications.Webhook.URL))
		}
		eng.AddSink(notify.Sink(notifier, app.Logger))
	}

	// Price feed simulator
	simCfg := feed.SimulatorConfig{
		Interval:      app.Config.Simulator.Interval,
		Jitter:        app.Config.Simulator.Jitter,
		PriceDecimals: app.Config.Simulator.PriceDecimals,
	}
	if interval > 0 {
		simCfg.Interval = interval
	}
	sim := feed.NewSimulator(simCfg, eng, app.Logger)
	sim.Start(ctx)
	defer sim.Stop()

	// Account reconciler
	rec := stream.NewReconciler(app.Config.Reconciler.Interval, eng, app.Logger)
	rec.Start(ctx)
	defer rec.Stop()

	// Mirror closed trades into the history table as they happen.
	closes := hub.Subscribe(engine.EventPositionClosed)
	go func() {
		for ev := range closes {
			if ev.Entry == nil {
				continue
			}
			if err := st.AppendHistory(ctx, []models.HistoryEntry{*ev.Entry}); err != nil {
				app.Logger.Warn().Err(err).Msg("failed to mirror history entry")
			}
		}
	}()

	if !quiet {
		go app.printQuotes(ctx, output, hub)
	}

	// Autosave
	autosave := app.Config.Store.Autosave
	if autosave <= 0 {
		autosave = 5 * time.Second
	}
	saveTicker := time.NewTicker(autosave)
	defer saveTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	output.Info("Simulation running. Press Ctrl+C to stop.")

	for {
		select {
		case <-saveTicker.C:
			if err := st.Save(ctx, eng.Snapshot()); err != nil {
				app.Logger.Warn().Err(err).Msg("autosave failed")
			}
		case <-sigCh:
			output.Println()
			output.Info("Shutting down...")
			cancel()
			if err := st.Save(context.Background(), eng.Snapshot()); err != nil {
				app.Logger.Error().Err(err).Msg("final save failed")
				return err
			}
			output.Success("State saved.")
			return nil
		case <-ctx.Done():
			return st.Save(context.Background(), eng.Snapshot())
		}
	}
}

// printQuotes prints a line per price update.
func (app *App) printQuotes(ctx context.Context, output *Output, hub *stream.Hub) {
	ch := hub.Subscribe(engine.EventPriceUpdated)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			output.Printf("%s  %-8s %.5f\n",
				ev.Time.Format("15:04:05"), ev.Symbol, ev.Price)
		}
	}
}
