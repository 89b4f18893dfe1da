// Package feed provides the synthetic price feed driving the engine.
package feed

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradedesk/internal/engine"
	"tradedesk/internal/models"
)

// SimulatorConfig holds configuration for the price simulator.
type SimulatorConfig struct {
	// Interval between jitter passes.
	Interval time.Duration
	// Jitter is the width of the uniform perturbation band; each tick moves
	// a price by a delta in (−Jitter/2, +Jitter/2).
	Jitter float64
	// PriceDecimals is the rounding applied to perturbed prices.
	PriceDecimals int
}

// DefaultSimulatorConfig returns the default simulator configuration.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		Interval:      time.Second,
		Jitter:        0.0002,
		PriceDecimals: 5,
	}
}

// Simulator perturbs every tracked symbol's price by a small random delta on
// a fixed interval and feeds each update into the engine. The symbol shown
// on the live chart is skipped so its price always reflects the chart feed.
//
// The simulator is an explicitly owned ticker: it does nothing until Start
// and stops cleanly on Stop or context cancellation. The loop is best-effort
// and survives a panicking update.
type Simulator struct {
	cfg    SimulatorConfig
	engine *engine.Engine
	log    zerolog.Logger
	rng    *rand.Rand

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewSimulator creates a stopped simulator.
func NewSimulator(cfg SimulatorConfig, eng *engine.Engine, logger zerolog.Logger) *Simulator {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Jitter <= 0 {
		cfg.Jitter = 0.0002
	}
	if cfg.PriceDecimals <= 0 {
		cfg.PriceDecimals = 5
	}
	return &Simulator{
		cfg:    cfg,
		engine: eng,
		log:    logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins the jitter loop. Calling Start on a running simulator is a
// no-op.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.loop(ctx, done)
	s.log.Info().Dur("interval", s.cfg.Interval).Float64("jitter", s.cfg.Jitter).Msg("price simulator started")
}

// Stop halts the jitter loop.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	close(s.done)
	s.started = false
}

// IsRunning reports whether the loop is active.
func (s *Simulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *Simulator) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick perturbs every tracked symbol except the active chart symbol.
func (s *Simulator) tick() {
	active := ActiveChartSymbol(s.engine.ChartSymbol())

	for symbol, price := range s.engine.Prices() {
		if symbol == active {
			continue
		}
		delta := (s.rng.Float64() - 0.5) * s.cfg.Jitter
		next := roundTo(price+delta, s.cfg.PriceDecimals)
		s.update(symbol, next)
	}
}

// update feeds one price into the engine, recovering from panics so a bad
// subscriber cannot kill the loop.
func (s *Simulator) update(symbol string, price float64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn().Interface("panic", r).Str("symbol", symbol).Msg("price update panicked")
		}
	}()
	if err := s.engine.UpdatePrice(symbol, price); err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("simulated tick rejected")
	}
}

// ActiveChartSymbol strips an exchange prefix from a chart symbol, e.g.
// "FX:EURUSD" -> "EURUSD".
func ActiveChartSymbol(chartSymbol string) string {
	if i := strings.IndexByte(chartSymbol, ':'); i >= 0 {
		return chartSymbol[i+1:]
	}
	return chartSymbol
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}

// ChartFeed forwards externally produced prices (the chart widget's last
// rendered bar close) into the engine for the actively charted symbol.
type ChartFeed struct {
	engine *engine.Engine
	log    zerolog.Logger
}

// NewChartFeed creates a chart feed bound to the engine.
func NewChartFeed(eng *engine.Engine, logger zerolog.Logger) *ChartFeed {
	return &ChartFeed{engine: eng, log: logger}
}

// Push applies one externally sourced price update.
func (f *ChartFeed) Push(symbol string, price float64) error {
	if err := f.engine.UpdatePrice(symbol, price); err != nil {
		return err
	}
	f.log.Debug().Str("symbol", symbol).Float64("price", price).
		Str("source", string(models.TickSourceChart)).Msg("chart price applied")
	return nil
}
