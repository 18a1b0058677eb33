package market

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Amrut00/Bajaj-Broker-Assignment/internal/instruments"
)

// Ticker drives the simulated market: on each interval it perturbs every
// instrument price through the registry and broadcasts the new prices.
type Ticker struct {
	registry *instruments.Service
	hub      *Hub
	interval time.Duration
}

func NewTicker(registry *instruments.Service, hub *Hub, interval time.Duration) *Ticker {
	return &Ticker{
		registry: registry,
		hub:      hub,
		interval: interval,
	}
}

// Start runs the tick loop until ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	logger := log.With().Str("component", "market_ticker").Logger()
	logger.Info().Dur("interval", t.interval).Msg("starting market ticker")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down market ticker")
			return
		case <-ticker.C:
			updated, err := t.registry.PerturbPrices()
			if err != nil {
				logger.Error().Err(err).Msg("failed to perturb prices")
				continue
			}

			now := time.Now()
			ticks := make([]PriceTick, 0, len(updated))
			for _, inst := range updated {
				ticks = append(ticks, PriceTick{
					Symbol: inst.Symbol,
					Price:  inst.CurrentPrice,
					At:     now,
				})
			}
			t.hub.Broadcast(ticks)
		}
	}
}
