package trading

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Processor periodically sweeps pending orders in the background, so
// LIMIT orders fill as the simulated market drifts without an explicit
// process-pending call.
type Processor struct {
	service      *Service
	processDelay time.Duration
}

func NewProcessor(service *Service, processDelay time.Duration) *Processor {
	return &Processor{
		service:      service,
		processDelay: processDelay,
	}
}

// Start begins the pending-order processing loop
func (p *Processor) Start(ctx context.Context) {
	logger := log.With().Str("component", "order_processor").Logger()
	logger.Info().Dur("interval", p.processDelay).Msg("starting pending-order processor")

	ticker := time.NewTicker(p.processDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down pending-order processor")
			return
		case <-ticker.C:
			if _, err := p.service.ProcessPendingOrders(); err != nil {
				logger.Error().Err(err).Msg("failed to process pending orders")
			}
		}
	}
}
