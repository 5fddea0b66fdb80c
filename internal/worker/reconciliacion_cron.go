package worker

// Background goroutine that periodically compares each product's cached stock
// with the net of its movement log and reports drift.

import (
	"context"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"

	"github.com/rs/zerolog/log"
)

const defaultReconciliacionIntervalo = 15 * time.Minute

// Reconciliador is satisfied by service.InventarioService.
type Reconciliador interface {
	Reconciliar(ctx context.Context) ([]dto.DesvioStock, error)
}

// StartReconciliacionCron ticks every interval until ctx is cancelled.
func StartReconciliacionCron(ctx context.Context, r Reconciliador, interval time.Duration) {
	if interval <= 0 {
		interval = defaultReconciliacionIntervalo
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("intervalo", interval).Msg("reconciliacion_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reconciliacion_cron: shutting down")
				return
			case <-ticker.C:
				runReconciliacion(ctx, r)
			}
		}
	}()
}

// runReconciliacion logs each drift and returns how many were found.
func runReconciliacion(ctx context.Context, r Reconciliador) int {
	desvios, err := r.Reconciliar(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconciliacion_cron: failed to reconcile stock")
		return 0
	}
	for _, d := range desvios {
		log.Warn().
			Uint("producto_id", d.ProductoID).
			Str("nombre", d.Nombre).
			Int("stock_cache", d.StockCache).
			Int("stock_ledger", d.StockLedger).
			Int("diferencia", d.Diferencia).
			Msg("reconciliacion_cron: stock desviado del ledger")
	}
	if len(desvios) == 0 {
		log.Debug().Msg("reconciliacion_cron: stock consistente")
	}
	return len(desvios)
}
