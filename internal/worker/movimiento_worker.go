package worker

import (
	"context"
	"fmt"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"

	"github.com/rs/zerolog/log"
)

// MovimientoRegistrar books a stock movement. service.InventarioService satisfies it.
type MovimientoRegistrar interface {
	RegistrarMovimiento(ctx context.Context, req dto.MovimientoRequest) (uint, error)
}

// MovimientoWorker re-attempts fulfillment movements taken from QueueMovimientos.
// NOT_FOUND and VALIDATION_ERROR are permanent and go straight to the DLQ;
// other errors are requeued until maxReintentos attempts were made.
type MovimientoWorker struct {
	inventario    MovimientoRegistrar
	dispatcher    *Dispatcher
	q             Queue
	maxReintentos int
}

func NewMovimientoWorker(inventario MovimientoRegistrar, dispatcher *Dispatcher, q Queue, maxReintentos int) *MovimientoWorker {
	if maxReintentos < 1 {
		maxReintentos = 1
	}
	return &MovimientoWorker{inventario: inventario, dispatcher: dispatcher, q: q, maxReintentos: maxReintentos}
}

func (w *MovimientoWorker) Process(ctx context.Context, queue string, job Job) {
	if job.Type != JobMovimiento {
		deadLetter(ctx, w.q, queue, job, "tipo de job desconocido")
		return
	}
	var mj MovimientoJob
	if err := decodePayload(job, &mj); err != nil {
		deadLetter(ctx, w.q, queue, job, err.Error())
		return
	}

	attempts := job.Attempts + 1
	logger := log.With().Uint("pedido_id", mj.PedidoID).Interface("producto_id", mj.Movimiento.ProductoID).
		Int("attempt", attempts).Logger()

	id, err := w.inventario.RegistrarMovimiento(ctx, mj.Movimiento)
	if err == nil {
		logger.Info().Uint("movimiento_id", id).Msg("movimiento_worker: salida registrada en reintento")
		return
	}

	job.Attempts = attempts
	code := apperror.CodeOf(err)
	if code == apperror.CodeNotFound || code == apperror.CodeValidation {
		deadLetter(ctx, w.q, queue, job, err.Error())
		return
	}
	if attempts >= w.maxReintentos {
		deadLetter(ctx, w.q, queue, job, fmt.Sprintf("max retries (%d) exceeded: %s", w.maxReintentos, err))
		return
	}

	if perr := w.dispatcher.push(ctx, queue, job); perr != nil {
		logger.Error().Err(perr).Msg("movimiento_worker: no se pudo reencolar")
		deadLetter(ctx, w.q, queue, job, "requeue failed: "+perr.Error())
		return
	}
	logger.Warn().Err(err).Msg("movimiento_worker: reintento fallido, reencolado")
}
