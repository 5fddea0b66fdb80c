package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/metrics"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Secondary step names reported in dto.FalloSecundario.Paso.
const (
	PasoMovimiento       = "movimiento"
	PasoLiberarDescuento = "liberar_descuento"
	PasoEvento           = "evento"
	PasoReintento        = "reintento"
	PasoLectura          = "lectura"
)

// Event types published on the pedidos topic.
const (
	EventoPedidoCompletado = "pedido.completado"
	EventoPedidoCancelado  = "pedido.cancelado"
)

// MovimientoReintentos queues a failed fulfillment movement for a later retry.
type MovimientoReintentos interface {
	EncolarMovimiento(ctx context.Context, pedidoID uint, req dto.MovimientoRequest) error
}

// PedidoEvento is the payload published when a pedido is fulfilled or cancelled.
type PedidoEvento struct {
	ID             string    `json:"id"`
	Tipo           string    `json:"tipo"`
	PedidoID       uint      `json:"pedido_id"`
	EstadoAnterior string    `json:"estado_anterior"`
	Estado         string    `json:"estado"`
	VentaID        *uint     `json:"venta_id,omitempty"`
	Total          string    `json:"total"`
	OcurridoEn     time.Time `json:"ocurrido_en"`
}

// PedidoService drives pedidos through their estados and coordinates the
// venta, stock and discount side effects of each transition.
type PedidoService interface {
	Crear(ctx context.Context, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	Transicionar(ctx context.Context, id uint, req dto.ActualizarPedidoRequest) (*dto.ResultadoTransicion, error)
	Eliminar(ctx context.Context, id uint) (*dto.ResultadoEliminacion, error)
}

type pedidoService struct {
	repo       repository.PedidoRepository
	items      repository.PedidoItemStore
	descuentos DescuentoService
	inventario InventarioService
	ventas     VentaService
	reintentos MovimientoReintentos // optional
	eventos    infra.EventPublisher // optional
	metrics    *metrics.Metrics
}

func NewPedidoService(
	repo repository.PedidoRepository,
	items repository.PedidoItemStore,
	descuentos DescuentoService,
	inventario InventarioService,
	ventas VentaService,
	reintentos MovimientoReintentos,
	eventos infra.EventPublisher,
	m *metrics.Metrics,
) PedidoService {
	return &pedidoService{
		repo:       repo,
		items:      items,
		descuentos: descuentos,
		inventario: inventario,
		ventas:     ventas,
		reintentos: reintentos,
		eventos:    eventos,
		metrics:    m,
	}
}

// NormalizarEstado folds the accepted synonyms into canonical estados.
// Anything else is lowercased and must be pendiente or enviado.
func NormalizarEstado(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	switch e {
	case "finalizado", "finalizar", "completado":
		return model.EstadoCompletado, nil
	case "cancelado", "cancelar", "canceled", "cancel":
		return model.EstadoCancelado, nil
	case model.EstadoPendiente, model.EstadoEnviado:
		return e, nil
	}
	return "", apperror.Newf(apperror.CodeValidation, "estado %q no reconocido", raw)
}

// canonico normalizes a stored estado without rejecting unknown values, so
// rows written with a synonym still compare as fulfilled or cancelled.
func canonico(estado string) string {
	if e, err := NormalizarEstado(estado); err == nil {
		return e
	}
	return strings.ToLower(strings.TrimSpace(estado))
}

// ── Crear ─────────────────────────────────────────────────────────────────────
//   1. validate items, compute Σ subtotals
//   2. consume the discount code first; its error aborts creation
//   3. insert pedido + items; on failure give the use back (best effort)

func (s *pedidoService) Crear(ctx context.Context, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Validation("el pedido debe tener al menos un ítem")
	}
	items := make([]model.PedidoItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, it := range req.Items {
		if it.Cantidad <= 0 {
			return nil, apperror.Validation("la cantidad de cada ítem debe ser mayor a 0")
		}
		if it.PrecioUnitario.IsNegative() {
			return nil, apperror.Validation("el precio unitario no puede ser negativo")
		}
		item := model.PedidoItem{ProductoID: it.ProductoID, Cantidad: it.Cantidad, PrecioUnitario: it.PrecioUnitario}
		subtotal = subtotal.Add(item.Subtotal())
		items = append(items, item)
	}

	p := &model.Pedido{
		ClienteID: req.ClienteID,
		Estado:    model.EstadoPendiente,
		Total:     subtotal,
		Items:     items,
	}

	var snap *dto.CodigoSnapshot
	if req.CodigoDescuento != nil && strings.TrimSpace(*req.CodigoDescuento) != "" {
		var err error
		snap, err = s.descuentos.Consumir(ctx, strings.TrimSpace(*req.CodigoDescuento))
		if err != nil {
			return nil, err
		}
		codigo := snap.Codigo
		pct := snap.Porcentaje
		p.CodigoDescuento = &codigo
		p.PorcentajeDescuento = &pct
		p.Total = aplicarDescuento(subtotal, pct)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if snap != nil {
			if _, lerr := s.descuentos.Liberar(ctx, snap.Codigo); lerr != nil {
				s.metrics.FalloSecundario(PasoLiberarDescuento)
				log.Warn().Err(lerr).Str("codigo", snap.Codigo).Msg("pedido: no se pudo devolver el uso del código tras fallar la creación")
			}
		}
		return nil, err
	}

	log.Info().Uint("pedido_id", p.ID).Str("total", p.Total.StringFixed(2)).Msg("pedido: creado")
	return pedidoToResponse(p), nil
}

// aplicarDescuento returns subtotal × (1 − pct/100) rounded to cents.
func aplicarDescuento(subtotal, pct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100)))
	return subtotal.Mul(factor).Round(2)
}

// totalVenta resolves the venta amount. A pedido created with a code keeps its
// discount when the stored total is 0 and the amount falls back to the items.
func totalVenta(explicito *decimal.Decimal, p *model.Pedido, items []model.PedidoItem) decimal.Decimal {
	total := ResolverTotal(explicito, p.Total, items)
	if explicito == nil && !p.Total.GreaterThan(decimal.Zero) && p.PorcentajeDescuento != nil {
		total = aplicarDescuento(total, *p.PorcentajeDescuento)
	}
	return total
}

func (s *pedidoService) Obtener(ctx context.Context, id uint) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return pedidoToResponse(p), nil
}

func (s *pedidoService) Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado != "" {
		e, err := NormalizarEstado(filter.Estado)
		if err != nil {
			return nil, err
		}
		filter.Estado = e
	}
	pedidos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		data = append(data, *pedidoToResponse(&pedidos[i]))
	}
	return &dto.PedidoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Transicionar ──────────────────────────────────────────────────────────────
//   1. load pedido (NOT_FOUND)
//   2. no recognized field → no-op; validate total and estado
//   3. entering completado: read line items, resolve the venta total
//   4. BEGIN TX: partial update, then venta insert (skipped if one exists)
//   5. COMMIT
//   6. new venta → one salida per item, failures recorded and queued for retry
//   7. entering cancelado with a code → give one use back (best effort)
//   8. publish event (best effort), re-read, return

func (s *pedidoService) Transicionar(ctx context.Context, id uint, req dto.ActualizarPedidoRequest) (*dto.ResultadoTransicion, error) {
	actual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &dto.ResultadoTransicion{FallosSecundarios: []dto.FalloSecundario{}}
	if req.Vacio() {
		res.Pedido = pedidoToResponse(actual)
		return res, nil
	}

	fields := make(map[string]interface{}, 3)
	nuevoEstado := canonico(actual.Estado)
	if req.Estado != nil {
		nuevoEstado, err = NormalizarEstado(*req.Estado)
		if err != nil {
			return nil, err
		}
		fields["estado"] = nuevoEstado
	}
	if req.Total != nil {
		if req.Total.IsNegative() {
			return nil, apperror.Validation("el total no puede ser negativo")
		}
		fields["total"] = *req.Total
	}
	if req.ClienteID != nil {
		fields["cliente_id"] = *req.ClienteID
	}

	anterior := canonico(actual.Estado)
	entraCompletado := nuevoEstado == model.EstadoCompletado && anterior != model.EstadoCompletado
	entraCancelado := nuevoEstado == model.EstadoCancelado && anterior != model.EstadoCancelado

	var items []model.PedidoItem
	var total decimal.Decimal
	metodo := ""
	if req.MetodoPago != nil {
		metodo = *req.MetodoPago
	}
	if entraCompletado {
		items, err = s.items.ListarPorPedido(ctx, id)
		if err != nil {
			return nil, err
		}
		total = totalVenta(req.Total, actual, items)
	}

	var venta *model.Venta
	ventaNueva := false
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.UpdateFieldsTx(tx, id, fields)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.Newf(apperror.CodeNotFound, "pedido %d no encontrado", id)
		}
		res.FilasAfectadas = n
		if !entraCompletado {
			return nil
		}
		venta, ventaNueva, err = s.ventas.RegistrarTx(ctx, tx, id, total, metodo)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger := log.With().Uint("pedido_id", id).Str("estado_anterior", anterior).Str("estado", nuevoEstado).Logger()
	logger.Info().Int64("filas", res.FilasAfectadas).Msg("pedido: actualizado")

	if venta != nil {
		res.VentaID = &venta.ID
	}
	if ventaNueva {
		s.descontarStock(ctx, id, items, res)
	} else if entraCompletado {
		logger.Info().Msg("pedido: ya tenía venta, no se descuenta stock de nuevo")
	}

	if entraCancelado && actual.CodigoDescuento != nil {
		if _, lerr := s.descuentos.Liberar(ctx, *actual.CodigoDescuento); lerr != nil {
			s.registrarFallo(res, dto.FalloSecundario{Paso: PasoLiberarDescuento, Codigo: *actual.CodigoDescuento, Error: lerr.Error()})
			logger.Warn().Err(lerr).Str("codigo", *actual.CodigoDescuento).Msg("pedido: no se pudo devolver el uso del código")
		}
	}

	if entraCompletado || entraCancelado {
		s.publicar(ctx, res, PedidoEvento{
			Tipo:           tipoEvento(nuevoEstado),
			PedidoID:       id,
			EstadoAnterior: anterior,
			Estado:         nuevoEstado,
			VentaID:        res.VentaID,
			Total:          totalEvento(venta, req, actual),
		})
	}

	actualizado, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.registrarFallo(res, dto.FalloSecundario{Paso: PasoLectura, Error: err.Error()})
		logger.Warn().Err(err).Msg("pedido: no se pudo releer tras actualizar")
		res.Pedido = pedidoToResponse(actual)
		return res, nil
	}
	res.Pedido = pedidoToResponse(actualizado)
	return res, nil
}

// descontarStock books one salida per line item. Each failure is recorded
// and, when a retry queue is configured, enqueued. The venta stays.
func (s *pedidoService) descontarStock(ctx context.Context, pedidoID uint, items []model.PedidoItem, res *dto.ResultadoTransicion) {
	for _, it := range items {
		mov := dto.MovimientoRequest{
			ProductoID:  it.ProductoID,
			Tipo:        model.MovimientoSalida,
			Cantidad:    it.Cantidad,
			Descripcion: fmt.Sprintf("Salida por pedido #%d", pedidoID),
		}
		if _, err := s.inventario.RegistrarMovimiento(ctx, mov); err != nil {
			s.registrarFallo(res, dto.FalloSecundario{Paso: PasoMovimiento, ProductoID: it.ProductoID, Error: err.Error()})
			log.Warn().Err(err).Uint("pedido_id", pedidoID).Interface("producto_id", it.ProductoID).
				Int("cantidad", it.Cantidad).Msg("pedido: salida de stock no registrada")
			s.encolarReintento(ctx, pedidoID, mov, res)
		}
	}
}

func (s *pedidoService) encolarReintento(ctx context.Context, pedidoID uint, mov dto.MovimientoRequest, res *dto.ResultadoTransicion) {
	if s.reintentos == nil {
		return
	}
	if err := s.reintentos.EncolarMovimiento(ctx, pedidoID, mov); err != nil {
		s.registrarFallo(res, dto.FalloSecundario{Paso: PasoReintento, ProductoID: mov.ProductoID, Error: err.Error()})
		log.Error().Err(err).Uint("pedido_id", pedidoID).Msg("pedido: no se pudo encolar el reintento del movimiento")
	}
}

func (s *pedidoService) publicar(ctx context.Context, res *dto.ResultadoTransicion, ev PedidoEvento) {
	if s.eventos == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.OcurridoEn = time.Now().UTC()
	if err := s.eventos.Publish(ctx, strconv.FormatUint(uint64(ev.PedidoID), 10), ev); err != nil {
		s.registrarFallo(res, dto.FalloSecundario{Paso: PasoEvento, Error: err.Error()})
		log.Warn().Err(err).Uint("pedido_id", ev.PedidoID).Str("tipo", ev.Tipo).Msg("pedido: evento no publicado")
	}
}

func (s *pedidoService) registrarFallo(res *dto.ResultadoTransicion, f dto.FalloSecundario) {
	s.metrics.FalloSecundario(f.Paso)
	res.FallosSecundarios = append(res.FallosSecundarios, f)
}

func tipoEvento(estado string) string {
	if estado == model.EstadoCompletado {
		return EventoPedidoCompletado
	}
	return EventoPedidoCancelado
}

func totalEvento(v *model.Venta, req dto.ActualizarPedidoRequest, actual *model.Pedido) string {
	switch {
	case v != nil:
		return v.Total.StringFixed(2)
	case req.Total != nil:
		return req.Total.StringFixed(2)
	default:
		return actual.Total.StringFixed(2)
	}
}

// ── Eliminar ──────────────────────────────────────────────────────────────────
// Deletes pedido and items in one transaction and gives a use of its code
// back whatever the estado was. Ventas and stock movements are kept.

func (s *pedidoService) Eliminar(ctx context.Context, id uint) (*dto.ResultadoEliminacion, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &dto.ResultadoEliminacion{FallosSecundarios: []dto.FalloSecundario{}}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.DeleteTx(tx, id)
		res.FilasAfectadas = n
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Str("estado", p.Estado).Msg("pedido: eliminado")

	if p.CodigoDescuento != nil {
		if _, lerr := s.descuentos.Liberar(ctx, *p.CodigoDescuento); lerr != nil {
			s.metrics.FalloSecundario(PasoLiberarDescuento)
			res.FallosSecundarios = append(res.FallosSecundarios, dto.FalloSecundario{
				Paso: PasoLiberarDescuento, Codigo: *p.CodigoDescuento, Error: lerr.Error(),
			})
			log.Warn().Err(lerr).Uint("pedido_id", id).Str("codigo", *p.CodigoDescuento).
				Msg("pedido: no se pudo devolver el uso del código al eliminar")
		}
	}
	return res, nil
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	items := make([]dto.PedidoItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, dto.PedidoItemResponse{
			ID:             it.ID,
			ProductoID:     it.ProductoID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal(),
		})
	}
	return &dto.PedidoResponse{
		ID:                  p.ID,
		ClienteID:           p.ClienteID,
		Estado:              p.Estado,
		Total:               p.Total,
		CodigoDescuento:     p.CodigoDescuento,
		PorcentajeDescuento: p.PorcentajeDescuento,
		Items:               items,
		CreatedAt:           p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           p.UpdatedAt.Format(time.RFC3339),
	}
}
