package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/metrics"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaService records revenue. A venta is either tied to a pedido (at most
// one per pedido) or a standalone point-of-sale operation.
type VentaService interface {
	Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	// RegistrarTx inserts the venta of a pedido inside the caller's transaction.
	// created is false when the pedido already had a venta; the existing one is returned.
	RegistrarTx(ctx context.Context, tx *gorm.DB, pedidoID uint, total decimal.Decimal, metodo string) (venta *model.Venta, created bool, err error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ActualizarMetodoPago(ctx context.Context, id uint, metodo string) (*dto.VentaResponse, error)
	Eliminar(ctx context.Context, id uint) error
	GenerarTicket(ctx context.Context, id uint) ([]byte, error)
}

type ventaService struct {
	repo      repository.VentaRepository
	itemStore repository.PedidoItemStore
	productos repository.ProductoRepository
	metrics   *metrics.Metrics
	tienda    string
}

func NewVentaService(
	repo repository.VentaRepository,
	itemStore repository.PedidoItemStore,
	productos repository.ProductoRepository,
	m *metrics.Metrics,
	tienda string,
) VentaService {
	return &ventaService{
		repo:      repo,
		itemStore: itemStore,
		productos: productos,
		metrics:   m,
		tienda:    tienda,
	}
}

// ResolverTotal picks the amount a fulfilled pedido is recognized for:
// the explicit value when given, else the stored total when positive, else
// the sum of line subtotals. An empty pedido resolves to zero.
func ResolverTotal(explicito *decimal.Decimal, almacenado decimal.Decimal, items []model.PedidoItem) decimal.Decimal {
	if explicito != nil {
		return *explicito
	}
	if almacenado.GreaterThan(decimal.Zero) {
		return almacenado
	}
	suma := decimal.Zero
	for _, it := range items {
		suma = suma.Add(it.Subtotal())
	}
	return suma
}

func metodoOrDefault(metodo string) (string, error) {
	if metodo == "" {
		return model.MetodoPagoDefault, nil
	}
	for _, m := range model.MetodosPago {
		if m == metodo {
			return metodo, nil
		}
	}
	return "", apperror.Newf(apperror.CodeValidation, "método de pago %q no soportado", metodo)
}

func (s *ventaService) Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if req.Total.IsNegative() {
		return nil, apperror.Validation("el total no puede ser negativo")
	}
	metodo, err := metodoOrDefault(req.MetodoPago)
	if err != nil {
		return nil, err
	}

	v := &model.Venta{PedidoID: req.PedidoID, Total: req.Total, MetodoPago: metodo}
	if err := s.repo.Create(ctx, v); err != nil {
		if req.PedidoID != nil && apperror.Is(err, apperror.CodeConflict) {
			return nil, apperror.Wrap(apperror.CodeConflict, err, fmt.Sprintf("el pedido %d ya tiene venta", *req.PedidoID))
		}
		return nil, err
	}
	s.metrics.VentaRegistrada("pos")
	log.Info().Uint("venta_id", v.ID).Str("total", v.Total.StringFixed(2)).Msg("venta: registrada en mostrador")
	return ventaToResponse(v), nil
}

func (s *ventaService) RegistrarTx(ctx context.Context, tx *gorm.DB, pedidoID uint, total decimal.Decimal, metodo string) (*model.Venta, bool, error) {
	if total.IsNegative() {
		return nil, false, apperror.Validation("el total no puede ser negativo")
	}
	metodo, err := metodoOrDefault(metodo)
	if err != nil {
		return nil, false, err
	}

	if tx != nil {
		tx = tx.WithContext(ctx)
	}
	v := &model.Venta{PedidoID: &pedidoID, Total: total, MetodoPago: metodo}
	created, err := s.repo.CreateForPedidoTx(tx, v)
	if err != nil {
		return nil, false, err
	}
	if !created {
		existing, err := s.repo.FindByPedidoIDTx(tx, pedidoID)
		if err != nil {
			return nil, false, err
		}
		log.Info().Uint("pedido_id", pedidoID).Uint("venta_id", existing.ID).Msg("venta: el pedido ya tenía venta, no se duplica")
		return existing, false, nil
	}
	s.metrics.VentaRegistrada("pedido")
	return v, true, nil
}

func (s *ventaService) ObtenerPorID(ctx context.Context, id uint) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ventaToResponse(v), nil
}

// Listar returns a paginated list of ventas, newest first.
func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ventaService) ActualizarMetodoPago(ctx context.Context, id uint, metodo string) (*dto.VentaResponse, error) {
	if metodo == "" {
		return nil, apperror.Validation("metodo_pago es obligatorio")
	}
	metodo, err := metodoOrDefault(metodo)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.UpdateMetodoPago(ctx, id, metodo)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperror.Newf(apperror.CodeNotFound, "venta %d no encontrada", id)
	}
	return s.ObtenerPorID(ctx, id)
}

// Eliminar removes the venta. Stock movements and discount uses booked for
// its pedido are left untouched; a later fulfillment of the same pedido
// would record a new venta.
func (s *ventaService) Eliminar(ctx context.Context, id uint) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.Newf(apperror.CodeNotFound, "venta %d no encontrada", id)
	}
	log.Warn().Uint("venta_id", id).Msg("venta: eliminada")
	return nil
}

func (s *ventaService) GenerarTicket(ctx context.Context, id uint) ([]byte, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var lineas []infra.TicketLinea
	if v.PedidoID != nil {
		items, err := s.itemStore.ListarPorPedido(ctx, *v.PedidoID)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			nombre := "Artículo"
			if it.ProductoID != nil {
				if p, err := s.productos.FindByID(ctx, *it.ProductoID); err == nil {
					nombre = p.Nombre
				} else {
					nombre = fmt.Sprintf("Producto #%d", *it.ProductoID)
				}
			}
			lineas = append(lineas, infra.TicketLinea{
				Descripcion: nombre,
				Cantidad:    it.Cantidad,
				Subtotal:    it.Subtotal(),
			})
		}
	}

	pdf, err := infra.GenerarTicketPDF(s.tienda, v, lineas)
	if err != nil {
		return nil, apperror.Persistence(err, "no se pudo generar el ticket")
	}
	return pdf, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	return &dto.VentaResponse{
		ID:         v.ID,
		PedidoID:   v.PedidoID,
		Total:      v.Total,
		MetodoPago: v.MetodoPago,
		CreatedAt:  v.CreatedAt.Format(time.RFC3339),
	}
}
