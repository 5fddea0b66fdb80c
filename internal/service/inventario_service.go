package service

import (
	"context"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/metrics"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InventarioService owns the stock movement ledger and the cached stock of
// each product. The ledger row and the stock update commit together.
type InventarioService interface {
	RegistrarMovimiento(ctx context.Context, req dto.MovimientoRequest) (uint, error)
	RegistrarLote(ctx context.Context, reqs []dto.MovimientoRequest) dto.ResultadoLote
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	// EliminarMovimiento deletes the ledger row without repairing stock.
	// Reconciliar reports the resulting drift.
	EliminarMovimiento(ctx context.Context, id uint) error

	CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerProducto(ctx context.Context, id uint) (*dto.ProductoResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	Reconciliar(ctx context.Context) ([]dto.DesvioStock, error)
}

type inventarioService struct {
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	metrics      *metrics.Metrics
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	m *metrics.Metrics,
) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movRepo: movRepo, metrics: m}
}

func validarMovimiento(req dto.MovimientoRequest) error {
	if req.Cantidad <= 0 {
		return apperror.Validation("la cantidad debe ser mayor a 0")
	}
	if req.Tipo != model.MovimientoEntrada && req.Tipo != model.MovimientoSalida {
		return apperror.Validation("tipo debe ser entrada o salida")
	}
	return nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
//   1. validate cantidad > 0 and tipo
//   2. BEGIN TX: stock = stock ± cantidad, insert ledger row
//   3. zero rows on the stock update → rollback, NOT_FOUND
//   4. COMMIT (both writes or neither)

func (s *inventarioService) RegistrarMovimiento(ctx context.Context, req dto.MovimientoRequest) (uint, error) {
	id, err := s.registrar(ctx, req)
	s.metrics.Movimiento(req.Tipo, err)
	return id, err
}

func (s *inventarioService) registrar(ctx context.Context, req dto.MovimientoRequest) (uint, error) {
	if err := validarMovimiento(req); err != nil {
		return 0, err
	}

	mov := &model.MovimientoStock{
		ProductoID:  req.ProductoID,
		Tipo:        req.Tipo,
		Cantidad:    req.Cantidad,
		Descripcion: req.Descripcion,
	}
	err := runTx(ctx, s.movRepo.DB(), func(tx *gorm.DB) error {
		return s.registrarTx(tx, mov)
	})
	if err != nil {
		return 0, err
	}
	return mov.ID, nil
}

// registrarTx updates stock before inserting so the ledger row's foreign key
// never points at a missing product. Both writes share tx.
func (s *inventarioService) registrarTx(tx *gorm.DB, mov *model.MovimientoStock) error {
	if mov.ProductoID != nil {
		n, err := s.productoRepo.UpdateStockTx(tx, *mov.ProductoID, mov.Delta())
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.Newf(apperror.CodeNotFound, "producto %d no encontrado", *mov.ProductoID)
		}
	}
	return s.movRepo.CreateTx(tx, mov)
}

func (s *inventarioService) RegistrarLote(ctx context.Context, reqs []dto.MovimientoRequest) dto.ResultadoLote {
	res := dto.ResultadoLote{Registrados: []uint{}, Fallos: []dto.FalloSecundario{}}
	for _, req := range reqs {
		id, err := s.RegistrarMovimiento(ctx, req)
		if err != nil {
			log.Warn().Err(err).Interface("producto_id", req.ProductoID).Str("tipo", req.Tipo).
				Int("cantidad", req.Cantidad).Msg("inventario: movimiento del lote no registrado")
			res.Fallos = append(res.Fallos, dto.FalloSecundario{
				Paso:       "movimiento",
				ProductoID: req.ProductoID,
				Error:      err.Error(),
			})
			continue
		}
		res.Registrados = append(res.Registrados, id)
	}
	return res
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}
	movs, total, err := s.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoResponse, 0, len(movs))
	for _, m := range movs {
		r := dto.MovimientoResponse{
			ID:          m.ID,
			ProductoID:  m.ProductoID,
			Tipo:        m.Tipo,
			Cantidad:    m.Cantidad,
			Descripcion: m.Descripcion,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
		if m.Producto != nil {
			r.Producto = m.Producto.Nombre
		}
		data = append(data, r)
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventarioService) EliminarMovimiento(ctx context.Context, id uint) error {
	n, err := s.movRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.Newf(apperror.CodeNotFound, "movimiento %d no encontrado", id)
	}
	log.Warn().Uint("movimiento_id", id).Msg("inventario: movimiento eliminado sin ajustar stock")
	return nil
}

// CrearProducto inserts the product with stock 0 and books the initial
// stock as an entrada, so ledger and cached stock agree from the start.
func (s *inventarioService) CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.StockInicial < 0 || req.StockMinimo < 0 {
		return nil, apperror.Validation("stock_inicial y stock_minimo no pueden ser negativos")
	}
	if req.Precio.IsNegative() {
		return nil, apperror.Validation("el precio no puede ser negativo")
	}

	p := &model.Producto{
		Nombre:      req.Nombre,
		Precio:      req.Precio,
		StockMinimo: req.StockMinimo,
		Activo:      true,
	}
	err := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productoRepo.CreateTx(tx, p); err != nil {
			return err
		}
		if req.StockInicial == 0 {
			return nil
		}
		return s.registrarTx(tx, &model.MovimientoStock{
			ProductoID:  &p.ID,
			Tipo:        model.MovimientoEntrada,
			Cantidad:    req.StockInicial,
			Descripcion: "Stock inicial",
		})
	})
	if err != nil {
		return nil, err
	}
	p.Stock = req.StockInicial
	return productoToResponse(p), nil
}

func (s *inventarioService) ObtenerProducto(ctx context.Context, id uint) (*dto.ProductoResponse, error) {
	p, err := s.productoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListBajoMinimo(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID,
			Nombre:      p.Nombre,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
			Faltante:    p.StockMinimo - p.Stock,
		})
	}
	return alertas, nil
}

func (s *inventarioService) Reconciliar(ctx context.Context) ([]dto.DesvioStock, error) {
	productos, err := s.productoRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	neto, err := s.movRepo.NetoPorProducto(ctx)
	if err != nil {
		return nil, err
	}

	desvios := []dto.DesvioStock{}
	for _, p := range productos {
		ledger := neto[p.ID]
		if ledger == p.Stock {
			continue
		}
		desvios = append(desvios, dto.DesvioStock{
			ProductoID:  p.ID,
			Nombre:      p.Nombre,
			StockCache:  p.Stock,
			StockLedger: ledger,
			Diferencia:  p.Stock - ledger,
		})
	}
	s.metrics.Desvios(len(desvios))
	return desvios, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID,
		Nombre:      p.Nombre,
		Precio:      p.Precio,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		Activo:      p.Activo,
	}
}
