package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/repository"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/testutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	db         *gorm.DB
	pedidos    repository.PedidoRepository
	descuentos DescuentoService
	inventario InventarioService
	ventas     VentaService
	reintentos *stubReintentos
	eventos    *stubPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	productos := repository.NewProductoRepository(db)
	pedidos := repository.NewPedidoRepository(db)
	return &fixture{
		db:         db,
		pedidos:    pedidos,
		descuentos: NewDescuentoService(repository.NewCodigoDescuentoRepository(db), nil),
		inventario: NewInventarioService(productos, repository.NewMovimientoStockRepository(db), nil),
		ventas:     NewVentaService(repository.NewVentaRepository(db), pedidos, productos, nil, "Tienda Test"),
		reintentos: &stubReintentos{},
		eventos:    &stubPublisher{},
	}
}

// pedidoService wires the fixture, letting a test swap the collaborators it
// wants to fail.
func (f *fixture) pedidoService(descuentos DescuentoService, inventario InventarioService) PedidoService {
	if descuentos == nil {
		descuentos = f.descuentos
	}
	if inventario == nil {
		inventario = f.inventario
	}
	return NewPedidoService(f.pedidos, f.pedidos, descuentos, inventario, f.ventas, f.reintentos, f.eventos, nil)
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubReintentos struct {
	mu    sync.Mutex
	jobs  []dto.MovimientoRequest
	falla error
}

func (s *stubReintentos) EncolarMovimiento(_ context.Context, _ uint, req dto.MovimientoRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.falla != nil {
		return s.falla
	}
	s.jobs = append(s.jobs, req)
	return nil
}

type stubPublisher struct {
	mu      sync.Mutex
	eventos []PedidoEvento
	falla   error
}

func (p *stubPublisher) Publish(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.falla != nil {
		return p.falla
	}
	if ev, ok := event.(PedidoEvento); ok {
		p.eventos = append(p.eventos, ev)
	}
	return nil
}

func (p *stubPublisher) Close() error { return nil }

var _ infra.EventPublisher = (*stubPublisher)(nil)

// inventarioFallido rejects every salida for the listed products and passes
// the rest through.
type inventarioFallido struct {
	InventarioService
	productos map[uint]bool
}

func (i *inventarioFallido) RegistrarMovimiento(ctx context.Context, req dto.MovimientoRequest) (uint, error) {
	if req.ProductoID != nil && i.productos[*req.ProductoID] {
		return 0, errors.New("ledger no disponible")
	}
	return i.InventarioService.RegistrarMovimiento(ctx, req)
}

// descuentoSinLiberar fails every release.
type descuentoSinLiberar struct {
	DescuentoService
}

func (d *descuentoSinLiberar) Liberar(context.Context, string) (*dto.CodigoSnapshot, error) {
	return nil, errors.New("store de códigos caído")
}
