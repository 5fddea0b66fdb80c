package repository

import (
	"context"
	"testing"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPedido(t *testing.T, db *gorm.DB, repo PedidoRepository) *model.Pedido {
	t.Helper()
	a := testutil.SeedProducto(t, db, "A", "10.00", 10)
	b := testutil.SeedProducto(t, db, "B", "5.00", 10)
	p := &model.Pedido{
		Estado: model.EstadoPendiente,
		Items: []model.PedidoItem{
			{ProductoID: &a.ID, Cantidad: 2, PrecioUnitario: decimal.RequireFromString("10.00")},
			{ProductoID: &b.ID, Cantidad: 1, PrecioUnitario: decimal.RequireFromString("5.00")},
		},
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestPedidoRepo_CreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPedidoRepository(db)
	p := seedPedido(t, db, repo)

	found, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPendiente, found.Estado)
	assert.True(t, found.Total.IsZero())
	require.Len(t, found.Items, 2)
	assert.True(t, found.Items[0].Subtotal().Equal(decimal.NewFromInt(20)))

	items, err := repo.ListarPorPedido(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = repo.FindByID(context.Background(), p.ID+100)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestPedidoRepo_UpdateFieldsAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPedidoRepository(db)
	p := seedPedido(t, db, repo)

	n, err := repo.UpdateFieldsTx(db, p.ID, map[string]interface{}{"estado": model.EstadoEnviado})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, total, err := repo.List(context.Background(), dto.PedidoFilter{Estado: model.EstadoEnviado, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 2)

	n, err = repo.DeleteTx(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	items, err := repo.ListarPorPedido(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestVentaRepo_CreateForPedidoTxSkipsDuplicates(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewVentaRepository(db)
	pedidoID := uint(7)

	first := &model.Venta{PedidoID: &pedidoID, Total: decimal.NewFromInt(25), MetodoPago: model.MetodoPagoDefault}
	created, err := repo.CreateForPedidoTx(db, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	second := &model.Venta{PedidoID: &pedidoID, Total: decimal.NewFromInt(99), MetodoPago: model.MetodoPagoDefault}
	created, err = repo.CreateForPedidoTx(db, second)
	require.NoError(t, err)
	assert.False(t, created)

	existing, err := repo.FindByPedidoIDTx(db, pedidoID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)
	assert.True(t, existing.Total.Equal(decimal.NewFromInt(25)))

	var count int64
	require.NoError(t, db.Model(&model.Venta{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVentaRepo_PointOfSaleVentasAreNotUnique(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewVentaRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(ctx, &model.Venta{Total: decimal.NewFromInt(3), MetodoPago: "debito"}))
	}
	list, total, err := repo.List(ctx, dto.VentaFilter{MetodoPago: "debito", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	n, err := repo.UpdateMetodoPago(ctx, list[0].ID, "credito")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(ctx, list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
