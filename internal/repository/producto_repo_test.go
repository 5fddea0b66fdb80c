package repository

import (
	"context"
	"testing"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductoRepo_UpdateStockTxIsRelative(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductoRepository(db)
	p := testutil.SeedProducto(t, db, "Cable HDMI", "10.00", 5)

	n, err := repo.UpdateStockTx(db, p.ID, -7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, -2, testutil.Stock(t, db, p.ID), "stock may go negative")

	n, err = repo.UpdateStockTx(db, 9999, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestProductoRepo_FindByIDNotFound(t *testing.T) {
	repo := NewProductoRepository(testutil.NewDB(t))
	_, err := repo.FindByID(context.Background(), 42)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestProductoRepo_ListBajoMinimo(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductoRepository(db)

	ok := testutil.SeedProducto(t, db, "Mouse", "8.00", 10)
	bajo := testutil.SeedProducto(t, db, "Teclado", "20.00", 1)
	negativo := testutil.SeedProducto(t, db, "Monitor", "150.00", -3)
	inactivo := testutil.SeedProducto(t, db, "Parlante", "30.00", 0)
	require.NoError(t, db.Model(&model.Producto{}).Where("id IN ?", []uint{ok.ID, bajo.ID, negativo.ID, inactivo.ID}).
		Update("stock_minimo", 2).Error)
	require.NoError(t, db.Model(inactivo).Update("activo", false).Error)

	alertas, err := repo.ListBajoMinimo(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 2)
	assert.Equal(t, negativo.ID, alertas[0].ID)
	assert.Equal(t, bajo.ID, alertas[1].ID)
}

func TestMovimientoStockRepo_NetoPorProductoAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovimientoStockRepository(db)
	ctx := context.Background()
	p := testutil.SeedProducto(t, db, "Cargador", "12.00", 0)

	movs := []model.MovimientoStock{
		{ProductoID: &p.ID, Tipo: model.MovimientoEntrada, Cantidad: 10, Descripcion: "compra"},
		{ProductoID: &p.ID, Tipo: model.MovimientoSalida, Cantidad: 3, Descripcion: "venta"},
		{Tipo: model.MovimientoEntrada, Cantidad: 99, Descripcion: "informativo"},
	}
	for i := range movs {
		require.NoError(t, repo.CreateTx(db, &movs[i]))
	}

	neto, err := repo.NetoPorProducto(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{p.ID: 7}, neto)

	list, total, err := repo.List(ctx, dto.MovimientoFilter{ProductoID: p.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Producto)
	assert.Equal(t, "Cargador", list[0].Producto.Nombre)

	n, err := repo.Delete(ctx, movs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(ctx, movs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, total, err = repo.List(ctx, dto.MovimientoFilter{Tipo: model.MovimientoSalida})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
