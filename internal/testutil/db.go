// Package testutil builds isolated in-memory databases for package tests.
package testutil

import (
	"testing"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private shared-cache SQLite database with every table migrated.
// The pool is pinned to one connection so goroutines serialize on it.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:tienda_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.Migrate(db))
	return db
}

// SeedProducto inserts an active product with the given stock.
func SeedProducto(t testing.TB, db *gorm.DB, nombre string, precio string, stock int) *model.Producto {
	t.Helper()
	p := &model.Producto{
		Nombre: nombre,
		Precio: decimal.RequireFromString(precio),
		Stock:  stock,
		Activo: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// SeedCodigo inserts a discount code with the given usage state.
func SeedCodigo(t testing.TB, db *gorm.DB, codigo string, porcentaje string, maximos, actuales int, activo bool) *model.CodigoDescuento {
	t.Helper()
	c := &model.CodigoDescuento{
		Codigo:       codigo,
		Porcentaje:   decimal.RequireFromString(porcentaje),
		UsosMaximos:  maximos,
		UsosActuales: actuales,
		Activo:       activo,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Codigo reloads a discount code by exact stored value.
func Codigo(t testing.TB, db *gorm.DB, codigo string) model.CodigoDescuento {
	t.Helper()
	var c model.CodigoDescuento
	require.NoError(t, db.Where("codigo = ?", codigo).First(&c).Error)
	return c
}

// Stock reloads the cached stock of a product.
func Stock(t testing.TB, db *gorm.DB, id uint) int {
	t.Helper()
	var p model.Producto
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}
