package infra

import (
	"fmt"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the PostgreSQL pool, migrates every table and applies the
// PostgreSQL-only constraints AutoMigrate cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables owned by this service.
// It is dialect-neutral so tests can run it against SQLite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Producto{},
		&model.MovimientoStock{},
		&model.CodigoDescuento{},
		&model.Pedido{},
		&model.PedidoItem{},
		&model.Venta{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL for checks GORM tags cannot declare.
// Each block is guarded by a catalog lookup so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"check movimientos_stock cantidad > 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimientos_stock_cantidad') THEN
    ALTER TABLE movimientos_stock ADD CONSTRAINT chk_movimientos_stock_cantidad CHECK (cantidad > 0);
  END IF;
END $$`},
		{"check movimientos_stock tipo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimientos_stock_tipo') THEN
    ALTER TABLE movimientos_stock ADD CONSTRAINT chk_movimientos_stock_tipo CHECK (tipo IN ('entrada', 'salida'));
  END IF;
END $$`},
		{"check codigos_descuento usos within bounds", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_codigos_descuento_usos') THEN
    ALTER TABLE codigos_descuento ADD CONSTRAINT chk_codigos_descuento_usos
      CHECK (usos_actuales >= 0 AND usos_actuales <= usos_maximos);
  END IF;
END $$`},
		{"check ventas total >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ventas_total') THEN
    ALTER TABLE ventas ADD CONSTRAINT chk_ventas_total CHECK (total >= 0);
  END IF;
END $$`},
		{"case-insensitive lookup index on codigos_descuento",
			`CREATE INDEX IF NOT EXISTS idx_codigos_descuento_upper ON codigos_descuento (UPPER(codigo))`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
