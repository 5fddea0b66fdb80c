package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is a sellable item. Stock is a cached aggregate of its
// movimientos_stock rows and is only changed through relative updates.
// It may go negative; alerting treats that as below minimum.
type Producto struct {
	ID          uint            `gorm:"primaryKey"`
	Nombre      string          `gorm:"index;not null"`
	Precio      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	StockMinimo int             `gorm:"not null;default:0"`
	Activo      bool            `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Producto) TableName() string { return "productos" }
