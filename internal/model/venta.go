package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const MetodoPagoDefault = "efectivo"

// MetodosPago lists the accepted payment methods.
var MetodosPago = []string{"efectivo", "debito", "credito", "transferencia"}

// Venta is the revenue recognized for an order, or for a point-of-sale
// operation when PedidoID is nil. The unique index on pedido_id keeps at
// most one Venta per Pedido; NULLs are not constrained.
// Only MetodoPago may change after creation.
type Venta struct {
	ID         uint            `gorm:"primaryKey"`
	PedidoID   *uint           `gorm:"uniqueIndex"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago string          `gorm:"type:varchar(20);not null;default:'efectivo'"`
	CreatedAt  time.Time
}

func (Venta) TableName() string { return "ventas" }
