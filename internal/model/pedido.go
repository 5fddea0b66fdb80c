package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical estados. Synonyms are folded into these by service.NormalizarEstado.
const (
	EstadoPendiente  = "pendiente"
	EstadoEnviado    = "enviado"
	EstadoCancelado  = "cancelado"
	EstadoCompletado = "completado"
)

// Pedido is a customer purchase request.
// CodigoDescuento references a codigos_descuento row that existed when the
// order was created; it is not re-validated on read.
type Pedido struct {
	ID                  uint             `gorm:"primaryKey"`
	ClienteID           *uint            `gorm:"index"`
	Estado              string           `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Total               decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	CodigoDescuento     *string          `gorm:"type:varchar(40)"`
	PorcentajeDescuento *decimal.Decimal `gorm:"type:decimal(5,2)"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Items []PedidoItem `gorm:"foreignKey:PedidoID"`
}

func (Pedido) TableName() string { return "pedidos" }

// PedidoItem is one product line of a Pedido.
type PedidoItem struct {
	ID             uint            `gorm:"primaryKey"`
	PedidoID       uint            `gorm:"index;not null"`
	ProductoID     *uint           `gorm:"index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (PedidoItem) TableName() string { return "pedido_items" }

// Subtotal is Cantidad × PrecioUnitario.
func (i PedidoItem) Subtotal() decimal.Decimal {
	return i.PrecioUnitario.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}
