package model

import "time"

const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
)

// MovimientoStock is an append-only inventory ledger entry.
// Rows are inserted or deleted, never updated. A nil ProductoID marks an
// informational entry that did not touch any stock counter.
type MovimientoStock struct {
	ID          uint   `gorm:"primaryKey"`
	ProductoID  *uint  `gorm:"index"`
	Tipo        string `gorm:"type:varchar(10);not null"` // "entrada" | "salida"
	Cantidad    int    `gorm:"not null"`                  // always positive, Tipo carries the sign
	Descripcion string `gorm:"type:text"`
	CreatedAt   time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// Delta returns the signed stock change this movement represents.
func (m MovimientoStock) Delta() int {
	if m.Tipo == MovimientoSalida {
		return -m.Cantidad
	}
	return m.Cantidad
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
