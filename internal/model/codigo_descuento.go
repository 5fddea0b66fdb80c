package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CodigoDescuento is a shared promotional code with a usage cap.
// Codigo is stored uppercase. UsosActuales stays within [0, UsosMaximos]:
// it only moves through conditional relative updates in the repository.
type CodigoDescuento struct {
	ID           uint            `gorm:"primaryKey"`
	Codigo       string          `gorm:"type:varchar(40);uniqueIndex;not null"`
	Porcentaje   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	UsosMaximos  int             `gorm:"not null;default:0"`
	UsosActuales int             `gorm:"not null;default:0"`
	Activo       bool            `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (CodigoDescuento) TableName() string { return "codigos_descuento" }

// UsosRestantes never reports a negative count.
func (c CodigoDescuento) UsosRestantes() int {
	if r := c.UsosMaximos - c.UsosActuales; r > 0 {
		return r
	}
	return 0
}
