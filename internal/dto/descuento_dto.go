package dto

import "github.com/shopspring/decimal"

type CodigoRequest struct {
	Codigo string `json:"codigo" validate:"required,min=1,max=40"`
}

type CrearCodigoRequest struct {
	Codigo      string          `json:"codigo"       validate:"required,min=1,max=40"`
	Porcentaje  decimal.Decimal `json:"porcentaje"   validate:"gt=0,max=100"`
	UsosMaximos int             `json:"usos_maximos" validate:"min=0"`
	Activo      *bool           `json:"activo"`
}

// CodigoSnapshot is a read of a code's state at one point in time.
type CodigoSnapshot struct {
	Codigo        string          `json:"codigo"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
	UsosMaximos   int             `json:"usos_maximos"`
	UsosActuales  int             `json:"usos_actuales"`
	UsosRestantes int             `json:"usos_restantes"`
	Activo        bool            `json:"activo"`
}
