package dto

import "github.com/shopspring/decimal"

type CrearProductoRequest struct {
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=120"`
	Precio       decimal.Decimal `json:"precio"        validate:"min=0"`
	StockInicial int             `json:"stock_inicial" validate:"min=0"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
}

type ProductoResponse struct {
	ID          uint            `json:"id"`
	Nombre      string          `json:"nombre"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stock_minimo"`
	Activo      bool            `json:"activo"`
}
