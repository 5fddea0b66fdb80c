package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha      string `form:"fecha"` // YYYY-MM-DD; empty = all dates
	MetodoPago string `form:"metodo_pago"`
	PedidoID   uint   `form:"pedido_id"` // 0 = any
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarVentaRequest is the point-of-sale path: the caller states the total.
type RegistrarVentaRequest struct {
	PedidoID   *uint           `json:"pedido_id"`
	Total      decimal.Decimal `json:"total"       validate:"min=0"`
	MetodoPago string          `json:"metodo_pago" validate:"omitempty,oneof=efectivo debito credito transferencia"`
}

type ActualizarMetodoPagoRequest struct {
	MetodoPago string `json:"metodo_pago" validate:"required,oneof=efectivo debito credito transferencia"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaResponse struct {
	ID         uint            `json:"id"`
	PedidoID   *uint           `json:"pedido_id"`
	Total      decimal.Decimal `json:"total"`
	MetodoPago string          `json:"metodo_pago"`
	CreatedAt  string          `json:"created_at"`
}
