package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PedidoItemRequest struct {
	ProductoID     *uint           `json:"producto_id"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

type CrearPedidoRequest struct {
	ClienteID       *uint               `json:"cliente_id"`
	Items           []PedidoItemRequest `json:"items"            validate:"required,min=1,dive"`
	CodigoDescuento *string             `json:"codigo_descuento" validate:"omitempty,min=1,max=40"`
}

// ActualizarPedidoRequest carries a partial update. Nil fields are not touched;
// Total is bound as a pointer so an explicit 0 differs from "absent".
type ActualizarPedidoRequest struct {
	Estado     *string          `json:"estado"     validate:"omitempty,min=1,max=20"`
	Total      *decimal.Decimal `json:"total"`
	ClienteID  *uint            `json:"cliente_id"`
	MetodoPago *string          `json:"metodo_pago" validate:"omitempty,oneof=efectivo debito credito transferencia"`
}

// Vacio reports whether no recognized field is present.
func (r ActualizarPedidoRequest) Vacio() bool {
	return r.Estado == nil && r.Total == nil && r.ClienteID == nil
}

type PedidoFilter struct {
	Estado    string `form:"estado"`
	ClienteID uint   `form:"cliente_id"` // 0 = any
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PedidoItemResponse struct {
	ID             uint            `json:"id"`
	ProductoID     *uint           `json:"producto_id"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type PedidoResponse struct {
	ID                  uint                 `json:"id"`
	ClienteID           *uint                `json:"cliente_id"`
	Estado              string               `json:"estado"`
	Total               decimal.Decimal      `json:"total"`
	CodigoDescuento     *string              `json:"codigo_descuento"`
	PorcentajeDescuento *decimal.Decimal     `json:"porcentaje_descuento"`
	Items               []PedidoItemResponse `json:"items"`
	CreatedAt           string               `json:"created_at"`
	UpdatedAt           string               `json:"updated_at"`
}

type PedidoListResponse struct {
	Data  []PedidoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// FalloSecundario describes a best-effort step that failed after the primary
// write committed. The primary outcome is never reverted because of it.
type FalloSecundario struct {
	Paso       string `json:"paso"` // "movimiento" | "liberar_descuento" | "evento" | "reintento"
	ProductoID *uint  `json:"producto_id,omitempty"`
	Codigo     string `json:"codigo,omitempty"`
	Error      string `json:"error"`
}

type ResultadoTransicion struct {
	Pedido            *PedidoResponse   `json:"pedido"`
	FilasAfectadas    int64             `json:"filas_afectadas"`
	// VentaID is the venta bound to the pedido, whether this transition
	// created it or an earlier fulfillment did.
	VentaID           *uint             `json:"venta_id,omitempty"`
	FallosSecundarios []FalloSecundario `json:"fallos_secundarios"`
}

type ResultadoEliminacion struct {
	FilasAfectadas    int64             `json:"filas_afectadas"`
	FallosSecundarios []FalloSecundario `json:"fallos_secundarios"`
}
