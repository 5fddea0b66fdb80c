package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MovimientoRequest registers one ledger entry. A nil ProductoID records an
// informational movement that touches no stock counter.
type MovimientoRequest struct {
	ProductoID  *uint  `json:"producto_id"`
	Tipo        string `json:"tipo"        validate:"required,oneof=entrada salida"`
	Cantidad    int    `json:"cantidad"    validate:"required,min=1"`
	Descripcion string `json:"descripcion" validate:"max=500"`
}

type MovimientoLoteRequest struct {
	Movimientos []MovimientoRequest `json:"movimientos" validate:"required,min=1,dive"`
}

type MovimientoFilter struct {
	ProductoID uint   `form:"producto_id"` // 0 = any
	Tipo       string `form:"tipo"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID          uint   `json:"id"`
	ProductoID  *uint  `json:"producto_id"`
	Producto    string `json:"producto,omitempty"`
	Tipo        string `json:"tipo"`
	Cantidad    int    `json:"cantidad"`
	Descripcion string `json:"descripcion"`
	CreatedAt   string `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type MovimientoCreadoResponse struct {
	ID uint `json:"id"`
}

// ResultadoLote reports which entries of a batch were stored and which failed.
type ResultadoLote struct {
	Registrados []uint            `json:"registrados"`
	Fallos      []FalloSecundario `json:"fallos"`
}

type AlertaStockResponse struct {
	ProductoID  uint   `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
	Faltante    int    `json:"faltante"`
}

// DesvioStock is a product whose cached stock differs from its ledger.
type DesvioStock struct {
	ProductoID  uint   `json:"producto_id"`
	Nombre      string `json:"nombre"`
	StockCache  int    `json:"stock_cache"`
	StockLedger int    `json:"stock_ledger"`
	Diferencia  int    `json:"diferencia"` // StockCache - StockLedger
}
