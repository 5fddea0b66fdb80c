package handler

import (
	"net/http"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// RegistrarMovimiento godoc
// @Summary      Registrar movimiento de stock
// @Description  Inserta el movimiento y ajusta el stock del producto en la misma transacción.
// @Description  Sin producto_id el movimiento es informativo.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.MovimientoRequest true "Movimiento"
// @Success      201  {object} dto.MovimientoCreadoResponse
// @Failure      404  {object} apierror.APIError "Producto inexistente"
// @Router       /v1/inventario/movimientos [post]
func (h *InventarioHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	id, err := h.svc.RegistrarMovimiento(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MovimientoCreadoResponse{ID: id})
}

// RegistrarLote answers 207 when some entries failed.
func (h *InventarioHandler) RegistrarLote(c *gin.Context) {
	var req dto.MovimientoLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp := h.svc.RegistrarLote(c.Request.Context(), req.Movimientos)
	status := http.StatusCreated
	if len(resp.Fallos) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, resp)
}

func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) EliminarMovimiento(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarMovimiento(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) Reconciliar(c *gin.Context) {
	resp, err := h.svc.Reconciliar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"desvios": resp, "total": len(resp)})
}
