package handler

import (
	"net/http"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PedidosHandler struct{ svc service.PedidoService }

func NewPedidosHandler(svc service.PedidoService) *PedidosHandler { return &PedidosHandler{svc: svc} }

// Crear godoc
// @Summary      Crear pedido
// @Description  Crea un pedido pendiente. Si trae codigo_descuento, consume un uso antes de guardar.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearPedidoRequest true "Items y código opcional"
// @Success      201  {object} dto.PedidoResponse
// @Failure      409  {object} apierror.APIError "Código agotado"
// @Router       /v1/pedidos [post]
func (h *PedidosHandler) Crear(c *gin.Context) {
	var req dto.CrearPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PedidosHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar pedidos
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        estado     query string false "Estado (acepta sinónimos)"
// @Param        cliente_id query int    false "Cliente"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.PedidoListResponse
// @Router       /v1/pedidos [get]
func (h *PedidosHandler) Listar(c *gin.Context) {
	var filter dto.PedidoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar pedido
// @Description  Actualización parcial. Entrar en completado registra la venta y descuenta stock;
// @Description  entrar en cancelado devuelve el uso del código. Los pasos secundarios que fallen
// @Description  se informan en fallos_secundarios sin revertir la actualización.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                         true "ID del pedido"
// @Param        body body dto.ActualizarPedidoRequest true "Campos a modificar"
// @Success      200  {object} dto.ResultadoTransicion
// @Failure      404  {object} apierror.APIError
// @Router       /v1/pedidos/{id} [put]
func (h *PedidosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transicionar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Eliminar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
