package handler

import (
	"fmt"
	"net/http"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar venta de mostrador
// @Description  Registra una venta con el total indicado. No descuenta stock.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Total y método de pago"
// @Success      201  {object} dto.VentaResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar ventas
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha       query string false "Fecha YYYY-MM-DD"
// @Param        metodo_pago query string false "efectivo | debito | credito | transferencia"
// @Param        pedido_id   query int    false "Pedido"
// @Param        page        query int    false "Página (default 1)"
// @Param        limit       query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
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

func (h *VentasHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket godoc
// @Summary      Ticket PDF de la venta
// @Tags         ventas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "ID de la venta"
// @Success      200 {file} binary
// @Router       /v1/ventas/{id}/ticket [get]
func (h *VentasHandler) Ticket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.svc.GenerarTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=ticket-%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *VentasHandler) ActualizarMetodoPago(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarMetodoPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarMetodoPago(c.Request.Context(), id, req.MetodoPago)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
