package handler

import (
	"net/http"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductosHandler exposes the product side of InventarioService.
type ProductosHandler struct{ svc service.InventarioService }

func NewProductosHandler(svc service.InventarioService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearProducto(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductosHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerProducto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
