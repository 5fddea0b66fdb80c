package handler

import (
	"net/http"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type DescuentosHandler struct{ svc service.DescuentoService }

func NewDescuentosHandler(svc service.DescuentoService) *DescuentosHandler {
	return &DescuentosHandler{svc: svc}
}

// Validar godoc
// @Summary      Validar código de descuento
// @Description  Lectura pura: no consume usos.
// @Tags         descuentos
// @Accept       json
// @Produce      json
// @Param        body body dto.CodigoRequest true "Código"
// @Success      200  {object} dto.CodigoSnapshot
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError "LIMIT_REACHED"
// @Router       /v1/descuentos/validar [post]
func (h *DescuentosHandler) Validar(c *gin.Context) {
	var req dto.CodigoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Validar(c.Request.Context(), req.Codigo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DescuentosHandler) Consumir(c *gin.Context) {
	var req dto.CodigoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Consumir(c.Request.Context(), req.Codigo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Liberar answers 204 when the code no longer exists.
func (h *DescuentosHandler) Liberar(c *gin.Context) {
	var req dto.CodigoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Liberar(c.Request.Context(), req.Codigo)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DescuentosHandler) Crear(c *gin.Context) {
	var req dto.CrearCodigoRequest
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

func (h *DescuentosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
