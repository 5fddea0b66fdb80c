package handler

import (
	"net/http"
	"strconv"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apierror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ReintentosFallidos godoc
// @Summary      Movimientos descartados
// @Description  Lista las salidas de stock que agotaron sus reintentos, la más reciente primero.
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Máximo de entradas (1-200)"
// @Success      200  {object} map[string]interface{}
// @Router       /v1/inventario/reintentos/fallidos [get]
func ReintentosFallidos(q worker.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := int64(50)
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 1 || n > 200 {
				c.JSON(http.StatusBadRequest, apierror.New("limit debe estar entre 1 y 200"))
				return
			}
			limit = n
		}
		if q == nil {
			c.JSON(http.StatusOK, gin.H{"data": []worker.DLQEntry{}, "total": 0})
			return
		}

		ctx := c.Request.Context()
		total, err := worker.DLQLength(ctx, q, worker.QueueMovimientos)
		if err == nil {
			var entries []worker.DLQEntry
			if entries, err = worker.DLQEntries(ctx, q, worker.QueueMovimientos, limit); err == nil {
				c.JSON(http.StatusOK, gin.H{"data": entries, "total": total})
				return
			}
		}
		log.Error().Err(err).Msg("reintentos: no se pudo leer el DLQ")
		c.JSON(http.StatusServiceUnavailable, apierror.New("Cola de reintentos no disponible"))
	}
}
