package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis connectivity and reports circuit breaker states.
// Redis is optional: a nil client reports "disabled". An open breaker does
// not fail the check.
func Health(db *gorm.DB, rdb *redis.Client, breakers ...*infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		cbs := make(gin.H, len(breakers))
		for _, cb := range breakers {
			if cb != nil {
				cbs[cb.Name()] = cb.State().String()
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":               status == http.StatusOK,
			"db":               dbStatus,
			"redis":            redisStatus,
			"circuit_breakers": cbs,
		})
	}
}
