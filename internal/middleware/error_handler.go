package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apierror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const mensajeInterno = "Error interno del servidor"

func errorInterno() *apierror.APIError {
	return apierror.WithCode(string(apperror.CodePersistence), mensajeInterno)
}

// ErrorHandler writes the response for errors attached with c.Error when the
// handler wrote nothing itself. Typed 4xx errors keep their status and code;
// everything else is logged and answered with a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if appErr := apperror.As(err); appErr != nil {
			if status := apperror.HTTPStatus(appErr.Code()); status < http.StatusInternalServerError {
				c.AbortWithStatusJSON(status, apierror.WithCode(string(appErr.Code()), appErr.Message()))
				return
			}
		}

		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err).
			Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorInterno())
	}
}

// Recovery turns a panic into a 500 and logs the stack of the goroutine.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("route", c.FullPath()).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorInterno())
		}()
		c.Next()
	}
}

// Logger writes one line per request. Requests to /health and /metrics log at
// Debug, 4xx at Warn and 5xx at Error.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			evt = log.Error()
		case status >= http.StatusBadRequest:
			evt = log.Warn()
		case c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics":
			evt = log.Debug()
		default:
			evt = log.Info()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		evt.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Str("client_ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
