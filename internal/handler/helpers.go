package handler

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apierror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// validator has no built-in support for decimal.Decimal; compare it as a float.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false after writing the error response; the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return 0, false
	}
	return uint(id), true
}

// respondError maps a domain error onto its HTTP status. Store failures are
// logged and answered with a generic message.
func respondError(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	status := apperror.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("handler: error interno")
		c.JSON(status, apierror.WithCode(string(apperror.CodePersistence), "Error interno del servidor"))
		return
	}
	msg := err.Error()
	if appErr := apperror.As(err); appErr != nil {
		msg = appErr.Message()
	}
	c.JSON(status, apierror.WithCode(string(code), msg))
}
