package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodePersistence, cause, "no se pudo guardar el pedido")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodePersistence, err.Code())
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAsFindsTypedErrorThroughFmtWrap(t *testing.T) {
	base := New(CodeLimitReached, "codigo agotado")
	wrapped := fmt.Errorf("crear pedido: %w", base)

	typed := As(wrapped)
	if assert.NotNil(t, typed) {
		assert.Equal(t, CodeLimitReached, typed.Code())
		assert.Equal(t, "codigo agotado", typed.Message())
	}
	assert.True(t, Is(wrapped, CodeLimitReached))
	assert.False(t, Is(wrapped, CodeNotFound))
}

func TestCodeOfUntypedIsPersistence(t *testing.T) {
	assert.Equal(t, CodePersistence, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("pedido no encontrado")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:             http.StatusNotFound,
		CodeValidation:           http.StatusUnprocessableEntity,
		CodeLimitReached:         http.StatusConflict,
		CodeConcurrentExhaustion: http.StatusConflict,
		CodeConflict:             http.StatusConflict,
		CodePersistence:          http.StatusInternalServerError,
		Code("OTRO"):             http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), code)
	}
}

func TestNilErrorIsSafe(t *testing.T) {
	var e *Error
	assert.Equal(t, "", e.Error())
	assert.Equal(t, CodePersistence, e.Code())
	assert.Nil(t, e.Unwrap())
}
