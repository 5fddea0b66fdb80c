package repository

import (
	"errors"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apperror"

	"gorm.io/gorm"
)

// translate maps a gorm error onto the apperror vocabulary used by services.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(notFound)
	}
	if apperror.As(err) != nil {
		return err
	}
	return persist(err)
}

// persist wraps a raw store failure; nil stays nil. Unique violations need
// gorm.Config.TranslateError to arrive as gorm.ErrDuplicatedKey.
func persist(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Wrap(apperror.CodeConflict, err, "registro duplicado")
	}
	return apperror.Persistence(err, "error de base de datos")
}
