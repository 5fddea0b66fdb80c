package repository

import (
	"context"
	"strings"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"gorm.io/gorm"
)

// CodigoDescuentoRepository matches codes case-insensitively. The usage
// counter moves only through the conditional relative updates below, so
// 0 ≤ usos_actuales ≤ usos_maximos holds under any interleaving.
type CodigoDescuentoRepository interface {
	Create(ctx context.Context, c *model.CodigoDescuento) error
	FindByCodigo(ctx context.Context, codigo string) (*model.CodigoDescuento, error)
	List(ctx context.Context) ([]model.CodigoDescuento, error)
	// IncrementarUso adds one use if the code is active and below its cap.
	IncrementarUso(ctx context.Context, codigo string) (int64, error)
	// DecrementarUso removes one use if the counter is above zero.
	DecrementarUso(ctx context.Context, codigo string) (int64, error)
}

type codigoDescuentoRepo struct{ db *gorm.DB }

func NewCodigoDescuentoRepository(db *gorm.DB) CodigoDescuentoRepository {
	return &codigoDescuentoRepo{db: db}
}

func normalizar(codigo string) string { return strings.ToUpper(codigo) }

func (r *codigoDescuentoRepo) Create(ctx context.Context, c *model.CodigoDescuento) error {
	c.Codigo = normalizar(c.Codigo)
	return persist(r.db.WithContext(ctx).Create(c).Error)
}

func (r *codigoDescuentoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.CodigoDescuento, error) {
	var c model.CodigoDescuento
	err := r.db.WithContext(ctx).Where("UPPER(codigo) = ?", normalizar(codigo)).First(&c).Error
	if err != nil {
		return nil, translate(err, "código de descuento no encontrado")
	}
	return &c, nil
}

func (r *codigoDescuentoRepo) List(ctx context.Context) ([]model.CodigoDescuento, error) {
	var codigos []model.CodigoDescuento
	err := r.db.WithContext(ctx).Order("codigo ASC").Find(&codigos).Error
	return codigos, persist(err)
}

func (r *codigoDescuentoRepo) IncrementarUso(ctx context.Context, codigo string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.CodigoDescuento{}).
		Where("UPPER(codigo) = ? AND activo = ? AND usos_actuales < usos_maximos", normalizar(codigo), true).
		Update("usos_actuales", gorm.Expr("usos_actuales + 1"))
	return res.RowsAffected, persist(res.Error)
}

func (r *codigoDescuentoRepo) DecrementarUso(ctx context.Context, codigo string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.CodigoDescuento{}).
		Where("UPPER(codigo) = ? AND usos_actuales > 0", normalizar(codigo)).
		Update("usos_actuales", gorm.Expr("usos_actuales - 1"))
	return res.RowsAffected, persist(res.Error)
}
