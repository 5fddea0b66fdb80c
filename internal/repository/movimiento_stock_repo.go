package repository

import (
	"context"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"gorm.io/gorm"
)

type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error)
	// Delete removes the row only; the product's cached stock is left as is.
	Delete(ctx context.Context, id uint) (int64, error)
	// NetoPorProducto returns Σentrada − Σsalida for every product with movements.
	NetoPorProducto(ctx context.Context) (map[uint]int, error)
	DB() *gorm.DB
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) DB() *gorm.DB { return r.db }

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return persist(tx.Omit("Producto").Create(m).Error)
}

func (r *movimientoStockRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if filter.ProductoID != 0 {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, persist(err)
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movimientos []model.MovimientoStock
	err := q.Preload("Producto").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&movimientos).Error
	return movimientos, total, persist(err)
}

func (r *movimientoStockRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.MovimientoStock{}, id)
	return res.RowsAffected, persist(res.Error)
}

func (r *movimientoStockRepo) NetoPorProducto(ctx context.Context) (map[uint]int, error) {
	var rows []struct {
		ProductoID uint
		Neto       int
	}
	err := r.db.WithContext(ctx).Model(&model.MovimientoStock{}).
		Select("producto_id, SUM(CASE WHEN tipo = ? THEN cantidad ELSE -cantidad END) AS neto", model.MovimientoEntrada).
		Where("producto_id IS NOT NULL").
		Group("producto_id").
		Scan(&rows).Error
	if err != nil {
		return nil, persist(err)
	}
	neto := make(map[uint]int, len(rows))
	for _, row := range rows {
		neto[row.ProductoID] = row.Neto
	}
	return neto, nil
}
