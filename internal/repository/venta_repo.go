package repository

import (
	"context"
	"fmt"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VentaRepository interface {
	Create(ctx context.Context, v *model.Venta) error
	// CreateForPedidoTx inserts v unless a venta for v.PedidoID already exists.
	// It reports false, without error, when the insert was skipped.
	CreateForPedidoTx(tx *gorm.DB, v *model.Venta) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.Venta, error)
	FindByPedidoIDTx(tx *gorm.DB, pedidoID uint) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	UpdateMetodoPago(ctx context.Context, id uint, metodo string) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, v *model.Venta) error {
	return persist(r.db.WithContext(ctx).Create(v).Error)
}

func (r *ventaRepo) CreateForPedidoTx(tx *gorm.DB, v *model.Venta) (bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pedido_id"}},
		DoNothing: true,
	}).Create(v)
	if res.Error != nil {
		return false, persist(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ventaRepo) FindByID(ctx context.Context, id uint) (*model.Venta, error) {
	var v model.Venta
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("venta %d no encontrada", id))
	}
	return &v, nil
}

func (r *ventaRepo) FindByPedidoIDTx(tx *gorm.DB, pedidoID uint) (*model.Venta, error) {
	var v model.Venta
	if err := tx.Where("pedido_id = ?", pedidoID).First(&v).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("venta del pedido %d no encontrada", pedidoID))
	}
	return &v, nil
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	}
	if filter.MetodoPago != "" {
		q = q.Where("metodo_pago = ?", filter.MetodoPago)
	}
	if filter.PedidoID != 0 {
		q = q.Where("pedido_id = ?", filter.PedidoID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, persist(err)
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC, id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, total, persist(err)
}

func (r *ventaRepo) UpdateMetodoPago(ctx context.Context, id uint, metodo string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Venta{}).Where("id = ?", id).Update("metodo_pago", metodo)
	return res.RowsAffected, persist(res.Error)
}

func (r *ventaRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Venta{}, id)
	return res.RowsAffected, persist(res.Error)
}
