package repository

import (
	"context"
	"fmt"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/dto"
	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"gorm.io/gorm"
)

// PedidoItemStore reads the line items of an order.
type PedidoItemStore interface {
	ListarPorPedido(ctx context.Context, pedidoID uint) ([]model.PedidoItem, error)
}

type PedidoRepository interface {
	PedidoItemStore

	// Create inserts the pedido together with its Items.
	Create(ctx context.Context, p *model.Pedido) error
	FindByID(ctx context.Context, id uint) (*model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	// UpdateFieldsTx applies a partial update and reports affected rows.
	UpdateFieldsTx(tx *gorm.DB, id uint, fields map[string]interface{}) (int64, error)
	// DeleteTx removes the pedido and its items.
	DeleteTx(tx *gorm.DB, id uint) (int64, error)
	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) Create(ctx context.Context, p *model.Pedido) error {
	return persist(r.db.WithContext(ctx).Create(p).Error)
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uint) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&p, id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("pedido %d no encontrado", id))
	}
	return &p, nil
}

func (r *pedidoRepo) ListarPorPedido(ctx context.Context, pedidoID uint) ([]model.PedidoItem, error) {
	var items []model.PedidoItem
	err := r.db.WithContext(ctx).Where("pedido_id = ?", pedidoID).Order("id ASC").Find(&items).Error
	return items, persist(err)
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID != 0 {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, persist(err)
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&pedidos).Error
	return pedidos, total, persist(err)
}

func (r *pedidoRepo) UpdateFieldsTx(tx *gorm.DB, id uint, fields map[string]interface{}) (int64, error) {
	res := tx.Model(&model.Pedido{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, persist(res.Error)
}

func (r *pedidoRepo) DeleteTx(tx *gorm.DB, id uint) (int64, error) {
	if err := tx.Where("pedido_id = ?", id).Delete(&model.PedidoItem{}).Error; err != nil {
		return 0, persist(err)
	}
	res := tx.Delete(&model.Pedido{}, id)
	return res.RowsAffected, persist(res.Error)
}
