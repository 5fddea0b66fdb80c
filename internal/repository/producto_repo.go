package repository

import (
	"context"
	"fmt"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/model"

	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Stock is only ever changed through UpdateStockTx, a relative update, so
// concurrent movements never lose each other's writes.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	CreateTx(tx *gorm.DB, p *model.Producto) error
	FindByID(ctx context.Context, id uint) (*model.Producto, error)
	List(ctx context.Context) ([]model.Producto, error)
	ListBajoMinimo(ctx context.Context) ([]model.Producto, error)

	// UpdateStockTx applies stock = stock + delta and reports affected rows.
	// Zero rows means the product does not exist.
	UpdateStockTx(tx *gorm.DB, id uint, delta int) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return persist(r.db.WithContext(ctx).Create(p).Error)
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return persist(tx.Create(p).Error)
}

func (r *productoRepo) FindByID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("producto %d no encontrado", id))
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Order("id ASC").Find(&productos).Error
	return productos, persist(err)
}

func (r *productoRepo) ListBajoMinimo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = ? AND stock < stock_minimo", true).
		Order("stock ASC, id ASC").
		Find(&productos).Error
	return productos, persist(err)
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uint, delta int) (int64, error) {
	res := tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta))
	return res.RowsAffected, persist(res.Error)
}
