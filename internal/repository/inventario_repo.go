package repository

import (
	"context"

	"modapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioRepository manages size/color variants and their stock.
type InventarioRepository interface {
	Create(ctx context.Context, inv *model.Inventario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Inventario, error)
	FindByCodigoInterno(ctx context.Context, codigo string) (*model.Inventario, error)
	FindByProductoID(ctx context.Context, productoID uuid.UUID, soloEnStock bool) ([]model.Inventario, error)
	Update(ctx context.Context, inv *model.Inventario) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListBajoStock(ctx context.Context) ([]model.Inventario, error)

	// Used inside sale transactions — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Inventario, error)
	// DescontarStockTx decrements stock only when enough is available.
	// Returns the number of rows affected: 0 means insufficient stock and
	// the row is untouched. The conditional UPDATE is the single authority
	// for the "stock never goes negative" invariant; Postgres row locking
	// serializes concurrent decrements against the same variant.
	DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) (int64, error)
	ReponerStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error

	ListMovimientos(ctx context.Context, inventarioID uuid.UUID, limit int) ([]model.MovimientoStock, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type inventarioRepo struct{ db *gorm.DB }

func NewInventarioRepository(db *gorm.DB) InventarioRepository { return &inventarioRepo{db: db} }

func (r *inventarioRepo) DB() *gorm.DB { return r.db }

func (r *inventarioRepo) Create(ctx context.Context, inv *model.Inventario) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *inventarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Inventario, error) {
	var inv model.Inventario
	err := r.db.WithContext(ctx).Preload("Producto.Marca").First(&inv, id).Error
	return &inv, err
}

func (r *inventarioRepo) FindByCodigoInterno(ctx context.Context, codigo string) (*model.Inventario, error) {
	var inv model.Inventario
	err := r.db.WithContext(ctx).Preload("Producto.Marca").
		Where("codigo_interno = ? AND activo = true", codigo).First(&inv).Error
	return &inv, err
}

func (r *inventarioRepo) FindByProductoID(ctx context.Context, productoID uuid.UUID, soloEnStock bool) ([]model.Inventario, error) {
	var variantes []model.Inventario
	q := r.db.WithContext(ctx).Where("producto_id = ? AND activo = true", productoID)
	if soloEnStock {
		q = q.Where("stock_actual > 0")
	}
	err := q.Order("talla ASC, color ASC").Find(&variantes).Error
	return variantes, err
}

func (r *inventarioRepo) Update(ctx context.Context, inv *model.Inventario) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *inventarioRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Inventario{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *inventarioRepo) ListBajoStock(ctx context.Context) ([]model.Inventario, error) {
	var variantes []model.Inventario
	err := r.db.WithContext(ctx).Preload("Producto").
		Where("activo = true AND stock_actual <= stock_minimo").
		Order("stock_actual ASC").Find(&variantes).Error
	return variantes, err
}

func (r *inventarioRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Inventario, error) {
	var inv model.Inventario
	err := tx.Preload("Producto").First(&inv, id).Error
	return &inv, err
}

func (r *inventarioRepo) DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) (int64, error) {
	res := tx.Model(&model.Inventario{}).
		Where("id = ? AND activo = true AND stock_actual >= ?", id, cantidad).
		Update("stock_actual", gorm.Expr("stock_actual - ?", cantidad))
	return res.RowsAffected, res.Error
}

func (r *inventarioRepo) ReponerStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return tx.Model(&model.Inventario{}).Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", cantidad)).Error
}

func (r *inventarioRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *inventarioRepo) ListMovimientos(ctx context.Context, inventarioID uuid.UUID, limit int) ([]model.MovimientoStock, error) {
	var movimientos []model.MovimientoStock
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if inventarioID != uuid.Nil {
		q = q.Where("inventario_id = ?", inventarioID)
	}
	err := q.Find(&movimientos).Error
	return movimientos, err
}
