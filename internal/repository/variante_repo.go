package repository

import (
	"context"
	"errors"

	"tienda/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VarianteRepository handles the stock-holding variants of a product.
type VarianteRepository interface {
	ListActivas(ctx context.Context, productoID uuid.UUID) ([]model.Variante, error)

	CreateTx(tx *gorm.DB, v *model.Variante) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Variante, error)
	// PrimeraActivaTx returns the first active variant by color and size.
	PrimeraActivaTx(tx *gorm.DB, productoID uuid.UUID) (*model.Variante, error)
	// ObtenerOCrearTx returns the (producto, color, talle) variant, creating
	// it active with zero stock when missing. The bool reports a creation.
	ObtenerOCrearTx(tx *gorm.DB, productoID uuid.UUID, color, talle string) (*model.Variante, bool, error)
	// SumarStockTx adds delta and returns the resulting stock.
	SumarStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int, error)
}

type varianteRepo struct{ db *gorm.DB }

func NewVarianteRepository(db *gorm.DB) VarianteRepository { return &varianteRepo{db: db} }

func (r *varianteRepo) ListActivas(ctx context.Context, productoID uuid.UUID) ([]model.Variante, error) {
	var vs []model.Variante
	err := r.db.WithContext(ctx).
		Where("producto_id = ? AND activo = true", productoID).
		Order("color, talle").Find(&vs).Error
	return vs, err
}

func (r *varianteRepo) CreateTx(tx *gorm.DB, v *model.Variante) error {
	return tx.Create(v).Error
}

func (r *varianteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Variante, error) {
	var v model.Variante
	if err := tx.First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *varianteRepo) PrimeraActivaTx(tx *gorm.DB, productoID uuid.UUID) (*model.Variante, error) {
	var v model.Variante
	err := tx.Where("producto_id = ? AND activo = true", productoID).
		Order("color, talle").First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *varianteRepo) ObtenerOCrearTx(tx *gorm.DB, productoID uuid.UUID, color, talle string) (*model.Variante, bool, error) {
	var v model.Variante
	err := tx.Where("producto_id = ? AND color = ? AND talle = ?", productoID, color, talle).First(&v).Error
	if err == nil {
		return &v, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	v = model.Variante{ProductoID: productoID, Color: color, Talle: talle, Activo: true}
	if err := tx.Create(&v).Error; err != nil {
		return nil, false, err
	}
	return &v, true, nil
}

func (r *varianteRepo) SumarStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int, error) {
	if err := tx.Model(&model.Variante{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error; err != nil {
		return 0, err
	}
	var stock int
	err := tx.Model(&model.Variante{}).Where("id = ?", id).Pluck("stock", &stock).Error
	return stock, err
}
