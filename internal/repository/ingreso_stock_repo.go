package repository

import (
	"context"

	"tienda/internal/model"

	"gorm.io/gorm"
)

// IngresoStockRepository is the append-only stock log.
type IngresoStockRepository interface {
	CreateTx(tx *gorm.DB, in *model.IngresoStock) error
	// List returns the latest entries, newest date first, with product and variant.
	List(ctx context.Context, limit int) ([]model.IngresoStock, error)
}

type ingresoStockRepo struct{ db *gorm.DB }

func NewIngresoStockRepository(db *gorm.DB) IngresoStockRepository {
	return &ingresoStockRepo{db: db}
}

func (r *ingresoStockRepo) CreateTx(tx *gorm.DB, in *model.IngresoStock) error {
	return tx.Create(in).Error
}

func (r *ingresoStockRepo) List(ctx context.Context, limit int) ([]model.IngresoStock, error) {
	if limit < 1 || limit > 500 {
		limit = 500
	}
	var rows []model.IngresoStock
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Preload("Variante").
		Order("fecha DESC, created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
