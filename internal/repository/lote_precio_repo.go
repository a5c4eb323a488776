package repository

import (
	"context"

	"tienda/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LotePrecioRepository stores bulk price batches and their items.
type LotePrecioRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.LotePrecio, error)
	// List returns the most recent batches first, without items.
	List(ctx context.Context, limit int) ([]model.LotePrecio, error)

	// CreateTx inserts the batch together with its Items.
	CreateTx(tx *gorm.DB, l *model.LotePrecio) error
	// FindForUpdateTx loads a batch with its items and locks the batch row.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.LotePrecio, error)
	MarcarRevertidoTx(tx *gorm.DB, id uuid.UUID) error
}

type lotePrecioRepo struct{ db *gorm.DB }

func NewLotePrecioRepository(db *gorm.DB) LotePrecioRepository { return &lotePrecioRepo{db: db} }

func (r *lotePrecioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LotePrecio, error) {
	var l model.LotePrecio
	err := r.db.WithContext(ctx).
		Preload("Usuario").
		Preload("Items.Producto").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lotePrecioRepo) List(ctx context.Context, limit int) ([]model.LotePrecio, error) {
	if limit < 1 || limit > 200 {
		limit = 20
	}
	var lotes []model.LotePrecio
	err := r.db.WithContext(ctx).
		Preload("Usuario").
		Order("created_at DESC").
		Limit(limit).
		Find(&lotes).Error
	return lotes, err
}

func (r *lotePrecioRepo) CreateTx(tx *gorm.DB, l *model.LotePrecio) error {
	return tx.Create(l).Error
}

func (r *lotePrecioRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.LotePrecio, error) {
	var l model.LotePrecio
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items.Producto").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lotePrecioRepo) MarcarRevertidoTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.LotePrecio{}).Where("id = ?", id).Update("revertido", true).Error
}
