package repository

import (
	"context"
	"strings"

	"tienda/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaRepository defines CRUD operations for Categoria.
type CategoriaRepository interface {
	Crear(ctx context.Context, c *model.Categoria) error
	// Listar returns up to 20 active categories by name, optionally filtered by q (ILIKE).
	Listar(ctx context.Context, q string) ([]model.Categoria, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	ObtenerPorSlug(ctx context.Context, slug string) (*model.Categoria, error)
	// ObtenerOCrearTx finds the category by c.Slug or inserts c.
	ObtenerOCrearTx(tx *gorm.DB, c *model.Categoria) error
	DB() *gorm.DB
}

type categoriaRepository struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository {
	return &categoriaRepository{db: db}
}

func (r *categoriaRepository) Crear(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaRepository) Listar(ctx context.Context, q string) ([]model.Categoria, error) {
	var list []model.Categoria
	db := r.db.WithContext(ctx).Where("activo = true")
	if q = strings.TrimSpace(q); q != "" {
		db = db.Where("nombre ILIKE ?", "%"+q+"%")
	}
	err := db.Order("nombre asc").Limit(20).Find(&list).Error
	return list, err
}

func (r *categoriaRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepository) ObtenerPorSlug(ctx context.Context, slug string) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepository) ObtenerOCrearTx(tx *gorm.DB, c *model.Categoria) error {
	return tx.Where(model.Categoria{Slug: c.Slug}).Attrs(model.Categoria{Nombre: c.Nombre, Activo: true}).FirstOrCreate(c).Error
}

func (r *categoriaRepository) DB() *gorm.DB { return r.db }
