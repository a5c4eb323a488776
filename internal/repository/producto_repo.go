package repository

import (
	"context"
	"errors"
	"strings"

	"tienda/internal/dto"
	"tienda/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs. Lookups that find nothing return
// gorm.ErrRecordNotFound.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	// FindBySKU looks up an active product by exact SKU (public price check).
	FindBySKU(ctx context.Context, sku string) (*model.Producto, error)
	// ExisteSKU is a case-insensitive uniqueness check.
	ExisteSKU(ctx context.Context, sku string) (bool, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error)
	// ListReferencias returns id, SKU and name of every product for fuzzy matching.
	ListReferencias(ctx context.Context) ([]model.Producto, error)
	UpdateCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) error

	// Used inside transactions; callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Producto) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	// FindExactoTx matches clave case-insensitively against SKU, then name.
	FindExactoTx(tx *gorm.DB, clave string) (*model.Producto, error)
	ListActivosTx(tx *gorm.DB) ([]model.Producto, error)
	UpdatePrecioTx(tx *gorm.DB, id uuid.UUID, precio decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.CreateTx(r.db.WithContext(ctx), p)
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Preload("Categoria").
		Preload("Variantes", func(db *gorm.DB) *gorm.DB { return db.Order("color, talle") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindBySKU(ctx context.Context, sku string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Variantes", "activo = true").
		Where("sku = ? AND activo = true", sku).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) ExisteSKU(ctx context.Context, sku string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("lower(sku) = lower(?)", strings.TrimSpace(sku)).Count(&n).Error
	return n > 0, err
}

func (r *productoRepo) FindExactoTx(tx *gorm.DB, clave string) (*model.Producto, error) {
	clave = strings.TrimSpace(clave)
	var p model.Producto
	err := tx.Where("lower(sku) = lower(?)", clave).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	p = model.Producto{}
	if err := tx.Where("lower(nombre) = lower(?)", clave).Order("created_at").First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error) {
	q := r.db.WithContext(ctx).Model(&model.Producto{})

	if filter.SoloActivos {
		q = q.Where("activo = true")
	}
	if s := strings.TrimSpace(filter.Q); s != "" {
		like := "%" + s + "%"
		if filter.EnDescripcion {
			q = q.Where("nombre ILIKE ? OR sku ILIKE ? OR descripcion ILIKE ?", like, like, like)
		} else {
			q = q.Where("nombre ILIKE ? OR sku ILIKE ?", like, like)
		}
	}
	if filter.Tecnica != "" {
		q = q.Where("tecnica = ?", filter.Tecnica)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var productos []model.Producto
	err := q.Preload("Categoria").
		Preload("Variantes", func(db *gorm.DB) *gorm.DB {
			return db.Where("activo = true").Order("color, talle")
		}).
		Order("nombre ASC, sku ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ListReferencias(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Select("id", "sku", "nombre").Order("sku").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ListActivosTx(tx *gorm.DB) ([]model.Producto, error) {
	var productos []model.Producto
	err := tx.Where("activo = true").Order("sku").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) UpdatePrecioTx(tx *gorm.DB, id uuid.UUID, precio decimal.Decimal) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).Update("precio_base", precio).Error
}

func (r *productoRepo) UpdateCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
