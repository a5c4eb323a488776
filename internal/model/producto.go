package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog entry. PrecioBase is the price every variant inherits
// unless it carries its own override.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	PrecioBase  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo      bool            `gorm:"not null"`
	Tecnica     Tecnica         `gorm:"type:varchar(3);not null;default:'OTR'"`
	CategoriaID *uuid.UUID      `gorm:"type:uuid;index"`
	// ImagenPath is relative to MEDIA_ROOT
	ImagenPath *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
	Variantes []Variante `gorm:"foreignKey:ProductoID"`
}

// Etiqueta is the "SKU · Nombre" label shown next to import matches.
func (p *Producto) Etiqueta() string {
	sku, nombre := p.SKU, p.Nombre
	if sku == "" {
		sku = "—"
	}
	if nombre == "" {
		nombre = "—"
	}
	return sku + " · " + nombre
}

// ImagenCatalogo returns the first usable image path: the product's own image,
// else the first active variant that has one.
func (p *Producto) ImagenCatalogo() string {
	if p.ImagenPath != nil && *p.ImagenPath != "" {
		return *p.ImagenPath
	}
	for _, v := range p.Variantes {
		if v.Activo && v.ImagenPath != nil && *v.ImagenPath != "" {
			return *v.ImagenPath
		}
	}
	return ""
}
