package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variante is a color/size combination of a product and the unit that holds
// stock. The base variant has empty Color and Talle.
type Variante struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_variante_producto_color_talle"`
	SKU            *string          `gorm:"uniqueIndex"`
	Color          string           `gorm:"type:varchar(64);not null;default:'';uniqueIndex:idx_variante_producto_color_talle"`
	Talle          string           `gorm:"type:varchar(32);not null;default:'';uniqueIndex:idx_variante_producto_color_talle"`
	PrecioOverride *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Stock          int              `gorm:"not null;default:0"`
	Activo         bool             `gorm:"not null"`
	ImagenPath     *string

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// Etiqueta is "color talle", or "Única" for the base variant.
func (v *Variante) Etiqueta() string {
	l := strings.TrimSpace(v.Color + " " + v.Talle)
	if l == "" {
		return "Única"
	}
	return l
}

// Precio resolves the selling price of the variant against its product base price.
func (v *Variante) Precio(base decimal.Decimal) decimal.Decimal {
	if v.PrecioOverride != nil {
		return *v.PrecioOverride
	}
	return base
}
