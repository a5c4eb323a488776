package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngresoStock is one entry of the stock log. CostoUnitario is the purchase
// cost and never touches the selling price.
type IngresoStock struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha         time.Time       `gorm:"type:date;not null;index"`
	ProductoID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	VarianteID    *uuid.UUID      `gorm:"type:uuid;index"`
	Cantidad      int             `gorm:"not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Nota          string          `gorm:"not null;default:''"`
	// Origen is the SKU or name typed by the operator
	Origen    string `gorm:"not null;default:''"`
	CreatedAt time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Variante *Variante `gorm:"foreignKey:VarianteID"`
}

// TableName overrides GORM's default pluralization (ingreso_stocks → ingresos_stock).
func (IngresoStock) TableName() string { return "ingresos_stock" }
