package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// LotePrecio records one bulk price recalculation run.
// Rows are immutable except for Revertido.
type LotePrecio struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID *uuid.UUID `gorm:"type:uuid;index"`
	// Parametros holds {"pct_global", "pct_by_tech", "round_mode"} as sent by the operator.
	Parametros          datatypes.JSON `gorm:"type:jsonb;not null"`
	Nota                string         `gorm:"not null;default:''"`
	CantidadActualizada int            `gorm:"not null;default:0"`
	Revertido           bool           `gorm:"not null;default:false"`
	CreatedAt           time.Time      `gorm:"index"`

	Usuario *Usuario         `gorm:"foreignKey:UsuarioID"`
	Items   []ItemLotePrecio `gorm:"foreignKey:LoteID;constraint:OnDelete:CASCADE"`
}

func (LotePrecio) TableName() string { return "lotes_precio" }

// ItemLotePrecio is one product changed by a batch.
type ItemLotePrecio struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LoteID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PrecioAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioNuevo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (ItemLotePrecio) TableName() string { return "items_lote_precio" }
