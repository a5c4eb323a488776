package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria groups products for browsing. Slug is the identity used when a
// category is created on the fly from a typed name.
type Categoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"not null"`
	Slug        string    `gorm:"type:varchar(140);uniqueIndex;not null"`
	Descripcion *string
	Activo      bool `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }
