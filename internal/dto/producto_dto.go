package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearProductoRequest accepts the category either by id or by name; a name
// that does not exist yet is created on the fly. PrecioBase and
// Variante.PrecioOverride take operator-typed amounts ("1.234,56", "$ 900").
type CrearProductoRequest struct {
	SKU         string                `json:"sku"          validate:"required,max=64"`
	Nombre      string                `json:"nombre"       validate:"max=200"`
	Descripcion *string               `json:"descripcion"`
	Tecnica     string                `json:"tecnica"`
	PrecioBase  string                `json:"precio_base"`
	Activo      *bool                 `json:"activo"`
	CategoriaID *string               `json:"categoria_id" validate:"omitempty,uuid"`
	Categoria   string                `json:"categoria"    validate:"max=140"`
	Variante    *CrearVarianteRequest `json:"variante"`
}

type CrearVarianteRequest struct {
	Color          string  `json:"color"           validate:"max=64"`
	Talle          string  `json:"talle"           validate:"max=32"`
	SKU            *string `json:"sku"             validate:"omitempty,max=64"`
	Activo         *bool   `json:"activo"`
	Stock          int     `json:"stock"           validate:"min=0"`
	PrecioOverride string  `json:"precio_override"`
}

type ActualizarTecnicaRequest struct {
	Tecnica string `json:"tecnica" validate:"required"`
}

// ActualizarCategoriaProductoRequest clears the category when both fields are empty.
type ActualizarCategoriaProductoRequest struct {
	CategoriaID *string `json:"categoria_id" validate:"omitempty,uuid"`
	Categoria   string  `json:"categoria"    validate:"max=140"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// ProductoFilter drives search, catalog export and the active product scans.
type ProductoFilter struct {
	Q           string `form:"q"`
	Tecnica     string `form:"tecnica"`
	SoloActivos bool   `form:"-"`
	// EnDescripcion extends Q to the description (catalog export)
	EnDescripcion bool `form:"-"`
	Limit         int  `form:"limit,default=30" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VarianteResponse struct {
	ID        string          `json:"id"`
	SKU       *string         `json:"sku"`
	Color     string          `json:"color"`
	Talle     string          `json:"talle"`
	Etiqueta  string          `json:"etiqueta"`
	Precio    decimal.Decimal `json:"precio"`
	Stock     int             `json:"stock"`
	Activo    bool            `json:"activo"`
	ImagenURL string          `json:"imagen_url"`
}

type ProductoResponse struct {
	ID           string             `json:"id"`
	SKU          string             `json:"sku"`
	Nombre       string             `json:"nombre"`
	Descripcion  *string            `json:"descripcion"`
	PrecioBase   decimal.Decimal    `json:"precio_base"`
	Activo       bool               `json:"activo"`
	Tecnica      string             `json:"tecnica"`
	TecnicaLabel string             `json:"tecnica_label"`
	CategoriaID  *string            `json:"categoria_id"`
	Categoria    string             `json:"categoria,omitempty"`
	ImagenURL    string             `json:"imagen_url"`
	Variantes    []VarianteResponse `json:"variantes,omitempty"`
}

type ProductoListResponse struct {
	Data []ProductoResponse `json:"data"`
}

type VarianteListResponse struct {
	Data []VarianteResponse `json:"data"`
}

// ConsultaPreciosResponse is returned by the public price check endpoint (no auth required).
type ConsultaPreciosResponse struct {
	SKU       string          `json:"sku"`
	Nombre    string          `json:"nombre"`
	Precio    decimal.Decimal `json:"precio"`
	Tecnica   string          `json:"tecnica"`
	Stock     int             `json:"stock"`
	ImagenURL string          `json:"imagen_url"`
}
