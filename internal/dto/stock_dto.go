package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// IngresoStockRequest registers goods received for one product. Without
// VarianteID the first active variant is used, or a base variant is created.
type IngresoStockRequest struct {
	ProductoID    string  `json:"producto_id"    validate:"required,uuid"`
	VarianteID    *string `json:"variante_id"    validate:"omitempty,uuid"`
	Cantidad      int     `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario string  `json:"costo_unitario"`
	Nota          string  `json:"nota"           validate:"max=255"`
	// Fecha is YYYY-MM-DD; empty means today
	Fecha string `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
}

// IngresoLoteRequest is the text form of a batch intake, one entry per line:
// fecha,sku_o_nombre,color,talle,cantidad[,costo[,nota]]
type IngresoLoteRequest struct {
	Lineas string `json:"lineas" validate:"required"`
}

type BitacoraFilter struct {
	Limit int `form:"limit,default=500" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type IngresoStockResponse struct {
	IngresoID     string          `json:"ingreso_id"`
	VarianteID    string          `json:"variante_id"`
	NuevoStock    int             `json:"nuevo_stock"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
}

type IngresoLoteResponse struct {
	OK       int      `json:"ok"`
	ConError int      `json:"con_error"`
	Errores  []string `json:"errores"`
	Mensaje  string   `json:"mensaje"`
}

type BitacoraItemResponse struct {
	ID            string          `json:"id"`
	Fecha         string          `json:"fecha"`
	ProductoID    string          `json:"producto_id"`
	SKU           string          `json:"sku"`
	Producto      string          `json:"producto"`
	Variante      string          `json:"variante"`
	Cantidad      int             `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Nota          string          `json:"nota"`
	Origen        string          `json:"origen"`
}

type BitacoraResponse struct {
	Data []BitacoraItemResponse `json:"data"`
}
