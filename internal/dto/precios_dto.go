package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AplicarPreciosRequest carries percentages as typed by the operator ("10",
// "-5,5"); blank means "not set". PctPorTecnica is keyed by SUB, LAS, 3D, OTR.
type AplicarPreciosRequest struct {
	PctGlobal     string            `json:"pct_global"`
	PctPorTecnica map[string]string `json:"pct_por_tecnica"`
	ModoRedondeo  string            `json:"modo_redondeo"`
	Nota          string            `json:"nota"          validate:"max=255"`
	Previsualizar bool              `json:"previsualizar"`
}

type LoteFilter struct {
	Limit int `form:"limit,default=20" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemLoteResponse struct {
	ProductoID     string          `json:"producto_id"`
	SKU            string          `json:"sku"`
	Nombre         string          `json:"nombre,omitempty"`
	PrecioAnterior decimal.Decimal `json:"precio_anterior"`
	PrecioNuevo    decimal.Decimal `json:"precio_nuevo"`
}

// LoteResponse describes a stored batch, or a preview when Previsualizacion
// is set (ID and CreatedAt are then empty).
type LoteResponse struct {
	ID                  string             `json:"id,omitempty"`
	CreatedAt           string             `json:"created_at,omitempty"`
	Usuario             string             `json:"usuario,omitempty"`
	Parametros          json.RawMessage    `json:"parametros"`
	Nota                string             `json:"nota"`
	CantidadActualizada int                `json:"cantidad_actualizada"`
	Revertido           bool               `json:"revertido"`
	Previsualizacion    bool               `json:"previsualizacion,omitempty"`
	Mensaje             string             `json:"mensaje,omitempty"`
	Items               []ItemLoteResponse `json:"items,omitempty"`
}

type LoteListResponse struct {
	Data []LoteResponse `json:"data"`
}

type RevertirLoteResponse struct {
	LoteID      string `json:"lote_id"`
	Restaurados int    `json:"restaurados"`
	YaRevertido bool   `json:"ya_revertido"`
	Mensaje     string `json:"mensaje"`
}
