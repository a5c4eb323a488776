package dto

import (
	"tienda/internal/importer"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ConfirmarImportacionRequest holds one action per previewed row, by index:
// "apply" (default, also for missing rows), "ignore" or "merge:<producto_id>".
type ConfirmarImportacionRequest struct {
	SoloActualizar bool     `json:"solo_actualizar"`
	Acciones       []string `json:"acciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PrevisualizarImportacionResponse struct {
	Candidatos     []importer.Candidato `json:"candidatos"`
	Total          int                  `json:"total"`
	SoloActualizar bool                 `json:"solo_actualizar"`
}

type ItemImportado struct {
	Fila           int              `json:"fila"`
	Nombre         string           `json:"nombre"`
	ProductoID     string           `json:"producto_id"`
	SKU            string           `json:"sku"`
	Moneda         importer.Moneda  `json:"moneda"`
	PrecioTexto    string           `json:"precio_texto"`
	Precio         *decimal.Decimal `json:"precio,omitempty"`
	PrecioAnterior *decimal.Decimal `json:"precio_anterior,omitempty"`
	Creado         bool             `json:"creado"`
	Cambio         bool             `json:"cambio"`
}

type ItemOmitido struct {
	Fila   int    `json:"fila"`
	Nombre string `json:"nombre"`
	Motivo string `json:"motivo"`
}

type ResultadoImportacion struct {
	Importados        int             `json:"importados"`
	Actualizados      int             `json:"actualizados"`
	Omitidos          int             `json:"omitidos"`
	ItemsImportados   []ItemImportado `json:"items_importados"`
	ItemsActualizados []ItemImportado `json:"items_actualizados"`
	ItemsOmitidos     []ItemOmitido   `json:"items_omitidos"`
	USDARevisar       []ItemImportado `json:"usd_a_revisar"`
	NoEncontrados     []string        `json:"no_encontrados"`
	NoVistosActivos   []string        `json:"no_vistos_activos"`
	Mensaje           string          `json:"mensaje"`
}
