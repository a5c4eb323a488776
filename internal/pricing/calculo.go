package pricing

import (
	"encoding/json"

	"tienda/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	cien = decimal.NewFromInt(100)
	// PrecioMinimo is the floor for any recalculated price, even at -100%.
	PrecioMinimo = decimal.NewFromInt(1)
)

// Parametros are the inputs of one bulk recalculation.
type Parametros struct {
	Global decimal.Decimal
	// PorTecnica overrides Global for products of that technique. A missing
	// key means "use Global"; an explicit zero skips the technique.
	PorTecnica map[model.Tecnica]decimal.Decimal
	Modo       ModoRedondeo
}

// Delta returns the effective percentage for a technique.
func (p Parametros) Delta(t model.Tecnica) decimal.Decimal {
	if d, ok := p.PorTecnica[t]; ok {
		return d
	}
	return p.Global
}

// NuevoPrecio applies delta percent to anterior, rounds with modo and clamps
// to PrecioMinimo.
func NuevoPrecio(anterior, delta decimal.Decimal, modo ModoRedondeo) decimal.Decimal {
	factor := cien.Add(delta).Div(cien)
	nuevo := Redondear(anterior.Mul(factor), modo)
	if nuevo.LessThan(PrecioMinimo) {
		return PrecioMinimo
	}
	return nuevo
}

// Cambio is one planned price change.
type Cambio struct {
	ProductoID uuid.UUID
	SKU        string
	Anterior   decimal.Decimal
	Nuevo      decimal.Decimal
	Delta      decimal.Decimal
}

// Planificar computes the changes for productos. Products whose effective
// delta is zero, or whose price would not move, are left out.
func (p Parametros) Planificar(productos []model.Producto) []Cambio {
	var cambios []Cambio
	for _, pr := range productos {
		delta := p.Delta(pr.Tecnica)
		if delta.IsZero() {
			continue
		}
		nuevo := NuevoPrecio(pr.PrecioBase, delta, p.Modo)
		if nuevo.Equal(pr.PrecioBase) {
			continue
		}
		cambios = append(cambios, Cambio{
			ProductoID: pr.ID,
			SKU:        pr.SKU,
			Anterior:   pr.PrecioBase,
			Nuevo:      nuevo,
			Delta:      delta,
		})
	}
	return cambios
}

// blob is the persisted shape of Parametros. Every technique is present; a
// nil entry means the global value applied.
type blob struct {
	PctGlobal string             `json:"pct_global"`
	PctByTech map[string]*string `json:"pct_by_tech"`
	RoundMode string             `json:"round_mode"`
}

// JSON encodes the parameters for LotePrecio.Parametros.
func (p Parametros) JSON() ([]byte, error) {
	b := blob{
		PctGlobal: p.Global.StringFixed(2),
		PctByTech: make(map[string]*string, len(model.Tecnicas)),
		RoundMode: string(p.Modo),
	}
	for _, t := range model.Tecnicas {
		if d, ok := p.PorTecnica[t]; ok {
			s := d.StringFixed(2)
			b.PctByTech[string(t)] = &s
		} else {
			b.PctByTech[string(t)] = nil
		}
	}
	return json.Marshal(b)
}
