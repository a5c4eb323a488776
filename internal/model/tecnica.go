package model

import "strings"

// Tecnica is the production technique a product belongs to. Bulk pricing
// overrides are keyed by it.
type Tecnica string

const (
	TecnicaSublimacion Tecnica = "SUB"
	TecnicaLaser       Tecnica = "LAS"
	Tecnica3D          Tecnica = "3D"
	TecnicaOtros       Tecnica = "OTR"
)

// Tecnicas lists every valid technique in display order.
var Tecnicas = []Tecnica{TecnicaSublimacion, TecnicaLaser, Tecnica3D, TecnicaOtros}

var tecnicaLabels = map[Tecnica]string{
	TecnicaSublimacion: "Sublimación",
	TecnicaLaser:       "Grabado láser",
	Tecnica3D:          "Impresión 3D",
	TecnicaOtros:       "Otros",
}

// Label returns the human readable name of the technique.
func (t Tecnica) Label() string {
	if l, ok := tecnicaLabels[t]; ok {
		return l
	}
	return tecnicaLabels[TecnicaOtros]
}

// Valida reports whether t is one of the declared techniques.
func (t Tecnica) Valida() bool {
	_, ok := tecnicaLabels[t]
	return ok
}

// ParseTecnica maps free text ("sub", "Sublimación", "laser", "3d", "LAS"...)
// to a technique. ok is false when the input is blank or unrecognised; the
// returned value is then TecnicaOtros.
func ParseTecnica(raw string) (Tecnica, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return TecnicaOtros, false
	case strings.HasPrefix(s, "sub"):
		return TecnicaSublimacion, true
	case s == "las" || strings.Contains(s, "laser") || strings.Contains(s, "láser"):
		return TecnicaLaser, true
	case s == "3d" || s == "impresion 3d" || s == "impresión 3d":
		return Tecnica3D, true
	case strings.HasPrefix(s, "otr"):
		return TecnicaOtros, true
	}
	return TecnicaOtros, false
}
