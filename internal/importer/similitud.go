package importer

import (
	"errors"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/shopspring/decimal"
)

// UmbralSugerencia is the minimum similarity for a fuzzy match to be offered.
const UmbralSugerencia = 0.86

var ErrPrecioInvalido = errors.New("precio ARS inválido")

// Normalizar lower-cases s and keeps only letters and digits.
func Normalizar(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.ToLower(s))
}

func runas(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Similitud is the matching-blocks ratio (2*M/T) of the normalized strings,
// in [0, 1]. Anything that normalizes to nothing scores 0.
func Similitud(a, b string) float64 {
	na, nb := Normalizar(a), Normalizar(b)
	if na == "" || nb == "" {
		return 0
	}
	return difflib.NewMatcher(runas(na), runas(nb)).Ratio()
}

// Referencia is the slice of a catalog product needed for matching.
type Referencia struct {
	ID     uuid.UUID
	SKU    string
	Nombre string
}

// Sugerencia is the best fuzzy match found for a candidate name.
type Sugerencia struct {
	ID       uuid.UUID
	Etiqueta string
	Score    float64
}

// Porcentaje is Score as a rounded percentage.
func (s Sugerencia) Porcentaje() int {
	return int(math.Round(s.Score * 100))
}

func etiqueta(r Referencia) string {
	sku, nombre := r.SKU, r.Nombre
	if sku == "" {
		sku = "—"
	}
	if nombre == "" {
		nombre = "—"
	}
	return sku + " · " + nombre
}

// MejorSugerencia scores nombre against both SKU and name of every reference
// and returns the best one if it reaches umbral. Ties keep the first seen.
func MejorSugerencia(nombre string, refs []Referencia, umbral float64) (Sugerencia, bool) {
	var mejor Sugerencia
	for _, r := range refs {
		score := math.Max(Similitud(nombre, r.SKU), Similitud(nombre, r.Nombre))
		if score > mejor.Score {
			mejor = Sugerencia{ID: r.ID, Etiqueta: etiqueta(r), Score: score}
		}
	}
	if mejor.Score >= umbral && mejor.Score > 0 {
		return mejor, true
	}
	return Sugerencia{}, false
}

// ParsePrecioARS reads the raw price text of an ARS candidate: dots are
// thousands separators and the comma is the decimal mark ("1.234,56").
func ParsePrecioARS(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrPrecioInvalido
	}
	return d, nil
}
