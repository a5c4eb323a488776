package pricing

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrPorcentajeInvalido = errors.New("alguno de los porcentajes no es válido")
	ErrMontoInvalido      = errors.New("monto inválido")
)

// PorcentajeMaximo bounds a single change in either direction.
var PorcentajeMaximo = decimal.NewFromInt(1000)

var porcentajeRe = regexp.MustCompile(`^[+-]?(\d+([.,]\d*)?|[.,]\d+)$`)

// ParsePorcentaje parses "10", "-5,5" or "2.25". A blank input returns nil
// (no value). Anything else that is not a plain decimal within
// ±PorcentajeMaximo is ErrPorcentajeInvalido; exponent notation included.
// The result is rounded half-up to two decimals.
func ParsePorcentaje(raw string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if !porcentajeRe.MatchString(s) {
		return nil, ErrPorcentajeInvalido
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || d.Abs().GreaterThan(PorcentajeMaximo) {
		return nil, ErrPorcentajeInvalido
	}
	d = d.Round(2)
	return &d, nil
}

var noNumerico = regexp.MustCompile(`[^\d,.\-]`)

// ParseMonto accepts operator-typed amounts such as "1.234,56", "1234.56",
// "$ 1.234,56" or "U$S 5". Currency symbols and spaces are dropped; when both
// separators appear the dot is the thousands separator.
func ParseMonto(raw string) (decimal.Decimal, error) {
	s := noNumerico.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return decimal.Zero, ErrMontoInvalido
	}
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMontoInvalido
	}
	return d, nil
}
