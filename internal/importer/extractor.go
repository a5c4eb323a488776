// Package importer turns the text of a supplier price-list PDF into candidate
// (name, currency, price) rows and scores them against the catalog.
package importer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Moneda distinguishes prices the importer can apply (ARS) from those that
// must be reviewed by hand (USD).
type Moneda string

const (
	MonedaARS Moneda = "ARS"
	MonedaUSD Moneda = "USD"
)

// MarcadoresPorDefecto are running header/footer fragments of the supplier
// list the shop imports from.
var MarcadoresPorDefecto = []string{"GENESIS INSUMOS", "VIGENCIA:"}

var (
	precioRe    = regexp.MustCompile(`(?i)^\s*(?:U\$S\s*([\d.,]+)|\$\s*([\d.,]+))\s*$`)
	mayusculaRe = regexp.MustCompile(`^[A-ZÁÉÍÓÚÜÑ ]{3,}$`)
	espaciosRe  = regexp.MustCompile(`\s+`)
)

// Candidato is one row proposed for import, with its catalog match metadata.
type Candidato struct {
	Nombre             string     `json:"nombre"`
	Moneda             Moneda     `json:"moneda"`
	Precio             string     `json:"precio"`
	Linea              string     `json:"linea"`
	DuplicadoEnArchivo bool       `json:"duplicado_en_archivo"`
	ExactoID           *uuid.UUID `json:"exacto_id,omitempty"`
	ExactoEtiqueta     string     `json:"exacto_etiqueta,omitempty"`
	SugerenciaID       *uuid.UUID `json:"sugerencia_id,omitempty"`
	SugerenciaEtiqueta string     `json:"sugerencia_etiqueta,omitempty"`
	// SugerenciaScore is the similarity as a rounded percentage
	SugerenciaScore int `json:"sugerencia_score"`
}

// Extractor segments price-list text. The zero value uses no header markers;
// use NuevoExtractor.
type Extractor struct {
	marcadores []string
}

// NuevoExtractor builds an extractor with the given running header markers,
// or MarcadoresPorDefecto when none are given.
func NuevoExtractor(marcadores []string) *Extractor {
	if len(marcadores) == 0 {
		marcadores = MarcadoresPorDefecto
	}
	return &Extractor{marcadores: marcadores}
}

// EsEncabezado reports whether a line is noise that can never be part of a
// product name: blank, page/index markers, running headers, very short text,
// or an all-caps section title without a currency sign.
func (e *Extractor) EsEncabezado(linea string) bool {
	s := strings.TrimSpace(linea)
	if s == "" {
		return true
	}
	upper := strings.ToUpper(s)
	if strings.HasPrefix(strings.ToLower(s), "pág.") ||
		strings.Contains(upper, "ÍNDICE") || upper == "INDICE" {
		return true
	}
	for _, m := range e.marcadores {
		if strings.Contains(s, m) {
			return true
		}
	}
	if utf8.RuneCountInString(s) <= 2 {
		return true
	}
	if mayusculaRe.MatchString(s) && !strings.Contains(s, "$") && !strings.Contains(s, "U$S") {
		return true
	}
	return false
}

func esAgotado(s string) bool {
	return strings.Contains(strings.ToUpper(s), "AGOTAD")
}

// ExtraerTexto splits text into lines and runs Extraer.
func (e *Extractor) ExtraerTexto(texto string) []Candidato {
	return e.Extraer(strings.Split(strings.ReplaceAll(texto, "\r\n", "\n"), "\n"))
}

// Extraer walks the lines once. Name lines accumulate until a price line,
// which emits a candidate for the held name and then clears it, so a stray
// second price never reuses a name. Out-of-stock names are dropped.
func (e *Extractor) Extraer(lineas []string) []Candidato {
	var (
		nombre    string
		pendiente []string
		out       []Candidato
	)

	flush := func() {
		if len(pendiente) == 0 {
			return
		}
		c := strings.TrimSpace(espaciosRe.ReplaceAllString(strings.Join(pendiente, " "), " "))
		pendiente = pendiente[:0]
		if c != "" && !e.EsEncabezado(c) {
			nombre = c
		}
	}

	for _, raw := range lineas {
		ln := strings.TrimSpace(raw)

		if e.EsEncabezado(ln) {
			flush()
			continue
		}

		if m := precioRe.FindStringSubmatch(ln); m != nil {
			flush()
			if nombre == "" || esAgotado(nombre) {
				continue
			}
			c := Candidato{Nombre: nombre, Linea: ln}
			if m[1] != "" {
				c.Moneda, c.Precio = MonedaUSD, m[1]
			} else {
				c.Moneda, c.Precio = MonedaARS, m[2]
			}
			out = append(out, c)
			nombre = ""
			continue
		}

		pendiente = append(pendiente, ln)
	}
	return out
}

// MarcarDuplicados flags every candidate whose name appears more than once.
// Duplicates are kept; the operator decides per row.
func MarcarDuplicados(cs []Candidato) {
	cuenta := make(map[string]int, len(cs))
	for _, c := range cs {
		cuenta[c.Nombre]++
	}
	for i := range cs {
		cs[i].DuplicadoEnArchivo = cuenta[cs[i].Nombre] > 1
	}
}
