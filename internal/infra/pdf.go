package infra

// pdf.go: product catalog PDF using go-pdf/fpdf.
// Landscape A4 with a three-column grid of cards:
//   - image (thumbnail) or a dashed "Sin imagen" box
//   - product name and, optionally, SKU
//   - price at the bottom right
//
// Every page carries the title, the optional search subtitle, the optional
// watermark and the WhatsApp / Instagram footer links.

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Layout in centimeters.
const (
	catMargen     = 1.0
	catColumnas   = 3
	catSeparacion = 0.5
	catAltoTarj   = 7.5
	catAltoImagen = 4.8
	catPadding    = 0.46
	catAltoHeader = 1.8
	catAltoFooter = 1.2
)

// MensajeCatalogoVacio is printed when the filter matches no product.
const MensajeCatalogoVacio = "No hay productos para exportar con el filtro aplicado."

// TarjetaCatalogo is one product card. ImagenPath is a filesystem path; empty
// or unreadable paths render the placeholder box.
type TarjetaCatalogo struct {
	Nombre     string
	SKU        string
	Precio     decimal.Decimal
	ImagenPath string
}

// OpcionesCatalogo controls the optional parts of the document.
type OpcionesCatalogo struct {
	Busqueda      string
	MostrarSKU    bool
	MarcaAguaPath string
	// Footer links; an empty URL hides its link.
	WhatsAppURL   string
	WhatsAppLabel string
	InstagramURL  string
}

// GenerarCatalogoPDF writes the catalog to w.
func GenerarCatalogoPDF(w io.Writer, tarjetas []TarjetaCatalogo, op OpcionesCatalogo) error {
	pdf := fpdf.New("L", "cm", "A4", "")
	pdf.SetMargins(catMargen, catMargen, catMargen)
	pdf.SetAutoPageBreak(false, catMargen)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*catMargen

	marcaAgua := ""
	if op.MarcaAguaPath != "" {
		if img, err := cargarMiniatura(op.MarcaAguaPath, 1600); err == nil {
			marcaAgua = registrarImagen(pdf, "marca_agua", img)
		}
	}

	pdf.SetHeaderFunc(func() {
		if marcaAgua != "" {
			dibujarMarcaAgua(pdf, marcaAgua, pageW, pageH)
		}
		pdf.SetXY(catMargen, catMargen)
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(contentW, 0.9, tr("Catálogo de productos"), "", 1, "L", false, 0, "")
		if op.Busqueda != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(90, 90, 90)
			pdf.CellFormat(contentW, 0.6, tr(fmt.Sprintf("búsqueda: “%s”", op.Busqueda)), "", 1, "L", false, 0, "")
		}
	})
	pdf.SetFooterFunc(func() {
		dibujarFooter(pdf, tr, op, pageW, pageH)
	})

	pdf.AddPage()

	if len(tarjetas) == 0 {
		pdf.SetXY(catMargen, catMargen+catAltoHeader)
		pdf.SetFont("Helvetica", "", 12)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(contentW, 1, tr(MensajeCatalogoVacio), "", 1, "L", false, 0, "")
		return salida(pdf, w)
	}

	anchoTarj := (contentW - float64(catColumnas-1)*catSeparacion) / catColumnas
	topGrid := catMargen + catAltoHeader
	limiteY := pageH - catMargen - catAltoFooter

	col := 0
	y := topGrid
	for i, t := range tarjetas {
		if col == catColumnas {
			col = 0
			y += catAltoTarj + catSeparacion
		}
		if y+catAltoTarj > limiteY {
			pdf.AddPage()
			y = topGrid
		}
		x := catMargen + float64(col)*(anchoTarj+catSeparacion)
		dibujarTarjeta(pdf, tr, fmt.Sprintf("img_%d", i), t, op.MostrarSKU, x, y, anchoTarj)
		col++
	}

	return salida(pdf, w)
}

func salida(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write catalog: %w", err)
	}
	return nil
}

func registrarImagen(pdf *fpdf.Fpdf, nombre string, img *imagenPNG) string {
	pdf.RegisterImageOptionsReader(nombre, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img.datos))
	if pdf.Err() {
		pdf.ClearError()
		return ""
	}
	return nombre
}

// dibujarMarcaAgua centers the watermark at 70% of the page width, faded.
func dibujarMarcaAgua(pdf *fpdf.Fpdf, nombre string, pageW, pageH float64) {
	info := pdf.GetImageInfo(nombre)
	if info == nil || info.Width() == 0 {
		return
	}
	w := pageW * 0.7
	h := w * info.Height() / info.Width()
	if h > pageH*0.8 {
		h = pageH * 0.8
		w = h * info.Width() / info.Height()
	}
	pdf.SetAlpha(0.08, "Normal")
	pdf.ImageOptions(nombre, (pageW-w)/2, (pageH-h)/2, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetAlpha(1, "Normal")
}

func dibujarTarjeta(pdf *fpdf.Fpdf, tr func(string) string, nombreImg string, t TarjetaCatalogo, mostrarSKU bool, x, y, w float64) {
	pdf.SetDrawColor(210, 210, 210)
	pdf.SetLineWidth(0.02)
	pdf.RoundedRect(x, y, w, catAltoTarj, 0.2, "1234", "D")

	imgX, imgY := x+catPadding, y+catPadding
	imgW := w - 2*catPadding

	dibujada := false
	if t.ImagenPath != "" {
		if img, err := cargarMiniatura(t.ImagenPath, miniaturaMaxPx); err == nil {
			if nombre := registrarImagen(pdf, nombreImg, img); nombre != "" {
				iw, ih := img.encajar(imgW, catAltoImagen)
				pdf.ImageOptions(nombre, imgX+(imgW-iw)/2, imgY+(catAltoImagen-ih)/2, iw, ih,
					false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
				dibujada = true
			}
		}
	}
	if !dibujada {
		pdf.SetDrawColor(170, 170, 170)
		pdf.SetDashPattern([]float64{0.15, 0.1}, 0)
		pdf.Rect(imgX, imgY, imgW, catAltoImagen, "D")
		pdf.SetDashPattern([]float64{}, 0)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(140, 140, 140)
		pdf.SetXY(imgX, imgY+catAltoImagen/2-0.25)
		pdf.CellFormat(imgW, 0.5, "Sin imagen", "", 0, "C", false, 0, "")
	}

	textoY := imgY + catAltoImagen + 0.2
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(imgX, textoY)
	pdf.CellFormat(imgW, 0.5, truncarAncho(pdf, tr(t.Nombre), imgW), "", 0, "L", false, 0, "")
	textoY += 0.5

	if mostrarSKU && t.SKU != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.SetXY(imgX, textoY)
		pdf.CellFormat(imgW, 0.4, tr("SKU: "+t.SKU), "", 0, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetXY(imgX, y+catAltoTarj-catPadding-0.6)
	pdf.CellFormat(imgW, 0.6, "$ "+t.Precio.StringFixed(2), "", 0, "R", false, 0, "")
}

func dibujarFooter(pdf *fpdf.Fpdf, tr func(string) string, op OpcionesCatalogo, pageW, pageH float64) {
	if op.WhatsAppURL == "" && op.InstagramURL == "" {
		return
	}
	y := pageH - catMargen - 0.8
	x := catMargen
	pdf.SetFont("Helvetica", "B", 20)
	if op.WhatsAppURL != "" {
		label := op.WhatsAppLabel
		if label == "" {
			label = "WhatsApp"
		}
		pdf.SetTextColor(37, 160, 75)
		w := pdf.GetStringWidth(tr(label)) + 0.4
		pdf.SetXY(x, y)
		pdf.CellFormat(w, 0.8, tr(label), "", 0, "L", false, 0, op.WhatsAppURL)
		x += w + 1
	}
	if op.InstagramURL != "" {
		pdf.SetTextColor(193, 53, 132)
		w := pdf.GetStringWidth("Instagram") + 0.4
		if x+w > pageW-catMargen {
			x = pageW - catMargen - w
		}
		pdf.SetXY(x, y)
		pdf.CellFormat(w, 0.8, "Instagram", "", 0, "L", false, 0, op.InstagramURL)
	}
	pdf.SetTextColor(0, 0, 0)
}

// truncarAncho cuts s with an ellipsis so it fits in maxW with the current font.
func truncarAncho(pdf *fpdf.Fpdf, s string, maxW float64) string {
	if pdf.GetStringWidth(s) <= maxW {
		return s
	}
	// "…" in cp1252
	const elipsis = "\x85"
	wElipsis := pdf.GetStringWidth(elipsis)
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if pdf.GetStringWidth(string(append(out, s[i])))+wElipsis > maxW {
			break
		}
		out = append(out, s[i])
	}
	return string(out) + elipsis
}
