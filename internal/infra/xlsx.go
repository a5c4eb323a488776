package infra

import (
	"fmt"
	"io"

	"tienda/internal/model"

	"github.com/tealeg/xlsx"
)

var encabezadoBitacora = []string{"Fecha", "SKU", "Producto", "Variante", "Cantidad", "Costo unitario", "Nota", "Origen"}

// EscribirBitacoraXLSX writes the stock log as a single-sheet workbook.
// Producto and Variante must be preloaded; missing relations leave the cell blank.
func EscribirBitacoraXLSX(w io.Writer, ingresos []model.IngresoStock) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Bitácora")
	if err != nil {
		return fmt.Errorf("xlsx: add sheet: %w", err)
	}

	row := sheet.AddRow()
	for _, h := range encabezadoBitacora {
		c := row.AddCell()
		c.SetString(h)
		c.GetStyle().Font.Bold = true
	}

	for _, in := range ingresos {
		row := sheet.AddRow()
		row.AddCell().SetString(in.Fecha.Format("2006-01-02"))
		sku, nombre := "", ""
		if in.Producto != nil {
			sku, nombre = in.Producto.SKU, in.Producto.Nombre
		}
		row.AddCell().SetString(sku)
		row.AddCell().SetString(nombre)
		variante := ""
		if in.Variante != nil {
			variante = in.Variante.Etiqueta()
		}
		row.AddCell().SetString(variante)
		row.AddCell().SetInt(in.Cantidad)
		costo, _ := in.CostoUnitario.Float64()
		row.AddCell().SetFloatWithFormat(costo, "#,##0.00")
		row.AddCell().SetString(in.Nota)
		row.AddCell().SetString(in.Origen)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}
