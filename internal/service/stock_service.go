package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tienda/internal/dto"
	"tienda/internal/infra"
	"tienda/internal/model"
	"tienda/internal/pricing"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	formatoFecha   = "2006-01-02"
	limiteBitacora = 500
	maxErroresLote = 50
	camposMinLinea = 5
)

// StockService registers goods received and exposes the stock log.
type StockService interface {
	Registrar(ctx context.Context, req dto.IngresoStockRequest) (*dto.IngresoStockResponse, error)
	// RegistrarLote takes either text lines or a CSV upload. Unknown products
	// and variants are created on the fly.
	RegistrarLote(ctx context.Context, lineas string, archivo io.Reader) (*dto.IngresoLoteResponse, error)
	ListarBitacora(ctx context.Context, limit int) ([]dto.BitacoraItemResponse, error)
	ExportarBitacora(ctx context.Context, w io.Writer) error
}

type stockService struct {
	productos repository.ProductoRepository
	variantes repository.VarianteRepository
	ingresos  repository.IngresoStockRepository
	cache     repository.PrecioCache
	ahora     func() time.Time
}

func NewStockService(
	productos repository.ProductoRepository,
	variantes repository.VarianteRepository,
	ingresos repository.IngresoStockRepository,
	cache repository.PrecioCache,
) StockService {
	return &stockService{
		productos: productos,
		variantes: variantes,
		ingresos:  ingresos,
		cache:     cache,
		ahora:     time.Now,
	}
}

// parseCosto accepts "1.234,50" style amounts. Blank is zero.
func parseCosto(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := pricing.ParseMonto(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrMontoInvalido
	}
	return d.Round(2), nil
}

func (s *stockService) Registrar(ctx context.Context, req dto.IngresoStockRequest) (*dto.IngresoStockResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}
	if req.Cantidad <= 0 {
		return nil, fmt.Errorf("cantidad %d: %w", req.Cantidad, ErrIngresoInvalido)
	}
	costo, err := parseCosto(req.CostoUnitario)
	if err != nil {
		return nil, err
	}
	fecha := s.ahora()
	if req.Fecha != "" {
		if fecha, err = time.Parse(formatoFecha, req.Fecha); err != nil {
			return nil, fmt.Errorf("fecha %q: %w", req.Fecha, ErrIngresoInvalido)
		}
	}

	var (
		resp dto.IngresoStockResponse
		sku  string
	)
	err = runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		p, err := s.productos.FindByIDTx(tx, productoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductoNoEncontrado
			}
			return err
		}
		if !p.Activo {
			return ErrProductoInactivo
		}
		sku = p.SKU

		v, err := s.varianteDestino(tx, p.ID, req.VarianteID)
		if err != nil {
			return err
		}
		stock, err := s.variantes.SumarStockTx(tx, v.ID, req.Cantidad)
		if err != nil {
			return err
		}
		in := &model.IngresoStock{
			Fecha:         fecha,
			ProductoID:    p.ID,
			VarianteID:    &v.ID,
			Cantidad:      req.Cantidad,
			CostoUnitario: costo,
			Nota:          strings.TrimSpace(req.Nota),
			Origen:        p.SKU,
		}
		if err := s.ingresos.CreateTx(tx, in); err != nil {
			return err
		}
		resp = dto.IngresoStockResponse{
			IngresoID:     in.ID.String(),
			VarianteID:    v.ID.String(),
			NuevoStock:    stock,
			CostoUnitario: costo,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidarCache(ctx, sku)
	log.Info().Str("sku", sku).Int("cantidad", req.Cantidad).Int("stock", resp.NuevoStock).Msg("stock: ingreso registrado")
	return &resp, nil
}

// varianteDestino resolves the variant that receives the goods: the requested
// one (must belong to the product and be active), else the first active one,
// else a new base variant.
func (s *stockService) varianteDestino(tx *gorm.DB, productoID uuid.UUID, raw *string) (*model.Variante, error) {
	if raw != nil && *raw != "" {
		id, err := uuid.Parse(*raw)
		if err != nil {
			return nil, ErrVarianteInvalida
		}
		v, err := s.variantes.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVarianteInvalida
			}
			return nil, err
		}
		if v.ProductoID != productoID || !v.Activo {
			return nil, ErrVarianteInvalida
		}
		return v, nil
	}

	v, err := s.variantes.PrimeraActivaTx(tx, productoID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	v, _, err = s.variantes.ObtenerOCrearTx(tx, productoID, "", "")
	return v, err
}

// entrada is one batch row before validation.
type entrada struct {
	fila       int
	incompleta bool
	fecha      string
	clave      string
	color      string
	talle      string
	cantidad   string
	costo      string
	nota       string
}

// ingresoValido is an entrada that passed validation.
type ingresoValido struct {
	fecha    time.Time
	clave    string
	color    string
	talle    string
	cantidad int
	costo    decimal.Decimal
	nota     string
}

func (e entrada) validar() (ingresoValido, error) {
	var iv ingresoValido
	if e.incompleta {
		return iv, fmt.Errorf("se esperan al menos %d campos: %w", camposMinLinea, ErrIngresoInvalido)
	}
	f, err := time.Parse(formatoFecha, strings.TrimSpace(e.fecha))
	if err != nil {
		return iv, fmt.Errorf("fecha %q: %w", e.fecha, ErrIngresoInvalido)
	}
	clave := strings.TrimSpace(e.clave)
	if clave == "" {
		return iv, fmt.Errorf("sin SKU o nombre: %w", ErrIngresoInvalido)
	}
	n, err := strconv.Atoi(strings.TrimSpace(e.cantidad))
	if err != nil || n <= 0 {
		return iv, fmt.Errorf("cantidad %q: %w", e.cantidad, ErrIngresoInvalido)
	}
	costo, err := parseCosto(e.costo)
	if err != nil {
		return iv, fmt.Errorf("costo %q: %w", e.costo, ErrIngresoInvalido)
	}
	return ingresoValido{
		fecha:    f,
		clave:    clave,
		color:    truncar(strings.TrimSpace(e.color), maxColor),
		talle:    truncar(strings.TrimSpace(e.talle), maxTalle),
		cantidad: n,
		costo:    costo,
		nota:     strings.TrimSpace(e.nota),
	}, nil
}

// parseLineas reads fecha,sku_o_nombre,color,talle,cantidad[,costo[,nota]].
// Lines with fewer than five fields come back as rows that fail validation.
func parseLineas(texto string) []entrada {
	var out []entrada
	for i, raw := range strings.Split(texto, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		e := entrada{fila: i + 1}
		if len(parts) < camposMinLinea {
			e.incompleta = true
			out = append(out, e)
			continue
		}
		e.fecha, e.clave, e.color, e.talle, e.cantidad = parts[0], parts[1], parts[2], parts[3], parts[4]
		if len(parts) > 5 {
			e.costo = parts[5]
		}
		if len(parts) > 6 {
			e.nota = strings.Join(parts[6:], ",")
		}
		out = append(out, e)
	}
	return out
}

// aliasesCSV lists accepted header names per field, first non-empty wins.
var aliasesCSV = map[string][]string{
	"fecha":    {"date", "fecha"},
	"clave":    {"sku", "interno", "producto"},
	"color":    {"color", "colores o talles"},
	"talle":    {"size", "talle"},
	"cantidad": {"qty", "cantidad"},
	"costo":    {"unit_cost", "costo"},
	"nota":     {"note", "nota"},
}

func parseCSV(r io.Reader) ([]entrada, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	campo := func(rec []string, nombre string) string {
		for _, alias := range aliasesCSV[nombre] {
			if i, ok := idx[alias]; ok && i < len(rec) {
				if v := strings.TrimSpace(rec[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	var out []entrada
	for fila := 2; ; fila++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv fila %d: %w", fila, err)
		}
		out = append(out, entrada{
			fila:     fila,
			fecha:    campo(rec, "fecha"),
			clave:    campo(rec, "clave"),
			color:    campo(rec, "color"),
			talle:    campo(rec, "talle"),
			cantidad: campo(rec, "cantidad"),
			costo:    campo(rec, "costo"),
			nota:     campo(rec, "nota"),
		})
	}
	return out, nil
}

func (s *stockService) RegistrarLote(ctx context.Context, lineas string, archivo io.Reader) (*dto.IngresoLoteResponse, error) {
	var (
		entradas []entrada
		err      error
	)
	if strings.TrimSpace(lineas) != "" {
		entradas = parseLineas(lineas)
	} else if archivo != nil {
		if entradas, err = parseCSV(archivo); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIngresoInvalido, err)
		}
	}

	resp := &dto.IngresoLoteResponse{Errores: []string{}}
	skus := make([]string, 0, len(entradas))

	err = runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		for _, e := range entradas {
			iv, err := e.validar()
			if err != nil {
				resp.ConError++
				if len(resp.Errores) < maxErroresLote {
					resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: %v", e.fila, err))
				}
				continue
			}
			sku, err := s.ingresarFila(tx, iv)
			if err != nil {
				return fmt.Errorf("fila %d: %w", e.fila, err)
			}
			skus = append(skus, sku)
			resp.OK++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidarCache(ctx, skus...)
	resp.Mensaje = fmt.Sprintf("Ingresos OK: %d, con error: %d.", resp.OK, resp.ConError)
	log.Info().Int("ok", resp.OK).Int("con_error", resp.ConError).Msg("stock: lote de ingresos")
	return resp, nil
}

// ingresarFila finds the product by SKU or name (creating it at price zero
// when missing), then the variant, and records the entry.
func (s *stockService) ingresarFila(tx *gorm.DB, iv ingresoValido) (string, error) {
	p, err := s.productos.FindExactoTx(tx, iv.clave)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		p = &model.Producto{
			SKU:        iv.clave,
			Nombre:     iv.clave,
			PrecioBase: decimal.Zero,
			Activo:     true,
			Tecnica:    model.TecnicaOtros,
		}
		if err := s.productos.CreateTx(tx, p); err != nil {
			return "", err
		}
	}

	v, _, err := s.variantes.ObtenerOCrearTx(tx, p.ID, iv.color, iv.talle)
	if err != nil {
		return "", err
	}
	if _, err := s.variantes.SumarStockTx(tx, v.ID, iv.cantidad); err != nil {
		return "", err
	}
	err = s.ingresos.CreateTx(tx, &model.IngresoStock{
		Fecha:         iv.fecha,
		ProductoID:    p.ID,
		VarianteID:    &v.ID,
		Cantidad:      iv.cantidad,
		CostoUnitario: iv.costo,
		Nota:          iv.nota,
		Origen:        iv.clave,
	})
	return p.SKU, err
}

func (s *stockService) ListarBitacora(ctx context.Context, limit int) ([]dto.BitacoraItemResponse, error) {
	if limit < 1 || limit > limiteBitacora {
		limit = limiteBitacora
	}
	ingresos, err := s.ingresos.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BitacoraItemResponse, 0, len(ingresos))
	for _, in := range ingresos {
		item := dto.BitacoraItemResponse{
			ID:            in.ID.String(),
			Fecha:         in.Fecha.Format(formatoFecha),
			ProductoID:    in.ProductoID.String(),
			Cantidad:      in.Cantidad,
			CostoUnitario: in.CostoUnitario,
			Nota:          in.Nota,
			Origen:        in.Origen,
		}
		if in.Producto != nil {
			item.SKU, item.Producto = in.Producto.SKU, in.Producto.Nombre
		}
		if in.Variante != nil {
			item.Variante = in.Variante.Etiqueta()
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *stockService) ExportarBitacora(ctx context.Context, w io.Writer) error {
	ingresos, err := s.ingresos.List(ctx, limiteBitacora)
	if err != nil {
		return err
	}
	return infra.EscribirBitacoraXLSX(w, ingresos)
}

// invalidarCache drops public price entries whose stock changed.
func (s *stockService) invalidarCache(ctx context.Context, skus ...string) {
	if s.cache == nil || len(skus) == 0 {
		return
	}
	if err := s.cache.Invalidar(ctx, skus...); err != nil {
		log.Warn().Err(err).Msg("stock: no se pudo invalidar la caché de precios")
	}
}
