package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tienda/internal/dto"
	"tienda/internal/importer"
	"tienda/internal/model"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Skip reasons reported by Confirmar.
const (
	MotivoIgnorado       = "ignorado_por_usuario"
	MotivoSinExistente   = "update_only_sin_existente"
	MotivoPrecioInvalido = "precio_ARS_invalido_confirm"
)

const (
	accionAplicar      = "apply"
	accionIgnorar      = "ignore"
	accionUnirPrefijo  = "merge:"
	maxNoVistosActivos = 200
)

// LectorPDF turns a PDF document into text lines.
type LectorPDF interface {
	Lineas(data []byte) ([]string, error)
}

// ImportacionService is the two-phase supplier price list import.
type ImportacionService interface {
	// Previsualizar extracts and matches the candidates and keeps them for
	// the user until Confirmar (or the TTL). A new preview replaces the old one.
	Previsualizar(ctx context.Context, usuarioID uuid.UUID, pdf []byte, soloActualizar bool) (*dto.PrevisualizarImportacionResponse, error)
	// Confirmar applies the stored candidates in one transaction.
	Confirmar(ctx context.Context, usuarioID uuid.UUID, req dto.ConfirmarImportacionRequest) (*dto.ResultadoImportacion, error)
}

type importacionService struct {
	productos repository.ProductoRepository
	variantes repository.VarianteRepository
	store     repository.CandidatoStore
	cache     repository.PrecioCache
	lector    LectorPDF
	extractor *importer.Extractor
	umbral    float64
}

func NewImportacionService(
	productos repository.ProductoRepository,
	variantes repository.VarianteRepository,
	store repository.CandidatoStore,
	cache repository.PrecioCache,
	lector LectorPDF,
	extractor *importer.Extractor,
	umbral float64,
) ImportacionService {
	if extractor == nil {
		extractor = importer.NuevoExtractor(nil)
	}
	if umbral <= 0 || umbral > 1 {
		umbral = importer.UmbralSugerencia
	}
	return &importacionService{
		productos: productos,
		variantes: variantes,
		store:     store,
		cache:     cache,
		lector:    lector,
		extractor: extractor,
		umbral:    umbral,
	}
}

func (s *importacionService) Previsualizar(ctx context.Context, usuarioID uuid.UUID, pdf []byte, soloActualizar bool) (*dto.PrevisualizarImportacionResponse, error) {
	lineas, err := s.lector.Lineas(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFIlegible, err)
	}

	candidatos := s.extractor.Extraer(lineas)
	importer.MarcarDuplicados(candidatos)

	productos, err := s.productos.ListReferencias(ctx)
	if err != nil {
		return nil, err
	}
	s.emparejar(candidatos, productos)

	if err := s.store.Guardar(ctx, usuarioID, candidatos); err != nil {
		return nil, fmt.Errorf("guardar candidatos: %w", err)
	}

	log.Info().
		Str("usuario_id", usuarioID.String()).
		Int("candidatos", len(candidatos)).
		Int("lineas", len(lineas)).
		Msg("importacion: previsualización lista")

	if candidatos == nil {
		candidatos = []importer.Candidato{}
	}
	return &dto.PrevisualizarImportacionResponse{
		Candidatos:     candidatos,
		Total:          len(candidatos),
		SoloActualizar: soloActualizar,
	}, nil
}

// emparejar fills the exact match (SKU first, then name, case-insensitive)
// or, failing that, the best fuzzy suggestion above the threshold.
func (s *importacionService) emparejar(cs []importer.Candidato, productos []model.Producto) {
	porSKU := make(map[string]*model.Producto, len(productos))
	porNombre := make(map[string]*model.Producto, len(productos))
	refs := make([]importer.Referencia, 0, len(productos))
	for i := range productos {
		p := &productos[i]
		if k := strings.ToLower(strings.TrimSpace(p.SKU)); k != "" {
			if _, ok := porSKU[k]; !ok {
				porSKU[k] = p
			}
		}
		if k := strings.ToLower(strings.TrimSpace(p.Nombre)); k != "" {
			if _, ok := porNombre[k]; !ok {
				porNombre[k] = p
			}
		}
		refs = append(refs, importer.Referencia{ID: p.ID, SKU: p.SKU, Nombre: p.Nombre})
	}

	for i := range cs {
		c := &cs[i]
		clave := strings.ToLower(strings.TrimSpace(c.Nombre))
		exacto, ok := porSKU[clave]
		if !ok {
			exacto, ok = porNombre[clave]
		}
		if ok {
			id := exacto.ID
			c.ExactoID = &id
			c.ExactoEtiqueta = exacto.Etiqueta()
			continue
		}
		if sug, ok := importer.MejorSugerencia(c.Nombre, refs, s.umbral); ok {
			id := sug.ID
			c.SugerenciaID = &id
			c.SugerenciaEtiqueta = sug.Etiqueta
			c.SugerenciaScore = sug.Porcentaje()
		}
	}
}

func (s *importacionService) Confirmar(ctx context.Context, usuarioID uuid.UUID, req dto.ConfirmarImportacionRequest) (*dto.ResultadoImportacion, error) {
	candidatos, err := s.store.Obtener(ctx, usuarioID)
	if err != nil {
		return nil, err
	}

	res := &dto.ResultadoImportacion{
		ItemsImportados:   []dto.ItemImportado{},
		ItemsActualizados: []dto.ItemImportado{},
		ItemsOmitidos:     []dto.ItemOmitido{},
		USDARevisar:       []dto.ItemImportado{},
		NoEncontrados:     []string{},
		NoVistosActivos:   []string{},
	}
	omitir := func(fila int, nombre, motivo string) {
		res.Omitidos++
		res.ItemsOmitidos = append(res.ItemsOmitidos, dto.ItemOmitido{Fila: fila, Nombre: nombre, Motivo: motivo})
	}

	destinos := make(map[uuid.UUID]bool)
	var skusTocados []string

	err = runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		for i, c := range candidatos {
			fila := i + 1
			accion := accionAplicar
			if i < len(req.Acciones) {
				if a := strings.TrimSpace(req.Acciones[i]); a != "" {
					accion = a
				}
			}
			if accion == accionIgnorar {
				omitir(fila, c.Nombre, MotivoIgnorado)
				continue
			}

			prod, err := s.resolverDestino(tx, fila, accion, c)
			if err != nil {
				return err
			}

			creado := false
			if prod == nil {
				if req.SoloActualizar {
					res.NoEncontrados = append(res.NoEncontrados, c.Nombre)
					omitir(fila, c.Nombre, MotivoSinExistente)
					continue
				}
				prod = &model.Producto{
					SKU:        c.Nombre,
					Nombre:     c.Nombre,
					PrecioBase: decimal.Zero,
					Activo:     true,
					Tecnica:    model.TecnicaOtros,
				}
				if err := s.productos.CreateTx(tx, prod); err != nil {
					return fmt.Errorf("fila %d: crear producto: %w", fila, err)
				}
				creado = true
			}
			destinos[prod.ID] = true

			if _, _, err := s.variantes.ObtenerOCrearTx(tx, prod.ID, "", ""); err != nil {
				return fmt.Errorf("fila %d: variante base: %w", fila, err)
			}

			item := dto.ItemImportado{
				Fila:        fila,
				Nombre:      c.Nombre,
				ProductoID:  prod.ID.String(),
				SKU:         prod.SKU,
				Moneda:      c.Moneda,
				PrecioTexto: c.Precio,
				Creado:      creado,
			}

			if c.Moneda == importer.MonedaUSD {
				res.USDARevisar = append(res.USDARevisar, item)
				if creado {
					res.Importados++
					res.ItemsImportados = append(res.ItemsImportados, item)
				} else {
					anterior := prod.PrecioBase
					item.PrecioAnterior = &anterior
					res.Actualizados++
					res.ItemsActualizados = append(res.ItemsActualizados, item)
				}
				continue
			}

			precio, err := importer.ParsePrecioARS(c.Precio)
			if err != nil {
				omitir(fila, c.Nombre, MotivoPrecioInvalido)
				continue
			}

			anterior := prod.PrecioBase
			cambio := !anterior.Equal(precio)
			if cambio || creado {
				if err := s.productos.UpdatePrecioTx(tx, prod.ID, precio); err != nil {
					return fmt.Errorf("fila %d: actualizar precio: %w", fila, err)
				}
				prod.PrecioBase = precio
				skusTocados = append(skusTocados, prod.SKU)
			}
			item.Precio = &precio
			if creado {
				res.Importados++
				res.ItemsImportados = append(res.ItemsImportados, item)
				continue
			}
			item.PrecioAnterior = &anterior
			item.Cambio = cambio
			res.Actualizados++
			res.ItemsActualizados = append(res.ItemsActualizados, item)
		}

		activos, err := s.productos.ListActivosTx(tx)
		if err != nil {
			return err
		}
		res.NoVistosActivos = noVistos(activos, candidatos, destinos)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// cleared only once the transaction committed
	if err := s.store.Borrar(ctx, usuarioID); err != nil {
		log.Warn().Err(err).Str("usuario_id", usuarioID.String()).Msg("importacion: no se pudieron borrar los candidatos")
	}
	if s.cache != nil && len(skusTocados) > 0 {
		if err := s.cache.Invalidar(ctx, skusTocados...); err != nil {
			log.Warn().Err(err).Msg("importacion: no se pudo invalidar la caché")
		}
	}

	res.Mensaje = fmt.Sprintf(
		"PROCESO OK: importados %d, actualizados %d, omitidos %d, USD a revisar %d, no encontrados %d, activos no vistos %d.",
		res.Importados, res.Actualizados, res.Omitidos, len(res.USDARevisar), len(res.NoEncontrados), len(res.NoVistosActivos),
	)
	log.Info().
		Str("usuario_id", usuarioID.String()).
		Int("importados", res.Importados).
		Int("actualizados", res.Actualizados).
		Int("omitidos", res.Omitidos).
		Msg("importacion: confirmada")
	return res, nil
}

// resolverDestino picks the product a row applies to: explicit merge, then
// the exact match recorded at preview time, then a fresh case-insensitive
// lookup. nil means "no product". A merge to an unknown product aborts the
// whole confirmation.
func (s *importacionService) resolverDestino(tx *gorm.DB, fila int, accion string, c importer.Candidato) (*model.Producto, error) {
	if strings.HasPrefix(accion, accionUnirPrefijo) {
		id, err := uuid.Parse(strings.TrimSpace(strings.TrimPrefix(accion, accionUnirPrefijo)))
		if err != nil {
			return nil, fmt.Errorf("fila %d: %q: %w", fila, accion, ErrProductoNoEncontrado)
		}
		p, err := s.productos.FindByIDTx(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("fila %d: %s: %w", fila, id, ErrProductoNoEncontrado)
		}
		return p, err
	}

	if c.ExactoID != nil {
		p, err := s.productos.FindByIDTx(tx, *c.ExactoID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	p, err := s.productos.FindExactoTx(tx, c.Nombre)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return p, err
}

// noVistos lists active SKUs that no candidate name mentions and that were
// not a target of this confirmation.
func noVistos(activos []model.Producto, cs []importer.Candidato, destinos map[uuid.UUID]bool) []string {
	vistos := make(map[string]bool, len(cs))
	for _, c := range cs {
		vistos[c.Nombre] = true
	}
	out := []string{}
	for _, p := range activos {
		if p.SKU == "" || vistos[p.SKU] || destinos[p.ID] {
			continue
		}
		out = append(out, p.SKU)
		if len(out) == maxNoVistosActivos {
			break
		}
	}
	return out
}
