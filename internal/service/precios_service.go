package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tienda/internal/dto"
	"tienda/internal/model"
	"tienda/internal/pricing"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PreciosService runs bulk price recalculations and reverts them.
type PreciosService interface {
	// Aplicar recalculates every active product and stores the batch. With
	// req.Previsualizar the plan is returned and nothing is written.
	Aplicar(ctx context.Context, usuarioID *uuid.UUID, req dto.AplicarPreciosRequest) (*dto.LoteResponse, error)
	Revertir(ctx context.Context, loteID uuid.UUID) (*dto.RevertirLoteResponse, error)
	ListarLotes(ctx context.Context, limit int) ([]dto.LoteResponse, error)
	ObtenerLote(ctx context.Context, id uuid.UUID) (*dto.LoteResponse, error)
}

type preciosService struct {
	productos repository.ProductoRepository
	lotes     repository.LotePrecioRepository
	cache     repository.PrecioCache
}

func NewPreciosService(productos repository.ProductoRepository, lotes repository.LotePrecioRepository, cache repository.PrecioCache) PreciosService {
	return &preciosService{productos: productos, lotes: lotes, cache: cache}
}

// parametrosDesde validates the operator input. Any unparsable percentage
// rejects the whole request.
func parametrosDesde(req dto.AplicarPreciosRequest) (pricing.Parametros, error) {
	p := pricing.Parametros{
		PorTecnica: make(map[model.Tecnica]decimal.Decimal, len(req.PctPorTecnica)),
		Modo:       pricing.ParseModoRedondeo(req.ModoRedondeo),
	}
	g, err := pricing.ParsePorcentaje(req.PctGlobal)
	if err != nil {
		return p, fmt.Errorf("pct_global %q: %w", req.PctGlobal, err)
	}
	if g != nil {
		p.Global = *g
	}
	for k, v := range req.PctPorTecnica {
		t := model.Tecnica(strings.ToUpper(strings.TrimSpace(k)))
		if !t.Valida() {
			return p, fmt.Errorf("técnica %q: %w", k, ErrPorcentajeInvalido)
		}
		d, err := pricing.ParsePorcentaje(v)
		if err != nil {
			return p, fmt.Errorf("pct %s %q: %w", t, v, err)
		}
		if d != nil {
			p.PorTecnica[t] = *d
		}
	}
	return p, nil
}

func (s *preciosService) Aplicar(ctx context.Context, usuarioID *uuid.UUID, req dto.AplicarPreciosRequest) (*dto.LoteResponse, error) {
	params, err := parametrosDesde(req)
	if err != nil {
		return nil, err
	}
	blob, err := params.JSON()
	if err != nil {
		return nil, err
	}

	var (
		cambios []pricing.Cambio
		lote    *model.LotePrecio
	)
	err = runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		productos, err := s.productos.ListActivosTx(tx)
		if err != nil {
			return err
		}
		cambios = params.Planificar(productos)
		if req.Previsualizar {
			return nil
		}

		lote = &model.LotePrecio{
			UsuarioID:           usuarioID,
			Parametros:          datatypes.JSON(blob),
			Nota:                strings.TrimSpace(req.Nota),
			CantidadActualizada: len(cambios),
			Items:               make([]model.ItemLotePrecio, 0, len(cambios)),
		}
		for _, c := range cambios {
			lote.Items = append(lote.Items, model.ItemLotePrecio{
				ProductoID:     c.ProductoID,
				PrecioAnterior: c.Anterior,
				PrecioNuevo:    c.Nuevo,
			})
		}
		if err := s.lotes.CreateTx(tx, lote); err != nil {
			return err
		}
		for _, c := range cambios {
			if err := s.productos.UpdatePrecioTx(tx, c.ProductoID, c.Nuevo); err != nil {
				return fmt.Errorf("producto %s: %w", c.SKU, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]dto.ItemLoteResponse, 0, len(cambios))
	skus := make([]string, 0, len(cambios))
	for _, c := range cambios {
		items = append(items, dto.ItemLoteResponse{
			ProductoID:     c.ProductoID.String(),
			SKU:            c.SKU,
			PrecioAnterior: c.Anterior,
			PrecioNuevo:    c.Nuevo,
		})
		skus = append(skus, c.SKU)
	}

	if req.Previsualizar {
		return &dto.LoteResponse{
			Parametros:          blob,
			Nota:                strings.TrimSpace(req.Nota),
			CantidadActualizada: len(cambios),
			Previsualizacion:    true,
			Mensaje:             fmt.Sprintf("Se actualizarían %d productos.", len(cambios)),
			Items:               items,
		}, nil
	}

	s.invalidarCache(ctx, skus)
	log.Info().
		Str("lote_id", lote.ID.String()).
		Int("actualizados", len(cambios)).
		Str("modo", string(params.Modo)).
		Msg("precios: lote aplicado")

	resp := mapLote(*lote)
	resp.Items = items
	resp.Mensaje = fmt.Sprintf("Actualizados %d productos. Lote #%s guardado en el historial.", len(cambios), lote.ID)
	return &resp, nil
}

func (s *preciosService) Revertir(ctx context.Context, loteID uuid.UUID) (*dto.RevertirLoteResponse, error) {
	resp := &dto.RevertirLoteResponse{LoteID: loteID.String()}
	var skus []string

	err := runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		lote, err := s.lotes.FindForUpdateTx(tx, loteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoteNoEncontrado
			}
			return err
		}
		if lote.Revertido {
			resp.YaRevertido = true
			return nil
		}
		for _, it := range lote.Items {
			if err := s.productos.UpdatePrecioTx(tx, it.ProductoID, it.PrecioAnterior); err != nil {
				return err
			}
			if it.Producto != nil {
				skus = append(skus, it.Producto.SKU)
			}
		}
		if err := s.lotes.MarcarRevertidoTx(tx, loteID); err != nil {
			return err
		}
		resp.Restaurados = len(lote.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.YaRevertido {
		resp.Mensaje = "El lote ya fue revertido"
		return resp, nil
	}

	s.invalidarCache(ctx, skus)
	log.Info().Str("lote_id", loteID.String()).Int("restaurados", resp.Restaurados).Msg("precios: lote revertido")
	resp.Mensaje = fmt.Sprintf("Lote #%s revertido. %d productos restaurados.", loteID, resp.Restaurados)
	return resp, nil
}

func (s *preciosService) ListarLotes(ctx context.Context, limit int) ([]dto.LoteResponse, error) {
	if limit < 1 {
		limit = 20
	}
	lotes, err := s.lotes.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LoteResponse, 0, len(lotes))
	for _, l := range lotes {
		out = append(out, mapLote(l))
	}
	return out, nil
}

func (s *preciosService) ObtenerLote(ctx context.Context, id uuid.UUID) (*dto.LoteResponse, error) {
	l, err := s.lotes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoteNoEncontrado
		}
		return nil, err
	}
	resp := mapLote(*l)
	resp.Items = make([]dto.ItemLoteResponse, 0, len(l.Items))
	for _, it := range l.Items {
		item := dto.ItemLoteResponse{
			ProductoID:     it.ProductoID.String(),
			PrecioAnterior: it.PrecioAnterior,
			PrecioNuevo:    it.PrecioNuevo,
		}
		if it.Producto != nil {
			item.SKU, item.Nombre = it.Producto.SKU, it.Producto.Nombre
		}
		resp.Items = append(resp.Items, item)
	}
	return &resp, nil
}

// invalidarCache is best effort: a stale public price expires with its TTL.
func (s *preciosService) invalidarCache(ctx context.Context, skus []string) {
	if s.cache == nil || len(skus) == 0 {
		return
	}
	if err := s.cache.Invalidar(ctx, skus...); err != nil {
		log.Warn().Err(err).Int("skus", len(skus)).Msg("precios: no se pudo invalidar la caché")
	}
}

func mapLote(l model.LotePrecio) dto.LoteResponse {
	r := dto.LoteResponse{
		ID:                  l.ID.String(),
		CreatedAt:           l.CreatedAt.Format(time.RFC3339),
		Parametros:          []byte(l.Parametros),
		Nota:                l.Nota,
		CantidadActualizada: l.CantidadActualizada,
		Revertido:           l.Revertido,
	}
	if l.Usuario != nil {
		r.Usuario = l.Usuario.Username
	}
	return r
}
