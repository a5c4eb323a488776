package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"tienda/internal/dto"
	"tienda/internal/model"
	"tienda/internal/pricing"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	maxColor       = 64
	maxTalle       = 32
	limiteBusqueda = 30
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	// Buscar matches q against SKU and name over all products, at most 30.
	Buscar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error)
	// ListarVariantes returns the active variants of an active product.
	ListarVariantes(ctx context.Context, id uuid.UUID) ([]dto.VarianteResponse, error)
	ActualizarTecnica(ctx context.Context, id uuid.UUID, req dto.ActualizarTecnicaRequest) (*dto.ProductoResponse, error)
	ActualizarCategoria(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaProductoRequest) (*dto.ProductoResponse, error)
	// ConsultarPrecio is the public price check, served from cache when possible.
	ConsultarPrecio(ctx context.Context, sku string) (*dto.ConsultaPreciosResponse, error)
}

type productoService struct {
	productos  repository.ProductoRepository
	variantes  repository.VarianteRepository
	categorias repository.CategoriaRepository
	cache      repository.PrecioCache
	media      Media
}

func NewProductoService(
	productos repository.ProductoRepository,
	variantes repository.VarianteRepository,
	categorias repository.CategoriaRepository,
	cache repository.PrecioCache,
	media Media,
) ProductoService {
	return &productoService{
		productos:  productos,
		variantes:  variantes,
		categorias: categorias,
		cache:      cache,
		media:      media,
	}
}

// truncar cuts s to at most n runes.
func truncar(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// parseMontoOpcional returns nil for blank input.
func parseMontoOpcional(raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := pricing.ParseMonto(raw)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, ErrMontoInvalido
	}
	d = d.Round(2)
	return &d, nil
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	sku := strings.TrimSpace(req.SKU)
	existe, err := s.productos.ExisteSKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrSKUDuplicado
	}

	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		nombre = sku
	}
	tecnica, _ := model.ParseTecnica(req.Tecnica)

	precio, err := parseMontoOpcional(req.PrecioBase)
	if err != nil {
		return nil, fmt.Errorf("precio_base: %w", ErrMontoInvalido)
	}
	p := &model.Producto{
		SKU:         sku,
		Nombre:      nombre,
		Descripcion: req.Descripcion,
		PrecioBase:  decimal.Zero,
		Activo:      req.Activo == nil || *req.Activo,
		Tecnica:     tecnica,
	}
	if precio != nil {
		p.PrecioBase = *precio
	}

	if req.CategoriaID != nil && *req.CategoriaID != "" {
		cat, err := s.categoriaActiva(ctx, *req.CategoriaID)
		if err != nil {
			return nil, err
		}
		p.CategoriaID = &cat.ID
	}

	var variante *model.Variante
	if v := req.Variante; v != nil {
		override, err := parseMontoOpcional(v.PrecioOverride)
		if err != nil {
			return nil, fmt.Errorf("precio_override: %w", ErrMontoInvalido)
		}
		variante = &model.Variante{
			Color:          truncar(strings.TrimSpace(v.Color), maxColor),
			Talle:          truncar(strings.TrimSpace(v.Talle), maxTalle),
			SKU:            v.SKU,
			PrecioOverride: override,
			Stock:          max(v.Stock, 0),
			Activo:         v.Activo == nil || *v.Activo,
		}
		if variante.SKU != nil && strings.TrimSpace(*variante.SKU) == "" {
			variante.SKU = nil
		}
	}

	err = runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		if p.CategoriaID == nil && strings.TrimSpace(req.Categoria) != "" {
			cat, err := s.obtenerOCrearCategoria(tx, req.Categoria)
			if err != nil {
				return err
			}
			p.CategoriaID = &cat.ID
		}
		if err := s.productos.CreateTx(tx, p); err != nil {
			return err
		}
		if variante != nil {
			variante.ProductoID = p.ID
			if err := s.variantes.CreateTx(tx, variante); err != nil {
				return fmt.Errorf("variante: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("producto_id", p.ID.String()).Str("sku", p.SKU).Msg("productos: creado")
	return s.ObtenerPorID(ctx, p.ID)
}

func (s *productoService) categoriaActiva(ctx context.Context, raw string) (*model.Categoria, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrCategoriaNoEncontrada
	}
	cat, err := s.categorias.ObtenerPorID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoriaNoEncontrada
		}
		return nil, err
	}
	if !cat.Activo {
		return nil, ErrCategoriaNoEncontrada
	}
	return cat, nil
}

func (s *productoService) obtenerOCrearCategoria(tx *gorm.DB, nombre string) (*model.Categoria, error) {
	nombre = strings.TrimSpace(nombre)
	sl := slugCategoria(nombre)
	if sl == "" {
		return nil, ErrCategoriaInvalida
	}
	cat := &model.Categoria{Nombre: nombre, Slug: sl, Activo: true}
	if err := s.categorias.ObtenerOCrearTx(tx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.productos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}
	resp := s.mapProducto(*p)
	return &resp, nil
}

func (s *productoService) Buscar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error) {
	if filter.Limit < 1 || filter.Limit > limiteBusqueda {
		filter.Limit = limiteBusqueda
	}
	if filter.Tecnica != "" {
		t, ok := model.ParseTecnica(filter.Tecnica)
		if !ok {
			filter.Tecnica = ""
		} else {
			filter.Tecnica = string(t)
		}
	}
	productos, err := s.productos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for _, p := range productos {
		out = append(out, s.mapProducto(p))
	}
	return out, nil
}

func (s *productoService) ListarVariantes(ctx context.Context, id uuid.UUID) ([]dto.VarianteResponse, error) {
	p, err := s.productos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}
	if !p.Activo {
		return nil, ErrProductoNoEncontrado
	}
	vs, err := s.variantes.ListActivas(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VarianteResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, s.mapVariante(v, p.PrecioBase))
	}
	return out, nil
}

// ActualizarTecnica normalizes free text ("sublimación", "láser", "3d") and
// falls back to OTR for anything unrecognized.
func (s *productoService) ActualizarTecnica(ctx context.Context, id uuid.UUID, req dto.ActualizarTecnicaRequest) (*dto.ProductoResponse, error) {
	t, _ := model.ParseTecnica(req.Tecnica)
	if err := s.productos.UpdateCampos(ctx, id, map[string]interface{}{"tecnica": t}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}
	return s.ObtenerPorID(ctx, id)
}

// ActualizarCategoria sets the category by id (must be active) or by name
// (created when missing). Both empty clears it.
func (s *productoService) ActualizarCategoria(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaProductoRequest) (*dto.ProductoResponse, error) {
	if _, err := s.productos.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}

	var categoriaID *uuid.UUID
	switch {
	case req.CategoriaID != nil && *req.CategoriaID != "":
		cat, err := s.categoriaActiva(ctx, *req.CategoriaID)
		if err != nil {
			return nil, err
		}
		categoriaID = &cat.ID
	case strings.TrimSpace(req.Categoria) != "":
		err := runTx(ctx, s.categorias.DB(), func(tx *gorm.DB) error {
			cat, err := s.obtenerOCrearCategoria(tx, req.Categoria)
			if err != nil {
				return err
			}
			categoriaID = &cat.ID
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.productos.UpdateCampos(ctx, id, map[string]interface{}{"categoria_id": categoriaID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}
	return s.ObtenerPorID(ctx, id)
}

func (s *productoService) ConsultarPrecio(ctx context.Context, sku string) (*dto.ConsultaPreciosResponse, error) {
	sku = strings.TrimSpace(sku)
	if s.cache != nil {
		if resp, ok := s.cache.Get(ctx, sku); ok {
			return resp, nil
		}
	}

	p, err := s.productos.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}

	stock := 0
	for _, v := range p.Variantes {
		if v.Activo {
			stock += v.Stock
		}
	}
	resp := &dto.ConsultaPreciosResponse{
		SKU:       p.SKU,
		Nombre:    p.Nombre,
		Precio:    p.PrecioBase,
		Tecnica:   p.Tecnica.Label(),
		Stock:     stock,
		ImagenURL: s.media.URLDe(p.ImagenCatalogo()),
	}

	// Populate cache, best effort
	if s.cache != nil {
		if err := s.cache.Set(ctx, sku, *resp); err != nil {
			log.Debug().Err(err).Str("sku", sku).Msg("productos: no se pudo cachear el precio")
		}
	}
	return resp, nil
}

func (s *productoService) mapProducto(p model.Producto) dto.ProductoResponse {
	r := dto.ProductoResponse{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioBase:   p.PrecioBase,
		Activo:       p.Activo,
		Tecnica:      string(p.Tecnica),
		TecnicaLabel: p.Tecnica.Label(),
		ImagenURL:    s.media.URLDe(p.ImagenCatalogo()),
	}
	if p.CategoriaID != nil {
		id := p.CategoriaID.String()
		r.CategoriaID = &id
	}
	if p.Categoria != nil {
		r.Categoria = p.Categoria.Nombre
	}
	for _, v := range p.Variantes {
		r.Variantes = append(r.Variantes, s.mapVariante(v, p.PrecioBase))
	}
	return r
}

func (s *productoService) mapVariante(v model.Variante, base decimal.Decimal) dto.VarianteResponse {
	img := ""
	if v.ImagenPath != nil {
		img = *v.ImagenPath
	}
	return dto.VarianteResponse{
		ID:        v.ID.String(),
		SKU:       v.SKU,
		Color:     v.Color,
		Talle:     v.Talle,
		Etiqueta:  v.Etiqueta(),
		Precio:    v.Precio(base),
		Stock:     v.Stock,
		Activo:    v.Activo,
		ImagenURL: s.media.URLDe(img),
	}
}
