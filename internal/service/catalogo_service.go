package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tienda/internal/dto"
	"tienda/internal/infra"
	"tienda/internal/model"
	"tienda/internal/repository"

	"github.com/rs/zerolog/log"
)

// ErrColaNoDisponible is returned when catalog delivery cannot be queued.
var ErrColaNoDisponible = errors.New("la cola de envíos no está disponible")

// EncoladorCatalogo queues a catalog for asynchronous delivery.
type EncoladorCatalogo interface {
	EnqueueCatalogo(ctx context.Context, req dto.EnviarCatalogoRequest) error
}

// CatalogoConfig holds the shop links and watermark printed on the catalog.
type CatalogoConfig struct {
	WhatsAppURL   string
	WhatsAppLabel string
	InstagramURL  string
	MarcaAguaPath string
}

// CatalogoService renders the product catalog PDF.
type CatalogoService interface {
	Generar(ctx context.Context, filter dto.CatalogoFilter, w io.Writer) error
	// GenerarBytes is Generar into memory, used for email attachments.
	GenerarBytes(ctx context.Context, filter dto.CatalogoFilter) ([]byte, error)
	Enviar(ctx context.Context, req dto.EnviarCatalogoRequest) (*dto.EnviarCatalogoResponse, error)
}

type catalogoService struct {
	productos repository.ProductoRepository
	media     Media
	cfg       CatalogoConfig
	cola      EncoladorCatalogo
}

func NewCatalogoService(productos repository.ProductoRepository, media Media, cfg CatalogoConfig, cola EncoladorCatalogo) CatalogoService {
	return &catalogoService{productos: productos, media: media, cfg: cfg, cola: cola}
}

// tecnicaEstricta only accepts a declared technique code; anything else
// disables the filter instead of guessing.
func tecnicaEstricta(raw string) string {
	t := model.Tecnica(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.Valida() {
		return ""
	}
	return string(t)
}

func (s *catalogoService) opciones(filter dto.CatalogoFilter) infra.OpcionesCatalogo {
	op := infra.OpcionesCatalogo{
		Busqueda:   strings.TrimSpace(filter.Q),
		MostrarSKU: filter.MostrarSKU,
	}
	if filter.MarcaAgua {
		op.MarcaAguaPath = s.cfg.MarcaAguaPath
	}
	if filter.Contacto != nil && !*filter.Contacto {
		return op
	}
	op.WhatsAppURL, op.WhatsAppLabel, op.InstagramURL = s.cfg.WhatsAppURL, s.cfg.WhatsAppLabel, s.cfg.InstagramURL
	if wa := strings.TrimSpace(filter.WA); wa != "" {
		op.WhatsAppURL = wa
	}
	if ig := strings.TrimSpace(filter.IG); ig != "" {
		op.InstagramURL = ig
	}
	return op
}

func (s *catalogoService) Generar(ctx context.Context, filter dto.CatalogoFilter, w io.Writer) error {
	productos, err := s.productos.List(ctx, dto.ProductoFilter{
		Q:             filter.Q,
		Tecnica:       tecnicaEstricta(filter.Tecnica),
		SoloActivos:   true,
		EnDescripcion: true,
	})
	if err != nil {
		return err
	}

	tarjetas := make([]infra.TarjetaCatalogo, 0, len(productos))
	for i := range productos {
		p := &productos[i]
		tarjetas = append(tarjetas, infra.TarjetaCatalogo{
			Nombre:     p.Nombre,
			SKU:        p.SKU,
			Precio:     p.PrecioBase,
			ImagenPath: s.media.Ruta(p.ImagenCatalogo()),
		})
	}

	if err := infra.GenerarCatalogoPDF(w, tarjetas, s.opciones(filter)); err != nil {
		return fmt.Errorf("catalogo: %w", err)
	}
	log.Debug().Int("productos", len(tarjetas)).Str("q", filter.Q).Msg("catalogo: PDF generado")
	return nil
}

func (s *catalogoService) GenerarBytes(ctx context.Context, filter dto.CatalogoFilter) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Generar(ctx, filter, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *catalogoService) Enviar(ctx context.Context, req dto.EnviarCatalogoRequest) (*dto.EnviarCatalogoResponse, error) {
	if s.cola == nil {
		return nil, ErrColaNoDisponible
	}
	if err := s.cola.EnqueueCatalogo(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrColaNoDisponible, err)
	}
	log.Info().Str("email", req.Email).Msg("catalogo: envío encolado")
	return &dto.EnviarCatalogoResponse{
		Encolado: true,
		Mensaje:  fmt.Sprintf("El catálogo se enviará a %s en unos minutos.", req.Email),
	}, nil
}
