package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tienda/internal/dto"
	"tienda/internal/infra"
	"tienda/internal/service"

	"github.com/rs/zerolog/log"
)

const (
	asuntoCatalogo  = "Catálogo de productos"
	mensajeCatalogo = "Hola! Te enviamos nuestro catálogo actualizado en el PDF adjunto."
)

// Enviador sends the catalog email; infra.Mailer in production.
type Enviador interface {
	SendCatalogo(to, subject, body string, pdf []byte) error
}

// CatalogoWorker renders the catalog PDF and mails it.
type CatalogoWorker struct {
	catalogo service.CatalogoService
	mailer   Enviador
	breaker  *infra.Breaker
}

func NewCatalogoWorker(catalogo service.CatalogoService, mailer Enviador, breaker *infra.Breaker) *CatalogoWorker {
	return &CatalogoWorker{catalogo: catalogo, mailer: mailer, breaker: breaker}
}

// Process handles one dto.EnviarCatalogoRequest payload.
func (w *CatalogoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var req dto.EnviarCatalogoRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("catalogo_worker: payload inválido: %w", err)
	}
	if strings.TrimSpace(req.Email) == "" {
		log.Warn().Msg("catalogo_worker: email vacío, se descarta")
		return nil
	}

	pdf, err := w.catalogo.GenerarBytes(ctx, dto.CatalogoFilter{
		Q:          req.Q,
		Tecnica:    req.Tecnica,
		MostrarSKU: req.MostrarSKU,
		MarcaAgua:  req.MarcaAgua,
	})
	if err != nil {
		return err
	}

	asunto := strings.TrimSpace(req.Asunto)
	if asunto == "" {
		asunto = asuntoCatalogo
	}
	cuerpo := strings.TrimSpace(req.Mensaje)
	if cuerpo == "" {
		cuerpo = mensajeCatalogo
	}

	enviar := func() error { return w.mailer.SendCatalogo(req.Email, asunto, cuerpo, pdf) }
	if w.breaker != nil {
		err = w.breaker.Ejecutar(enviar)
	} else {
		err = enviar()
	}
	if err != nil {
		return fmt.Errorf("catalogo_worker: envío a %s: %w", req.Email, err)
	}
	log.Info().Str("to", req.Email).Int("bytes", len(pdf)).Msg("catalogo_worker: catálogo enviado")
	return nil
}
