package service

import (
	"errors"

	"tienda/internal/pricing"
	"tienda/internal/repository"
)

// Sentinel errors. Handlers map them to HTTP status codes with errors.Is;
// services wrap them with context via fmt.Errorf("...: %w").
var (
	ErrLoteNoEncontrado      = errors.New("lote no encontrado")
	ErrProductoNoEncontrado  = errors.New("producto no encontrado")
	ErrVarianteNoEncontrada  = errors.New("variante no encontrada")
	ErrCategoriaNoEncontrada = errors.New("categoría no encontrada")
	ErrProductoInactivo      = errors.New("el producto está inactivo")
	ErrVarianteInvalida      = errors.New("la variante no pertenece al producto o está inactiva")
	ErrSKUDuplicado          = errors.New("ya existe un producto con ese SKU")
	ErrCategoriaDuplicada    = errors.New("ya existe una categoría con ese nombre")
	ErrCategoriaInvalida     = errors.New("nombre de categoría inválido")
	ErrPDFIlegible           = errors.New("no se pudo leer el PDF")
	ErrCredenciales          = errors.New("credenciales invalidas")
	ErrIngresoInvalido       = errors.New("ingreso de stock inválido")

	ErrPorcentajeInvalido = pricing.ErrPorcentajeInvalido
	ErrMontoInvalido      = pricing.ErrMontoInvalido
	ErrSinCandidatos      = repository.ErrSinCandidatos
)
