package service

import (
	"context"
	"errors"
	"strings"

	"tienda/internal/dto"
	"tienda/internal/model"
	"tienda/internal/repository"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const maxSlugCategoria = 140

// CategoriaService defines business operations for product categories.
type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context, q string) ([]dto.CategoriaResponse, error)
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

// slugCategoria is the identity of a category typed by name.
func slugCategoria(nombre string) string {
	s := slug.Make(strings.TrimSpace(nombre))
	if len(s) > maxSlugCategoria {
		s = strings.TrimRight(s[:maxSlugCategoria], "-")
	}
	return s
}

// mapCategoria converts a model to a DTO response.
func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Slug:        c.Slug,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	sl := slugCategoria(nombre)
	if sl == "" {
		return dto.CategoriaResponse{}, ErrCategoriaInvalida
	}

	// Check for duplicate slug
	existing, err := s.repo.ObtenerPorSlug(ctx, sl)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CategoriaResponse{}, err
	}
	if existing != nil {
		return dto.CategoriaResponse{}, ErrCategoriaDuplicada
	}

	c := &model.Categoria{
		Nombre:      nombre,
		Slug:        sl,
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Crear(ctx, c); err != nil {
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context, q string) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.Listar(ctx, q)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}
