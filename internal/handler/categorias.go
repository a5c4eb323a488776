package handler

import (
	"net/http"

	"tienda/internal/dto"
	"tienda/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriasHandler struct{ svc service.CategoriaService }

func NewCategoriasHandler(svc service.CategoriaService) *CategoriasHandler {
	return &CategoriasHandler{svc: svc}
}

// Crear POST /v1/categorias
func (h *CategoriasHandler) Crear(c *gin.Context) {
	var req dto.CrearCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear la categoría")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar GET /v1/categorias?q=
func (h *CategoriasHandler) Listar(c *gin.Context) {
	var filter dto.CategoriaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter.Q)
	if err != nil {
		responderError(c, err, "Error al listar categorías")
		return
	}
	c.JSON(http.StatusOK, resp)
}
