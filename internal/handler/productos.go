package handler

import (
	"net/http"

	"tienda/internal/dto"
	"tienda/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear POST /v1/productos
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear el producto")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Buscar GET /v1/productos?q=
func (h *ProductosHandler) Buscar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Buscar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al buscar productos")
		return
	}
	c.JSON(http.StatusOK, dto.ProductoListResponse{Data: resp})
}

// ObtenerPorID GET /v1/productos/:id
func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener el producto")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarVariantes GET /v1/productos/:id/variantes
func (h *ProductosHandler) ListarVariantes(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarVariantes(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al listar variantes")
		return
	}
	c.JSON(http.StatusOK, dto.VarianteListResponse{Data: resp})
}

// ActualizarTecnica PATCH /v1/productos/:id/tecnica
func (h *ProductosHandler) ActualizarTecnica(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarTecnicaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarTecnica(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar la técnica")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarCategoria PATCH /v1/productos/:id/categoria
func (h *ProductosHandler) ActualizarCategoria(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCategoriaProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarCategoria(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar la categoría")
		return
	}
	c.JSON(http.StatusOK, resp)
}
