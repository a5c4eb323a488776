package handler

import (
	"net/http"

	"tienda/internal/dto"
	"tienda/internal/middleware"
	"tienda/internal/service"

	"github.com/gin-gonic/gin"
)

// PreciosHandler exposes bulk repricing and its batch history.
type PreciosHandler struct{ svc service.PreciosService }

func NewPreciosHandler(svc service.PreciosService) *PreciosHandler {
	return &PreciosHandler{svc: svc}
}

// Aplicar POST /v1/precios/masivo
func (h *PreciosHandler) Aplicar(c *gin.Context) {
	var req dto.AplicarPreciosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Aplicar(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		responderError(c, err, "Error al actualizar precios")
		return
	}
	status := http.StatusCreated
	if resp.Previsualizacion {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// ListarLotes GET /v1/precios/lotes
func (h *PreciosHandler) ListarLotes(c *gin.Context) {
	var filter dto.LoteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarLotes(c.Request.Context(), filter.Limit)
	if err != nil {
		responderError(c, err, "Error al listar lotes")
		return
	}
	c.JSON(http.StatusOK, dto.LoteListResponse{Data: resp})
}

// ObtenerLote GET /v1/precios/lotes/:id
func (h *PreciosHandler) ObtenerLote(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerLote(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener el lote")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Revertir POST /v1/precios/lotes/:id/revertir. Reverting twice is a 200
// with ya_revertido set.
func (h *PreciosHandler) Revertir(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Revertir(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al revertir el lote")
		return
	}
	c.JSON(http.StatusOK, resp)
}
