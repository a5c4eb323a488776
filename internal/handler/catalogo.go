package handler

import (
	"net/http"

	"tienda/internal/dto"
	"tienda/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogoHandler struct{ svc service.CatalogoService }

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// PDF GET /v1/catalogo/pdf
func (h *CatalogoHandler) PDF(c *gin.Context) {
	var filter dto.CatalogoFilter
	if !bindQuery(c, &filter) {
		return
	}
	pdf, err := h.svc.GenerarBytes(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al generar el catálogo")
		return
	}
	c.Header("Content-Disposition", `inline; filename="catalogo.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Enviar POST /v1/catalogo/enviar
func (h *CatalogoHandler) Enviar(c *gin.Context) {
	var req dto.EnviarCatalogoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Enviar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al encolar el catálogo")
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
