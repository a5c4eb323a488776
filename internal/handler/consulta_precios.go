package handler

import (
	"net/http"

	"tienda/internal/service"

	"github.com/gin-gonic/gin"
)

// ConsultaPreciosHandler serves the public price check. No authentication
// and no side effects besides the Redis cache.
type ConsultaPreciosHandler struct{ svc service.ProductoService }

func NewConsultaPreciosHandler(svc service.ProductoService) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{svc: svc}
}

// GetPrecioPorSKU GET /v1/precio/:sku
func (h *ConsultaPreciosHandler) GetPrecioPorSKU(c *gin.Context) {
	resp, err := h.svc.ConsultarPrecio(c.Request.Context(), c.Param("sku"))
	if err != nil {
		responderError(c, err, "Error al consultar el precio")
		return
	}
	c.JSON(http.StatusOK, resp)
}
