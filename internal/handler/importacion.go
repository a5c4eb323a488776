package handler

import (
	"io"
	"net/http"
	"strconv"

	"tienda/internal/apierror"
	"tienda/internal/dto"
	"tienda/internal/service"

	"github.com/gin-gonic/gin"
)

const maxPDFBytes = 20 << 20

// ImportacionHandler is the two-step supplier PDF import.
type ImportacionHandler struct{ svc service.ImportacionService }

func NewImportacionHandler(svc service.ImportacionService) *ImportacionHandler {
	return &ImportacionHandler{svc: svc}
}

// Previsualizar POST /v1/importacion/pdf (multipart: archivo, solo_actualizar)
func (h *ImportacionHandler) Previsualizar(c *gin.Context) {
	uid, ok := usuarioActual(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Falta el archivo PDF"))
		return
	}
	if fh.Size > maxPDFBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("El PDF supera el tamaño máximo"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPDFBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return
	}

	soloActualizar, _ := strconv.ParseBool(c.PostForm("solo_actualizar"))
	resp, err := h.svc.Previsualizar(c.Request.Context(), uid, data, soloActualizar)
	if err != nil {
		responderError(c, err, "Error al procesar el PDF")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar POST /v1/importacion/pdf/confirmar
func (h *ImportacionHandler) Confirmar(c *gin.Context) {
	uid, ok := usuarioActual(c)
	if !ok {
		return
	}
	var req dto.ConfirmarImportacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Confirmar(c.Request.Context(), uid, req)
	if err != nil {
		responderError(c, err, "Error al confirmar la importación")
		return
	}
	c.JSON(http.StatusOK, resp)
}
