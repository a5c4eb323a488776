package handler

import (
	"bytes"
	"net/http"
	"strings"

	"tienda/internal/apierror"
	"tienda/internal/dto"
	"tienda/internal/service"

	"github.com/gin-gonic/gin"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// Registrar POST /v1/stock/ingresos
func (h *StockHandler) Registrar(c *gin.Context) {
	var req dto.IngresoStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al registrar el ingreso")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarLote POST /v1/stock/ingresos/lote. Takes JSON {"lineas": ...} or
// a multipart CSV upload in "archivo".
func (h *StockHandler) RegistrarLote(c *gin.Context) {
	var (
		resp *dto.IngresoLoteResponse
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, ferr := c.FormFile("archivo")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Falta el archivo CSV"))
			return
		}
		f, ferr := fh.Open()
		if ferr != nil {
			c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
			return
		}
		defer f.Close()
		resp, err = h.svc.RegistrarLote(c.Request.Context(), "", f)
	} else {
		var req dto.IngresoLoteRequest
		if !bindAndValidate(c, &req) {
			return
		}
		resp, err = h.svc.RegistrarLote(c.Request.Context(), req.Lineas, nil)
	}
	if err != nil {
		responderError(c, err, "Error al registrar el lote de ingresos")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Bitacora GET /v1/stock/bitacora
func (h *StockHandler) Bitacora(c *gin.Context) {
	var filter dto.BitacoraFilter
	if !bindQuery(c, &filter) {
		return
	}
	items, err := h.svc.ListarBitacora(c.Request.Context(), filter.Limit)
	if err != nil {
		responderError(c, err, "Error al listar la bitácora")
		return
	}
	c.JSON(http.StatusOK, dto.BitacoraResponse{Data: items})
}

// ExportarBitacora GET /v1/stock/bitacora.xlsx
func (h *StockHandler) ExportarBitacora(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.ExportarBitacora(c.Request.Context(), &buf); err != nil {
		responderError(c, err, "Error al exportar la bitácora")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="bitacora_ingresos.xlsx"`)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}
