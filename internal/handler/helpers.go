package handler

import (
	"errors"
	"net/http"
	"reflect"

	"tienda/internal/apierror"
	"tienda/internal/middleware"
	"tienda/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0 or gt=0 work on it.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags. On failure
// it writes the response and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// usuarioActual is the authenticated user; protected routes always have one.
func usuarioActual(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.UsuarioID(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return uuid.Nil, false
	}
	return *id, true
}

var erroresHTTP = []struct {
	err    error
	status int
}{
	{service.ErrLoteNoEncontrado, http.StatusNotFound},
	{service.ErrProductoNoEncontrado, http.StatusNotFound},
	{service.ErrVarianteNoEncontrada, http.StatusNotFound},
	{service.ErrCategoriaNoEncontrada, http.StatusNotFound},
	{service.ErrSKUDuplicado, http.StatusConflict},
	{service.ErrCategoriaDuplicada, http.StatusConflict},
	{service.ErrSinCandidatos, http.StatusConflict},
	{service.ErrPorcentajeInvalido, http.StatusUnprocessableEntity},
	{service.ErrMontoInvalido, http.StatusUnprocessableEntity},
	{service.ErrPDFIlegible, http.StatusUnprocessableEntity},
	{service.ErrIngresoInvalido, http.StatusUnprocessableEntity},
	{service.ErrVarianteInvalida, http.StatusUnprocessableEntity},
	{service.ErrProductoInactivo, http.StatusUnprocessableEntity},
	{service.ErrCategoriaInvalida, http.StatusUnprocessableEntity},
	{service.ErrCredenciales, http.StatusUnauthorized},
	{service.ErrTokenInvalido, http.StatusUnauthorized},
	{service.ErrColaNoDisponible, http.StatusServiceUnavailable},
}

// responderError maps service sentinels to their status. Anything else is
// logged and answered with a generic 500 carrying msg.
func responderError(c *gin.Context, err error, msg string) {
	for _, e := range erroresHTTP {
		if errors.Is(err, e.err) {
			c.JSON(e.status, apierror.New(err.Error()))
			return
		}
	}
	rid := c.GetString(middleware.RequestIDKey)
	log.Error().
		Str("request_id", rid).
		Str("path", c.FullPath()).
		Err(err).
		Msg(msg)
	c.JSON(http.StatusInternalServerError, apierror.Interno(msg, rid))
}
