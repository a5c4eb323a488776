package service_test

import (
	"context"
	"errors"
	"testing"

	"tienda/internal/dto"
	"tienda/internal/importer"
	"tienda/internal/model"
	"tienda/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type importacionFixture struct {
	db    *memDB
	store *stubCandidatoStore
	cache *stubPrecioCache
}

func newImportacionService(f *importacionFixture, lector service.LectorPDF) service.ImportacionService {
	return service.NewImportacionService(
		&stubProductoRepo{db: f.db},
		&stubVarianteRepo{db: f.db},
		f.store,
		f.cache,
		lector,
		importer.NuevoExtractor(nil),
		importer.UmbralSugerencia,
	)
}

func newImportacionFixture() *importacionFixture {
	return &importacionFixture{db: newMemDB(), store: newStubCandidatoStore(), cache: newStubPrecioCache()}
}

func TestPrevisualizar_EmparejaYMarcaDuplicados(t *testing.T) {
	f := newImportacionFixture()
	taza := f.db.addProducto("TAZA-11", "Taza Sublimable", model.TecnicaSublimacion, "1000", true)
	usuario := uuid.New()

	svc := newImportacionService(f, stubLector{lineas: []string{
		"GENESIS INSUMOS - VIGENCIA: 03/2024",
		"TAZAS",
		"Taza Sublimable",
		"$ 1.234,56",
		"Taza sublimable 11 oz",
		"$ 1.500",
		"Taza Sublimable",
		"$ 1.300",
	}})

	resp, err := svc.Previsualizar(context.Background(), usuario, []byte("%PDF"), true)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	assert.True(t, resp.SoloActualizar)

	exacta := resp.Candidatos[0]
	assert.Equal(t, "Taza Sublimable", exacta.Nombre)
	require.NotNil(t, exacta.ExactoID)
	assert.Equal(t, taza.ID, *exacta.ExactoID)
	assert.Equal(t, "TAZA-11 · Taza Sublimable", exacta.ExactoEtiqueta)
	assert.True(t, exacta.DuplicadoEnArchivo)

	// "tazasublimable11oz" vs "tazasublimable": 2*14/32 = 0.875
	parecida := resp.Candidatos[1]
	assert.Nil(t, parecida.ExactoID)
	require.NotNil(t, parecida.SugerenciaID)
	assert.Equal(t, taza.ID, *parecida.SugerenciaID)
	assert.Equal(t, 88, parecida.SugerenciaScore)
	assert.False(t, parecida.DuplicadoEnArchivo)

	assert.True(t, resp.Candidatos[2].DuplicadoEnArchivo)

	guardados, err := f.store.Obtener(context.Background(), usuario)
	require.NoError(t, err)
	assert.Len(t, guardados, 3)
}

func TestPrevisualizar_PDFIlegible(t *testing.T) {
	f := newImportacionFixture()
	svc := newImportacionService(f, stubLector{err: errors.New("malformed PDF")})

	_, err := svc.Previsualizar(context.Background(), uuid.New(), []byte("no soy un pdf"), false)
	assert.ErrorIs(t, err, service.ErrPDFIlegible)
	assert.Empty(t, f.store.porUsuario)
}

func TestConfirmar_AplicaCreaYReporta(t *testing.T) {
	f := newImportacionFixture()
	taza := f.db.addProducto("TAZA-11", "Taza Sublimable", model.TecnicaSublimacion, "1000", true)
	gorra := f.db.addProducto("GOR-1", "Gorra Trucker", model.TecnicaOtros, "2000", true)
	f.db.addProducto("VIEJO", "Producto viejo", model.TecnicaOtros, "800", true)
	f.db.addProducto("BAJA", "Dado de baja", model.TecnicaOtros, "800", false)
	usuario := uuid.New()
	ctx := context.Background()

	require.NoError(t, f.store.Guardar(ctx, usuario, []importer.Candidato{
		{Nombre: "Taza Sublimable", Moneda: importer.MonedaARS, Precio: "1.234,56", ExactoID: &taza.ID},
		{Nombre: "gorra trucker", Moneda: importer.MonedaARS, Precio: "2.000"},
		{Nombre: "Remera algodón", Moneda: importer.MonedaUSD, Precio: "5,20"},
		{Nombre: "Mouse pad", Moneda: importer.MonedaARS, Precio: "1,2,3"},
		{Nombre: "Llavero", Moneda: importer.MonedaARS, Precio: "900"},
	}))

	svc := newImportacionService(f, stubLector{})
	res, err := svc.Confirmar(ctx, usuario, dto.ConfirmarImportacionRequest{
		Acciones: []string{"", "apply", "", "", "ignore"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Importados)
	assert.Equal(t, 2, res.Actualizados)
	assert.Equal(t, 2, res.Omitidos)
	assert.Equal(t,
		"PROCESO OK: importados 1, actualizados 2, omitidos 2, USD a revisar 1, no encontrados 0, activos no vistos 1.",
		res.Mensaje)

	require.Len(t, res.ItemsActualizados, 2)
	assert.True(t, res.ItemsActualizados[0].Cambio)
	assert.False(t, res.ItemsActualizados[1].Cambio)
	assert.True(t, dec("1234.56").Equal(f.db.producto(taza.ID).PrecioBase))
	assert.True(t, dec("2000").Equal(f.db.producto(gorra.ID).PrecioBase))

	require.Len(t, res.USDARevisar, 1)
	assert.Equal(t, "Remera algodón", res.USDARevisar[0].Nombre)
	remera := f.db.productoPorSKU("Remera algodón")
	require.NotNil(t, remera, "USD rows still create the product")
	assert.True(t, remera.PrecioBase.IsZero())
	assert.Equal(t, model.TecnicaOtros, remera.Tecnica)

	motivos := map[string]string{}
	for _, o := range res.ItemsOmitidos {
		motivos[o.Nombre] = o.Motivo
	}
	assert.Equal(t, service.MotivoPrecioInvalido, motivos["Mouse pad"])
	assert.Equal(t, service.MotivoIgnorado, motivos["Llavero"])
	assert.Nil(t, f.db.productoPorSKU("Llavero"))

	assert.Equal(t, []string{"VIEJO"}, res.NoVistosActivos)

	base := 0
	for _, v := range f.db.variantes {
		if v.ProductoID == taza.ID && v.Color == "" && v.Talle == "" {
			base++
		}
	}
	assert.Equal(t, 1, base, "base variant ensured once")

	assert.Equal(t, []string{"TAZA-11"}, f.cache.invalidados)

	_, err = svc.Confirmar(ctx, usuario, dto.ConfirmarImportacionRequest{})
	assert.ErrorIs(t, err, service.ErrSinCandidatos)
}

func TestConfirmar_SoloActualizarNoCrea(t *testing.T) {
	f := newImportacionFixture()
	usuario := uuid.New()
	ctx := context.Background()
	require.NoError(t, f.store.Guardar(ctx, usuario, []importer.Candidato{
		{Nombre: "Producto nuevo", Moneda: importer.MonedaARS, Precio: "100"},
	}))

	res, err := newImportacionService(f, stubLector{}).Confirmar(ctx, usuario, dto.ConfirmarImportacionRequest{SoloActualizar: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"Producto nuevo"}, res.NoEncontrados)
	require.Len(t, res.ItemsOmitidos, 1)
	assert.Equal(t, service.MotivoSinExistente, res.ItemsOmitidos[0].Motivo)
	assert.Empty(t, f.db.productos)
}

func TestConfirmar_UnirConProductoElegido(t *testing.T) {
	f := newImportacionFixture()
	taza := f.db.addProducto("TAZA-11", "Taza Sublimable", model.TecnicaSublimacion, "1000", true)
	usuario := uuid.New()
	ctx := context.Background()
	require.NoError(t, f.store.Guardar(ctx, usuario, []importer.Candidato{
		{Nombre: "Taza grande", Moneda: importer.MonedaARS, Precio: "1.500"},
	}))

	res, err := newImportacionService(f, stubLector{}).Confirmar(ctx, usuario, dto.ConfirmarImportacionRequest{
		Acciones: []string{"merge:" + taza.ID.String()},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Actualizados)
	assert.True(t, dec("1500").Equal(f.db.producto(taza.ID).PrecioBase))
	assert.Len(t, f.db.productos, 1)
}

func TestConfirmar_UnirConProductoInexistenteRechaza(t *testing.T) {
	f := newImportacionFixture()
	usuario := uuid.New()
	ctx := context.Background()
	require.NoError(t, f.store.Guardar(ctx, usuario, []importer.Candidato{
		{Nombre: "Taza grande", Moneda: importer.MonedaARS, Precio: "1.500"},
	}))
	svc := newImportacionService(f, stubLector{})

	_, err := svc.Confirmar(ctx, usuario, dto.ConfirmarImportacionRequest{
		Acciones: []string{"merge:" + uuid.NewString()},
	})
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)

	_, err = svc.Confirmar(ctx, usuario, dto.ConfirmarImportacionRequest{Acciones: []string{"merge:123"}})
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)

	// candidates survive a rejected confirmation
	_, err = f.store.Obtener(ctx, usuario)
	assert.NoError(t, err)
	assert.Empty(t, f.db.productos)
}
