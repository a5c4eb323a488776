package service_test

import (
	"context"
	"testing"

	"tienda/internal/dto"
	"tienda/internal/model"
	"tienda/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPreciosService(db *memDB) (service.PreciosService, *stubPrecioCache) {
	cache := newStubPrecioCache()
	return service.NewPreciosService(&stubProductoRepo{db: db}, &stubLoteRepo{db: db}, cache), cache
}

func seedPrecios(db *memDB) (taza, llavero, inactivo *model.Producto) {
	taza = db.addProducto("TAZA", "Taza 11oz", model.TecnicaSublimacion, "1000", true)
	llavero = db.addProducto("LLAVERO", "Llavero MDF", model.TecnicaLaser, "3000", true)
	inactivo = db.addProducto("VIEJO", "Producto discontinuado", model.TecnicaOtros, "2000", false)
	return
}

func TestAplicar_GuardaLoteYActualizaPrecios(t *testing.T) {
	db := newMemDB()
	taza, llavero, inactivo := seedPrecios(db)
	svc, cache := newPreciosService(db)

	resp, err := svc.Aplicar(context.Background(), nil, dto.AplicarPreciosRequest{
		PctGlobal:     "10",
		PctPorTecnica: map[string]string{"sub": "-5"},
		ModoRedondeo:  "nearest",
		Nota:          "  aumento marzo ",
	})
	require.NoError(t, err)

	// 1000 at -5% rounds back to 1000, so only the keychain moves.
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "LLAVERO", resp.Items[0].SKU)
	assert.True(t, dec("3500").Equal(resp.Items[0].PrecioNuevo))
	assert.Equal(t, 1, resp.CantidadActualizada)
	assert.Equal(t, "aumento marzo", resp.Nota)
	assert.False(t, resp.Previsualizacion)
	assert.Contains(t, resp.Mensaje, "Actualizados 1 productos. Lote #")
	assert.Contains(t, string(resp.Parametros), `"pct_global":"10.00"`)
	assert.Contains(t, string(resp.Parametros), `"SUB":"-5.00"`)

	assert.True(t, dec("1000").Equal(db.producto(taza.ID).PrecioBase))
	assert.True(t, dec("3500").Equal(db.producto(llavero.ID).PrecioBase))
	assert.True(t, dec("2000").Equal(db.producto(inactivo.ID).PrecioBase), "inactive products are not repriced")

	require.Len(t, db.lotes, 1)
	require.Len(t, db.lotes[0].Items, 1)
	assert.True(t, dec("3000").Equal(db.lotes[0].Items[0].PrecioAnterior))
	assert.Equal(t, []string{"LLAVERO"}, cache.invalidados)
}

func TestAplicar_PrevisualizarNoEscribe(t *testing.T) {
	db := newMemDB()
	_, llavero, _ := seedPrecios(db)
	svc, _ := newPreciosService(db)

	resp, err := svc.Aplicar(context.Background(), nil, dto.AplicarPreciosRequest{
		PctGlobal:     "10",
		ModoRedondeo:  "up",
		Previsualizar: true,
	})
	require.NoError(t, err)

	assert.True(t, resp.Previsualizacion)
	assert.Equal(t, "Se actualizarían 2 productos.", resp.Mensaje)
	assert.Len(t, resp.Items, 2)
	assert.Empty(t, db.lotes)
	assert.True(t, dec("3000").Equal(db.producto(llavero.ID).PrecioBase))
}

func TestAplicar_PorcentajeInvalido(t *testing.T) {
	db := newMemDB()
	seedPrecios(db)
	svc, _ := newPreciosService(db)

	_, err := svc.Aplicar(context.Background(), nil, dto.AplicarPreciosRequest{PctGlobal: "diez"})
	assert.ErrorIs(t, err, service.ErrPorcentajeInvalido)

	_, err = svc.Aplicar(context.Background(), nil, dto.AplicarPreciosRequest{
		PctGlobal:     "10",
		PctPorTecnica: map[string]string{"XYZ": "5"},
	})
	assert.ErrorIs(t, err, service.ErrPorcentajeInvalido)

	_, err = svc.Aplicar(context.Background(), nil, dto.AplicarPreciosRequest{PctGlobal: "1e18"})
	assert.ErrorIs(t, err, service.ErrPorcentajeInvalido)

	_, err = svc.Aplicar(context.Background(), nil, dto.AplicarPreciosRequest{
		PctGlobal:     "10",
		PctPorTecnica: map[string]string{"SUB": "2000"},
	})
	assert.ErrorIs(t, err, service.ErrPorcentajeInvalido)
	assert.Empty(t, db.lotes)
}

func TestAplicar_SinCambiosIgualGuardaLote(t *testing.T) {
	db := newMemDB()
	seedPrecios(db)
	svc, _ := newPreciosService(db)

	resp, err := svc.Aplicar(context.Background(), nil, dto.AplicarPreciosRequest{PctGlobal: "0"})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.CantidadActualizada)
	assert.Empty(t, resp.Items)
	require.Len(t, db.lotes, 1)
	assert.Empty(t, db.lotes[0].Items)
}

func TestAplicar_RegistraUsuario(t *testing.T) {
	db := newMemDB()
	seedPrecios(db)
	svc, _ := newPreciosService(db)
	uid := uuid.New()

	_, err := svc.Aplicar(context.Background(), &uid, dto.AplicarPreciosRequest{PctGlobal: "10"})
	require.NoError(t, err)

	require.Len(t, db.lotes, 1)
	require.NotNil(t, db.lotes[0].UsuarioID)
	assert.Equal(t, uid, *db.lotes[0].UsuarioID)
}

func TestRevertir_RestauraYEsIdempotente(t *testing.T) {
	db := newMemDB()
	_, llavero, _ := seedPrecios(db)
	svc, cache := newPreciosService(db)
	ctx := context.Background()

	lote, err := svc.Aplicar(ctx, nil, dto.AplicarPreciosRequest{PctGlobal: "10", ModoRedondeo: "up"})
	require.NoError(t, err)
	loteID := uuid.MustParse(lote.ID)
	cache.invalidados = nil

	resp, err := svc.Revertir(ctx, loteID)
	require.NoError(t, err)
	assert.False(t, resp.YaRevertido)
	assert.Equal(t, 2, resp.Restaurados)
	assert.Contains(t, resp.Mensaje, "revertido. 2 productos restaurados.")
	assert.True(t, dec("3000").Equal(db.producto(llavero.ID).PrecioBase))
	assert.ElementsMatch(t, []string{"TAZA", "LLAVERO"}, cache.invalidados)

	// A later manual change survives a second revert.
	db.producto(llavero.ID).PrecioBase = dec("4200")
	resp, err = svc.Revertir(ctx, loteID)
	require.NoError(t, err)
	assert.True(t, resp.YaRevertido)
	assert.Equal(t, "El lote ya fue revertido", resp.Mensaje)
	assert.True(t, dec("4200").Equal(db.producto(llavero.ID).PrecioBase))
}

func TestRevertir_LoteInexistente(t *testing.T) {
	svc, _ := newPreciosService(newMemDB())

	_, err := svc.Revertir(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrLoteNoEncontrado)
}

func TestObtenerLote_IncluyeItems(t *testing.T) {
	db := newMemDB()
	seedPrecios(db)
	svc, _ := newPreciosService(db)
	ctx := context.Background()

	lote, err := svc.Aplicar(ctx, nil, dto.AplicarPreciosRequest{PctGlobal: "20", ModoRedondeo: "up"})
	require.NoError(t, err)

	got, err := svc.ObtenerLote(ctx, uuid.MustParse(lote.ID))
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	for _, it := range got.Items {
		assert.NotEmpty(t, it.SKU)
		assert.NotEmpty(t, it.Nombre)
	}

	lista, err := svc.ListarLotes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, lote.ID, lista[0].ID)

	_, err = svc.ObtenerLote(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrLoteNoEncontrado)
}
