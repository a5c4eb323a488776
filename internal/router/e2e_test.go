//go:build integration

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v
package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda/internal/config"
	"tienda/internal/infra"
	"tienda/internal/model"
	"tienda/internal/repository"
	"tienda/internal/router"
	"tienda/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		rd = body
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Suite setup ──────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	rdb    *redis.Client
	token  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("tienda_test"),
		tcPostgres.WithUsername("tienda"),
		tcPostgres.WithPassword("tienda"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                        "test",
		JWTSecret:                  "test-secret-key",
		JWTExpirationHours:         8,
		JWTRefreshHours:            24,
		DatabaseURL:                pgURL,
		RedisURL:                   rdURL,
		RateLimit:                  1000,
		MediaRoot:                  t.TempDir(),
		MediaURL:                   "/media/",
		PlaceholderImageURL:        "/static/sin-imagen.png",
		ImportCandidatesTTLMinutes: 5,
		ImportMatchThreshold:       0.86,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repository.NewUsuarioRepository(db).Create(ctx, &model.Usuario{
		Username: "duenio", Nombre: "Dueño", PasswordHash: string(hash),
		Rol: model.RolAdministrador, Activo: true,
	}))

	srv := httptest.NewServer(router.New(cfg, db, rdb, worker.NewDispatcher(rdb)))
	t.Cleanup(srv.Close)

	resp := do(t, srv, http.MethodPost, "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "duenio", "password": "secreto123"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &login)
	require.NotEmpty(t, login.AccessToken)

	return &testEnv{server: srv, rdb: rdb, token: login.AccessToken}
}

func crearProducto(t *testing.T, env *testEnv, sku, tecnica, precio string) string {
	t.Helper()
	resp := do(t, env.server, http.MethodPost, "/v1/productos", jsonBody(t, map[string]any{
		"sku": sku, "nombre": sku, "tecnica": tecnica, "precio_base": precio,
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &p)
	return p.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_AumentoMasivoYReversion(t *testing.T) {
	env := setupTestEnv(t)
	crearProducto(t, env, "TAZA", "SUB", "1000")
	crearProducto(t, env, "LLAVERO", "LAS", "3000")

	// warm the public price cache, the batch must invalidate it
	resp := do(t, env.server, http.MethodGet, "/v1/precio/LLAVERO", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodPost, "/v1/precios/masivo", jsonBody(t, map[string]any{
		"pct_global": "10", "pct_por_tecnica": map[string]string{"SUB": "-5"}, "modo_redondeo": "nearest",
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var lote struct {
		ID                  string `json:"id"`
		CantidadActualizada int    `json:"cantidad_actualizada"`
	}
	decodeJSON(t, resp, &lote)
	assert.Equal(t, 1, lote.CantidadActualizada)

	resp = do(t, env.server, http.MethodGet, "/v1/precio/LLAVERO", nil, "")
	var precio struct {
		Precio decimal.Decimal `json:"precio"`
	}
	decodeJSON(t, resp, &precio)
	assert.True(t, decimal.NewFromInt(3500).Equal(precio.Precio))

	resp = do(t, env.server, http.MethodPost, "/v1/precios/lotes/"+lote.ID+"/revertir", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodGet, "/v1/precio/LLAVERO", nil, "")
	decodeJSON(t, resp, &precio)
	assert.True(t, decimal.NewFromInt(3000).Equal(precio.Precio))

	resp = do(t, env.server, http.MethodPost, "/v1/precios/lotes/"+lote.ID+"/revertir", nil, env.token)
	var rev struct {
		YaRevertido bool `json:"ya_revertido"`
	}
	decodeJSON(t, resp, &rev)
	assert.True(t, rev.YaRevertido)
}

func TestE2E_IngresoDeStockYBitacora(t *testing.T) {
	env := setupTestEnv(t)
	id := crearProducto(t, env, "REM-1", "SUB", "8000")

	resp := do(t, env.server, http.MethodPost, "/v1/stock/ingresos", jsonBody(t, map[string]any{
		"producto_id": id, "cantidad": 4, "costo_unitario": "2.500,00",
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodPost, "/v1/stock/ingresos/lote", jsonBody(t, map[string]any{
		"lineas": "2024-03-01,REM-1,Negro,M,3\n2024-03-01,Nuevo,,,2\nmal",
	}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lote struct {
		OK       int `json:"ok"`
		ConError int `json:"con_error"`
	}
	decodeJSON(t, resp, &lote)
	assert.Equal(t, 2, lote.OK)
	assert.Equal(t, 1, lote.ConError)

	resp = do(t, env.server, http.MethodGet, "/v1/precio/REM-1", nil, "")
	var precio struct {
		Stock int `json:"stock"`
	}
	decodeJSON(t, resp, &precio)
	assert.Equal(t, 7, precio.Stock)

	resp = do(t, env.server, http.MethodGet, "/v1/stock/bitacora", nil, env.token)
	var bit struct {
		Data []json.RawMessage `json:"data"`
	}
	decodeJSON(t, resp, &bit)
	assert.Len(t, bit.Data, 3)
}

func TestE2E_CatalogoPDF(t *testing.T) {
	env := setupTestEnv(t)
	crearProducto(t, env, "TZ-1", "SUB", "2500")

	resp := do(t, env.server, http.MethodGet, "/v1/catalogo/pdf?tecnica=SUB&sku=true", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = do(t, env.server, http.MethodPost, "/v1/catalogo/enviar", jsonBody(t, map[string]any{
		"email": "cliente@example.com",
	}), env.token)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_HealthYColaDeCatalogo(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// no worker pool runs in tests, so the job stays queued
	resp := do(t, env.server, http.MethodPost, "/v1/catalogo/enviar", jsonBody(t, map[string]any{
		"email": "cliente@example.com",
	}), env.token)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		OK         bool             `json:"ok"`
		DB         string           `json:"db"`
		Redis      string           `json:"redis"`
		Pendientes map[string]int64 `json:"pendientes"`
	}
	decodeJSON(t, resp, &health)
	assert.True(t, health.OK)
	assert.Equal(t, "connected", health.DB)
	assert.Equal(t, int64(1), health.Pendientes[worker.QueueCatalogo])

	// dead-letter the job and bring it back
	raw, err := env.rdb.RPop(ctx, worker.QueueCatalogo).Bytes()
	require.NoError(t, err)
	var job worker.Job
	require.NoError(t, json.Unmarshal(raw, &job))
	worker.SendToDLQ(ctx, env.rdb, worker.QueueCatalogo, job, "smtp caído", 3)
	require.NoError(t, env.rdb.LPush(ctx, worker.DLQPrefix+worker.QueueCatalogo, "no es json").Err())

	moved, err := worker.Requeue(ctx, env.rdb, worker.QueueCatalogo, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved, "unreadable entries are dropped")
	assert.Equal(t, int64(0), env.rdb.LLen(ctx, worker.DLQPrefix+worker.QueueCatalogo).Val())
	assert.Equal(t, int64(1), env.rdb.LLen(ctx, worker.QueueCatalogo).Val())
}
