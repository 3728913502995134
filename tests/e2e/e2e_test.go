//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"modapos/internal/config"
	"modapos/internal/infra"
	"modapos/internal/model"
	"modapos/internal/router"
	"modapos/internal/worker"

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
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
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

// ── Setup ────────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": password}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("modapos_test"),
		tcPostgres.WithUsername("modapos"),
		tcPostgres.WithPassword("modapos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                8000,
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTExpirationHours:  8,
		JWTRefreshHours:     24,
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		VentaTimeoutSeconds: 30,
		WorkerPoolSize:      1,
		PDFStoragePath:      t.TempDir(),
		NombreTienda:        "ModaPOS Test",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed the admin user directly; everything else goes through the API.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-e2e-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		Username:     "admin",
		Nombre:       "Admin E2E",
		PasswordHash: string(hash),
		Rol:          model.RolAdmin,
		Activo:       true,
	}).Error)

	r := router.New(cfg, db, rdb, worker.NewDispatcher(rdb))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv}
	env.token = env.login(t, "admin", "admin-e2e-pass")
	return env
}

// seedVariante creates marca + categoria + producto + inventario through the
// API and returns the inventario ID.
func seedVariante(t *testing.T, env *testEnv, codigo, precio string, stock int) string {
	t.Helper()

	var marca, categoria struct {
		ID string `json:"id"`
	}
	resp := do(t, env.server, "POST", "/v1/marcas", jsonBody(t, map[string]string{"nombre": "Urbana " + codigo}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &marca)
	resp = do(t, env.server, "POST", "/v1/categorias", jsonBody(t, map[string]string{"nombre": "Remeras " + codigo}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &categoria)

	var producto struct {
		ID string `json:"id"`
	}
	resp = do(t, env.server, "POST", "/v1/productos", jsonBody(t, map[string]any{
		"codigo":            codigo,
		"nombre":            "Remera " + codigo,
		"marca_id":          marca.ID,
		"categoria_id":      categoria.ID,
		"precio_venta_base": precio,
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &producto)

	var inventario struct {
		ID string `json:"id"`
	}
	resp = do(t, env.server, "POST", "/v1/inventario", jsonBody(t, map[string]any{
		"producto_id":    producto.ID,
		"codigo_interno": codigo + "-M-NEG",
		"talla":          "M",
		"color":          "Negro",
		"stock_actual":   stock,
		"stock_minimo":   1,
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &inventario)
	return inventario.ID
}

type ventaResult struct {
	Resultado string `json:"resultado"`
	Venta     struct {
		ID          string          `json:"id"`
		NumeroVenta string          `json:"numero_venta"`
		Estado      string          `json:"estado"`
		Total       decimal.Decimal `json:"total"`
		Detalles    []struct {
			PrecioUnitario decimal.Decimal `json:"precio_unitario"`
			Cantidad       int             `json:"cantidad"`
		} `json:"detalles"`
	} `json:"venta"`
	LineasFallidas []struct {
		InventarioID string `json:"inventario_id"`
		Motivo       string `json:"motivo"`
	} `json:"lineas_fallidas"`
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FlujoVentaCompleto(t *testing.T) {
	env := setupTestEnv(t)
	invID := seedVariante(t, env, "REM-100", "150.00", 10)

	resp := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"cliente_nombre": "Ana Lopez",
		"metodo_pago":    "efectivo",
		"lineas":         []map[string]any{{"inventario_id": invID, "cantidad": 2}},
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var venta ventaResult
	decodeJSON(t, resp, &venta)
	assert.Equal(t, "completa", venta.Resultado)
	assert.Equal(t, "completada", venta.Venta.Estado)
	assert.Equal(t, "V-000001", venta.Venta.NumeroVenta)
	assert.Equal(t, "300", venta.Venta.Total.String())

	// Detail fetch reads back the same sale.
	resp = do(t, env.server, "GET", "/v1/ventas/"+venta.Venta.ID, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detalle struct {
		NumeroVenta string `json:"numero_venta"`
	}
	decodeJSON(t, resp, &detalle)
	assert.Equal(t, "V-000001", detalle.NumeroVenta)

	// Stock was decremented.
	resp = do(t, env.server, "GET", "/v1/inventario/"+invID, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inv struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, resp, &inv)
	assert.Equal(t, 8, inv.StockActual)

	// And the movement trail records it.
	resp = do(t, env.server, "GET", "/v1/inventario/"+invID+"/movimientos", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movimientos []struct {
		Tipo     string `json:"tipo"`
		Cantidad int    `json:"cantidad"`
	}
	decodeJSON(t, resp, &movimientos)
	require.Len(t, movimientos, 1)
	assert.Equal(t, "venta", movimientos[0].Tipo)
	assert.Equal(t, -2, movimientos[0].Cantidad)
}

func TestE2E_VentaParcialPorStock(t *testing.T) {
	env := setupTestEnv(t)
	conStock := seedVariante(t, env, "REM-200", "100.00", 10)
	sinStock := seedVariante(t, env, "REM-201", "100.00", 1)

	resp := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"cliente_nombre": "Carlos Perez",
		"metodo_pago":    "tarjeta",
		"lineas": []map[string]any{
			{"inventario_id": conStock, "cantidad": 2},
			{"inventario_id": sinStock, "cantidad": 5},
		},
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var venta ventaResult
	decodeJSON(t, resp, &venta)
	assert.Equal(t, "parcial", venta.Resultado)
	assert.Equal(t, "completada", venta.Venta.Estado)
	require.Len(t, venta.LineasFallidas, 1)
	assert.Equal(t, sinStock, venta.LineasFallidas[0].InventarioID)
	assert.Equal(t, "200", venta.Venta.Total.String())

	// The failed line touched nothing.
	invResp := do(t, env.server, "GET", "/v1/inventario/"+sinStock, nil, env.token)
	require.Equal(t, http.StatusOK, invResp.StatusCode)
	var inv struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, invResp, &inv)
	assert.Equal(t, 1, inv.StockActual)
}

func TestE2E_PrecioPromotora(t *testing.T) {
	env := setupTestEnv(t)
	invID := seedVariante(t, env, "REM-300", "100.00", 10)

	// Admin creates the promotora; she logs in and sells at her own tier.
	resp := do(t, env.server, "POST", "/v1/usuarios", jsonBody(t, map[string]any{
		"username": "promo1",
		"nombre":   "Promotora Uno",
		"password": "promo-e2e-pass",
		"rol":      "promotora",
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	promoToken := env.login(t, "promo1", "promo-e2e-pass")
	resp = do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"cliente_nombre": "Cliente Promo",
		"metodo_pago":    "efectivo",
		"lineas":         []map[string]any{{"inventario_id": invID, "cantidad": 2}},
	}), promoToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var venta ventaResult
	decodeJSON(t, resp, &venta)
	require.Len(t, venta.Venta.Detalles, 1)
	assert.Equal(t, "120", venta.Venta.Detalles[0].PrecioUnitario.String())
	assert.Equal(t, "240", venta.Venta.Total.String())
}

func TestE2E_AgregarArticuloConflictoStock(t *testing.T) {
	env := setupTestEnv(t)
	invID := seedVariante(t, env, "REM-400", "100.00", 1)

	resp := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{
		"cliente_nombre": "Cliente",
		"metodo_pago":    "efectivo",
		"lineas":         []map[string]any{{"inventario_id": invID, "cantidad": 1}},
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta ventaResult
	decodeJSON(t, resp, &venta)

	// The finalize drained the stock: another line must hit the conflict.
	resp = do(t, env.server, "POST", "/v1/ventas/"+venta.Venta.ID+"/articulos", jsonBody(t, map[string]any{
		"inventario_id": invID,
		"cantidad":      1,
	}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_AjusteStockInsuficiente(t *testing.T) {
	env := setupTestEnv(t)
	invID := seedVariante(t, env, "REM-500", "100.00", 2)

	resp := do(t, env.server, "POST", "/v1/inventario/"+invID+"/ajustar", jsonBody(t, map[string]any{
		"delta":  -5,
		"motivo": "ajuste imposible",
	}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_ConsultaPorCodigoCacheada(t *testing.T) {
	env := setupTestEnv(t)
	seedVariante(t, env, "REM-600", "100.00", 5)

	for i := 0; i < 2; i++ { // second hit comes from Redis
		resp := do(t, env.server, "GET", "/v1/productos/consulta/REM-600", nil, env.token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var consulta struct {
			Variantes []struct {
				StockActual int `json:"stock_actual"`
			} `json:"variantes"`
		}
		decodeJSON(t, resp, &consulta)
		require.Len(t, consulta.Variantes, 1)
		assert.Equal(t, 5, consulta.Variantes[0].StockActual)
	}
}

func TestE2E_PromotoraNoPuedeCrearProductos(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/usuarios", jsonBody(t, map[string]any{
		"username": "promo2",
		"nombre":   "Promotora Dos",
		"password": "promo-e2e-pass",
		"rol":      "promotora",
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	promoToken := env.login(t, "promo2", "promo-e2e-pass")

	resp = do(t, env.server, "POST", "/v1/marcas", jsonBody(t, map[string]string{"nombre": "Prohibida"}), promoToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
