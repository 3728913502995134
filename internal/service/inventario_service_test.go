package service_test

import (
	"context"
	"errors"
	"testing"

	"modapos/internal/dto"
	"modapos/internal/model"
	"modapos/internal/repository"
	"modapos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

// stubProductoRepo holds products in memory; only FindByID matters here.
type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo && p.Activo {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func buildInventarioSvc() (service.InventarioService, *stubInventarioRepo, *stubProductoRepo) {
	invRepo := newStubInventarioRepo()
	prodRepo := newStubProductoRepo()
	return service.NewInventarioService(invRepo, prodRepo), invRepo, prodRepo
}

func TestCrearInventario(t *testing.T) {
	svc, _, prodRepo := buildInventarioSvc()
	producto := &model.Producto{ID: uuid.New(), Codigo: "REM-001", Nombre: "Remera basica", Activo: true}
	require.NoError(t, prodRepo.Create(context.Background(), producto))

	resp, err := svc.Crear(context.Background(), dto.CrearInventarioRequest{
		ProductoID:    producto.ID.String(),
		CodigoInterno: "REM-001-M-NEG",
		Talla:         "M",
		Color:         "Negro",
		StockActual:   15,
		StockMinimo:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, "REM-001-M-NEG", resp.CodigoInterno)
	assert.Equal(t, 15, resp.StockActual)
	assert.True(t, resp.Activo)
}

func TestCrearInventario_ProductoNoExiste(t *testing.T) {
	svc, _, _ := buildInventarioSvc()

	_, err := svc.Crear(context.Background(), dto.CrearInventarioRequest{
		ProductoID:    uuid.NewString(),
		CodigoInterno: "X-001",
		Talla:         "S",
		Color:         "Rojo",
	})
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)
}

func TestObtenerInventario_NoEncontrado(t *testing.T) {
	svc, _, _ := buildInventarioSvc()

	_, err := svc.Obtener(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrInventarioNoEncontrado)
}

func TestAjustarStock_Incremento(t *testing.T) {
	svc, invRepo, _ := buildInventarioSvc()
	v := seedVariante(invRepo, "AJU-M", "M", "Rojo", "80.00", 4)
	actor := model.Actor{ID: uuid.New(), Username: "deposito", Rol: model.RolAdmin}

	resp, err := svc.AjustarStock(context.Background(), actor, v.ID, dto.AjustarStockRequest{
		Delta:  6,
		Motivo: "reposicion proveedor",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.StockActual)

	require.Len(t, invRepo.movimientos, 1)
	mov := invRepo.movimientos[0]
	assert.Equal(t, "ajuste_manual", mov.Tipo)
	assert.Equal(t, 6, mov.Cantidad)
	assert.Equal(t, 4, mov.StockAnterior)
	assert.Equal(t, 10, mov.StockNuevo)
	// The audit trail names who made the correction.
	assert.Contains(t, mov.Motivo, "reposicion proveedor")
	assert.Contains(t, mov.Motivo, "deposito")
}

func TestAjustarStock_Decremento(t *testing.T) {
	svc, invRepo, _ := buildInventarioSvc()
	v := seedVariante(invRepo, "AJU-L", "L", "Azul", "80.00", 10)
	actor := model.Actor{ID: uuid.New(), Username: "admin", Rol: model.RolAdmin}

	resp, err := svc.AjustarStock(context.Background(), actor, v.ID, dto.AjustarStockRequest{
		Delta:  -3,
		Motivo: "merma por rotura",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.StockActual)
	require.Len(t, invRepo.movimientos, 1)
	assert.Equal(t, -3, invRepo.movimientos[0].Cantidad)
}

func TestAjustarStock_NoPuedeQuedarNegativo(t *testing.T) {
	svc, invRepo, _ := buildInventarioSvc()
	v := seedVariante(invRepo, "AJU-S", "S", "Verde", "80.00", 2)
	actor := model.Actor{ID: uuid.New(), Username: "admin", Rol: model.RolAdmin}

	_, err := svc.AjustarStock(context.Background(), actor, v.ID, dto.AjustarStockRequest{
		Delta:  -5,
		Motivo: "ajuste imposible",
	})
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)

	// Nothing moved and nothing was recorded.
	assert.Equal(t, 2, invRepo.variantes[v.ID].StockActual)
	assert.Empty(t, invRepo.movimientos)
}

func TestActualizarInventario(t *testing.T) {
	svc, invRepo, _ := buildInventarioSvc()
	v := seedVariante(invRepo, "ACT-M", "M", "Rojo", "80.00", 5)

	nuevoMinimo := 4
	ubicacion := "estante B2"
	resp, err := svc.Actualizar(context.Background(), v.ID, dto.ActualizarInventarioRequest{
		StockMinimo: &nuevoMinimo,
		Ubicacion:   &ubicacion,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.StockMinimo)
	require.NotNil(t, resp.Ubicacion)
	assert.Equal(t, "estante B2", *resp.Ubicacion)
	// Untouched fields keep their values.
	assert.Equal(t, "M", resp.Talla)
	assert.Equal(t, 5, resp.StockActual)
}

func TestObtenerAlertas(t *testing.T) {
	svc, invRepo, _ := buildInventarioSvc()
	bajo := seedVariante(invRepo, "BJO-M", "M", "Rojo", "80.00", 1) // stock 1, minimo 1
	seedVariante(invRepo, "OK-M", "M", "Azul", "80.00", 9)

	alertas, err := svc.ObtenerAlertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, bajo.ID.String(), alertas[0].InventarioID)
	assert.Equal(t, "Remera Rojo", alertas[0].Producto)
	assert.Equal(t, 1, alertas[0].StockActual)
}

func TestDesactivarInventario_SaleDelListado(t *testing.T) {
	svc, invRepo, _ := buildInventarioSvc()
	v := seedVariante(invRepo, "DES-M", "M", "Rojo", "80.00", 5)

	require.NoError(t, svc.Desactivar(context.Background(), v.ID))

	variantes, err := svc.ListarPorProducto(context.Background(), v.ProductoID, false)
	require.NoError(t, err)
	assert.Empty(t, variantes)
}

func TestListarMovimientos(t *testing.T) {
	svc, invRepo, _ := buildInventarioSvc()
	v := seedVariante(invRepo, "MOV-M", "M", "Rojo", "80.00", 10)
	actor := model.Actor{ID: uuid.New(), Username: "admin", Rol: model.RolAdmin}

	_, err := svc.AjustarStock(context.Background(), actor, v.ID, dto.AjustarStockRequest{Delta: 5, Motivo: "ingreso mercaderia"})
	require.NoError(t, err)
	_, err = svc.AjustarStock(context.Background(), actor, v.ID, dto.AjustarStockRequest{Delta: -2, Motivo: "merma por rotura"})
	require.NoError(t, err)

	movimientos, err := svc.ListarMovimientos(context.Background(), v.ID, 50)
	require.NoError(t, err)
	require.Len(t, movimientos, 2)
	assert.Equal(t, "ajuste_manual", movimientos[0].Tipo)
	assert.Equal(t, 15, movimientos[0].StockNuevo)
	assert.Equal(t, 13, movimientos[1].StockNuevo)
}
