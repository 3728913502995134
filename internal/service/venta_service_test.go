package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"modapos/internal/dto"
	"modapos/internal/model"
	"modapos/internal/repository"
	"modapos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubVentaRepo is an in-memory VentaRepository for testing.
type stubVentaRepo struct {
	ventas   map[uuid.UUID]*model.Venta
	detalles map[uuid.UUID][]model.VentaDetalle
	inv      *stubInventarioRepo
	seq      int
}

func newStubVentaRepo(inv *stubInventarioRepo) *stubVentaRepo {
	return &stubVentaRepo{
		ventas:   make(map[uuid.UUID]*model.Venta),
		detalles: make(map[uuid.UUID][]model.VentaDetalle),
		inv:      inv,
	}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	// Emulate the Preload chain: attach lines with their variants.
	copia := *v
	copia.Detalles = nil
	for _, d := range r.detalles[id] {
		if inv, ok := r.inv.variantes[d.InventarioID]; ok {
			d.Inventario = inv
		}
		copia.Detalles = append(copia.Detalles, d)
	}
	return &copia, nil
}

func (r *stubVentaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (r *stubVentaRepo) UpdateEstado(_ context.Context, id uuid.UUID, estado string) error {
	v, ok := r.ventas[id]
	if !ok {
		return errors.New("not found")
	}
	v.Estado = estado
	return nil
}

func (r *stubVentaRepo) NextNumeroVenta(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubVentaRepo) CreateDetalleTx(_ *gorm.DB, d *model.VentaDetalle) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.detalles[d.VentaID] = append(r.detalles[d.VentaID], *d)
	return nil
}

func (r *stubVentaRepo) RecalcularTotalesTx(_ *gorm.DB, ventaID uuid.UUID) error {
	v, ok := r.ventas[ventaID]
	if !ok {
		return errors.New("not found")
	}
	subtotal := decimal.Zero
	for _, d := range r.detalles[ventaID] {
		subtotal = subtotal.Add(d.Subtotal)
	}
	v.Subtotal = subtotal
	v.Total = subtotal.Sub(v.Descuento)
	return nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// stubInventarioRepo keeps variants and stock movements in memory. Stock
// decrements follow the same contract as the SQL conditional UPDATE: zero
// rows affected when not enough stock, and never a negative balance.
type stubInventarioRepo struct {
	variantes   map[uuid.UUID]*model.Inventario
	movimientos []model.MovimientoStock
}

func newStubInventarioRepo() *stubInventarioRepo {
	return &stubInventarioRepo{variantes: make(map[uuid.UUID]*model.Inventario)}
}

func (r *stubInventarioRepo) Create(_ context.Context, inv *model.Inventario) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.variantes[inv.ID] = inv
	return nil
}

func (r *stubInventarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Inventario, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubInventarioRepo) FindByCodigoInterno(_ context.Context, codigo string) (*model.Inventario, error) {
	for _, inv := range r.variantes {
		if inv.CodigoInterno == codigo && inv.Activo {
			return inv, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubInventarioRepo) FindByProductoID(_ context.Context, productoID uuid.UUID, soloEnStock bool) ([]model.Inventario, error) {
	var out []model.Inventario
	for _, inv := range r.variantes {
		if inv.ProductoID == productoID && inv.Activo && (!soloEnStock || inv.StockActual > 0) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInventarioRepo) Update(_ context.Context, inv *model.Inventario) error {
	r.variantes[inv.ID] = inv
	return nil
}

func (r *stubInventarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if inv, ok := r.variantes[id]; ok {
		inv.Activo = false
	}
	return nil
}

func (r *stubInventarioRepo) ListBajoStock(_ context.Context) ([]model.Inventario, error) {
	var out []model.Inventario
	for _, inv := range r.variantes {
		if inv.Activo && inv.StockActual <= inv.StockMinimo {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInventarioRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Inventario, error) {
	inv, ok := r.variantes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return inv, nil
}

func (r *stubInventarioRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) (int64, error) {
	inv, ok := r.variantes[id]
	if !ok || !inv.Activo || inv.StockActual < cantidad {
		return 0, nil
	}
	inv.StockActual -= cantidad
	return 1, nil
}

func (r *stubInventarioRepo) ReponerStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	if inv, ok := r.variantes[id]; ok {
		inv.StockActual += cantidad
	}
	return nil
}

func (r *stubInventarioRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubInventarioRepo) ListMovimientos(_ context.Context, _ uuid.UUID, _ int) ([]model.MovimientoStock, error) {
	return r.movimientos, nil
}

func (r *stubInventarioRepo) DB() *gorm.DB { return nil }

var _ repository.InventarioRepository = (*stubInventarioRepo)(nil)

// stubComprobanteRepo records voucher rows created by the workflow.
type stubComprobanteRepo struct {
	creados []model.Comprobante
}

func (r *stubComprobanteRepo) Create(_ context.Context, c *model.Comprobante) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.creados = append(r.creados, *c)
	return nil
}

func (r *stubComprobanteRepo) FindByVentaID(_ context.Context, ventaID uuid.UUID) (*model.Comprobante, error) {
	for i := range r.creados {
		if r.creados[i].VentaID == ventaID {
			return &r.creados[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubComprobanteRepo) MarcarGenerado(_ context.Context, _ uuid.UUID, _ string, _ bool) error {
	return nil
}

func (r *stubComprobanteRepo) MarcarError(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}

func (r *stubComprobanteRepo) ListPendientesRetry(_ context.Context, _ int) ([]model.Comprobante, error) {
	return nil, nil
}

var _ repository.ComprobanteRepository = (*stubComprobanteRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func buildVentaSvc() (service.VentaService, *stubVentaRepo, *stubInventarioRepo, *stubComprobanteRepo) {
	invRepo := newStubInventarioRepo()
	ventaRepo := newStubVentaRepo(invRepo)
	compRepo := &stubComprobanteRepo{}
	svc := service.NewVentaService(ventaRepo, invRepo, compRepo, nil, 30*time.Second)
	return svc, ventaRepo, invRepo, compRepo
}

func seedVariante(r *stubInventarioRepo, codigo, talla, color string, precioBase string, stock int) *model.Inventario {
	marca := &model.Marca{ID: uuid.New(), Nombre: "Urbana", Activo: true}
	producto := &model.Producto{
		ID:              uuid.New(),
		Codigo:          "P-" + codigo,
		Nombre:          "Remera " + color,
		MarcaID:         marca.ID,
		Marca:           marca,
		PrecioVentaBase: decimal.RequireFromString(precioBase),
		Activo:          true,
	}
	inv := &model.Inventario{
		ID:            uuid.New(),
		ProductoID:    producto.ID,
		Producto:      producto,
		CodigoInterno: codigo,
		Talla:         talla,
		Color:         color,
		StockActual:   stock,
		StockMinimo:   1,
		Activo:        true,
	}
	r.variantes[inv.ID] = inv
	return inv
}

func vendedor(rol string) model.Actor {
	return model.Actor{ID: uuid.New(), Username: "test", Rol: rol}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestFinalizarVenta_Completa(t *testing.T) {
	svc, ventaRepo, invRepo, compRepo := buildVentaSvc()
	a := seedVariante(invRepo, "RED-M", "M", "Rojo", "150.00", 10)
	b := seedVariante(invRepo, "BLU-L", "L", "Azul", "200.00", 5)

	resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolAdmin), dto.FinalizarVentaRequest{
		ClienteNombre: "Ana Lopez",
		MetodoPago:    "efectivo",
		Lineas: []dto.LineaVentaRequest{
			{InventarioID: a.ID.String(), Cantidad: 2},
			{InventarioID: b.ID.String(), Cantidad: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoCompleta, resp.Resultado)
	assert.Empty(t, resp.LineasFallidas)
	assert.Equal(t, "completada", resp.Venta.Estado)
	assert.Equal(t, "V-000001", resp.Venta.NumeroVenta)
	// 2 × 150 + 1 × 200 = 500, and the customer without document gets "S/D"
	assert.Equal(t, "500", resp.Venta.Total.String())
	assert.Equal(t, "S/D", resp.Venta.ClienteDocumento)
	assert.Len(t, resp.Venta.Detalles, 2)

	// Stock decremented and one movement per line
	assert.Equal(t, 8, invRepo.variantes[a.ID].StockActual)
	assert.Equal(t, 4, invRepo.variantes[b.ID].StockActual)
	assert.Len(t, invRepo.movimientos, 2)
	for _, m := range invRepo.movimientos {
		assert.Equal(t, "venta", m.Tipo)
		assert.Negative(t, m.Cantidad)
	}

	// Voucher row registered
	require.Len(t, compRepo.creados, 1)
	assert.Equal(t, "pendiente", compRepo.creados[0].Estado)

	// The stored header totals were recomputed from the lines
	stored, err := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.Venta.ID))
	require.NoError(t, err)
	assert.Equal(t, "500", stored.Total.String())
}

func TestFinalizarVenta_SinColaRegistraComprobante(t *testing.T) {
	// Without a queue wired the voucher row must still be persisted in estado
	// pendiente, so the retry cron can pick it up later.
	svc, _, invRepo, compRepo := buildVentaSvc()
	v := seedVariante(invRepo, "RED-M", "M", "Rojo", "150.00", 3)

	resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolAdmin), dto.FinalizarVentaRequest{
		ClienteNombre: "Lucia Rios",
		MetodoPago:    "efectivo",
		Lineas: []dto.LineaVentaRequest{
			{InventarioID: v.ID.String(), Cantidad: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoCompleta, resp.Resultado)

	require.Len(t, compRepo.creados, 1)
	assert.Equal(t, "pendiente", compRepo.creados[0].Estado)
	assert.Equal(t, resp.Venta.ID, compRepo.creados[0].VentaID.String())
}

func TestFinalizarVenta_ParcialPorStock(t *testing.T) {
	svc, _, invRepo, _ := buildVentaSvc()
	ok := seedVariante(invRepo, "RED-M", "M", "Rojo", "150.00", 10)
	sinStock := seedVariante(invRepo, "GRN-S", "S", "Verde", "90.00", 1)

	resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolAdmin), dto.FinalizarVentaRequest{
		ClienteNombre: "Carlos Perez",
		MetodoPago:    "tarjeta",
		Lineas: []dto.LineaVentaRequest{
			{InventarioID: ok.ID.String(), Cantidad: 1},
			{InventarioID: sinStock.ID.String(), Cantidad: 5}, // only 1 available
		},
	})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoParcial, resp.Resultado)
	assert.Equal(t, "completada", resp.Venta.Estado)
	require.Len(t, resp.LineasFallidas, 1)
	assert.Equal(t, sinStock.ID.String(), resp.LineasFallidas[0].InventarioID)
	assert.Contains(t, resp.LineasFallidas[0].Motivo, "stock insuficiente")

	// The surviving line is real; the failed one touched nothing.
	assert.Len(t, resp.Venta.Detalles, 1)
	assert.Equal(t, "150", resp.Venta.Total.String())
	assert.Equal(t, 1, invRepo.variantes[sinStock.ID].StockActual)
}

func TestFinalizarVenta_TodasLasLineasFallan(t *testing.T) {
	svc, ventaRepo, invRepo, compRepo := buildVentaSvc()
	agotado := seedVariante(invRepo, "BLK-M", "M", "Negro", "120.00", 0)

	resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolAdmin), dto.FinalizarVentaRequest{
		ClienteNombre: "Maria Soto",
		MetodoPago:    "efectivo",
		Lineas: []dto.LineaVentaRequest{
			{InventarioID: agotado.ID.String(), Cantidad: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoFallida, resp.Resultado)
	assert.Len(t, resp.LineasFallidas, 1)
	assert.Empty(t, resp.Venta.Detalles)
	assert.True(t, resp.Venta.Total.IsZero())

	// The header survives in estado pendiente; no voucher is queued.
	stored, err := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.Venta.ID))
	require.NoError(t, err)
	assert.Equal(t, "pendiente", stored.Estado)
	assert.Empty(t, compRepo.creados)
}

func TestFinalizarVenta_PrecioPorRol(t *testing.T) {
	// Same product, same cart: a promotora pays base × 1.20, anyone else base.
	base := "100.00"

	t.Run("promotora", func(t *testing.T) {
		svc, _, invRepo, _ := buildVentaSvc()
		v := seedVariante(invRepo, "PRM-M", "M", "Blanco", base, 10)

		resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolPromotora), dto.FinalizarVentaRequest{
			ClienteNombre: "Cliente Promo",
			MetodoPago:    "efectivo",
			Lineas:        []dto.LineaVentaRequest{{InventarioID: v.ID.String(), Cantidad: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, "120", resp.Venta.Detalles[0].PrecioUnitario.String())
		assert.Equal(t, "240", resp.Venta.Total.String())
	})

	t.Run("admin", func(t *testing.T) {
		svc, _, invRepo, _ := buildVentaSvc()
		v := seedVariante(invRepo, "PRM-M", "M", "Blanco", base, 10)

		resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolAdmin), dto.FinalizarVentaRequest{
			ClienteNombre: "Cliente Directo",
			MetodoPago:    "efectivo",
			Lineas:        []dto.LineaVentaRequest{{InventarioID: v.ID.String(), Cantidad: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, "100", resp.Venta.Detalles[0].PrecioUnitario.String())
		assert.Equal(t, "200", resp.Venta.Total.String())
	})
}

func TestFinalizarVenta_PrecioEsperadoNoCoincide(t *testing.T) {
	// The client's expected price never overrides the server's: the stale
	// value is logged and the role price is the one persisted.
	svc, _, invRepo, _ := buildVentaSvc()
	v := seedVariante(invRepo, "STL-M", "M", "Gris", "180.00", 10)
	precioViejo := decimal.RequireFromString("99.99")

	resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolAdmin), dto.FinalizarVentaRequest{
		ClienteNombre: "Cliente Cache",
		MetodoPago:    "efectivo",
		Lineas: []dto.LineaVentaRequest{
			{InventarioID: v.ID.String(), Cantidad: 1, PrecioEsperado: &precioViejo},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoCompleta, resp.Resultado)
	assert.Equal(t, "180", resp.Venta.Detalles[0].PrecioUnitario.String())
}

func TestFinalizarVenta_Validaciones(t *testing.T) {
	svc, _, invRepo, _ := buildVentaSvc()
	v := seedVariante(invRepo, "VAL-M", "M", "Rojo", "50.00", 10)
	actor := vendedor(model.RolAdmin)

	_, err := svc.FinalizarVenta(context.Background(), actor, dto.FinalizarVentaRequest{
		ClienteNombre: "Sin Carrito",
		MetodoPago:    "efectivo",
	})
	assert.ErrorIs(t, err, service.ErrCarritoVacio)

	_, err = svc.FinalizarVenta(context.Background(), actor, dto.FinalizarVentaRequest{
		ClienteNombre: "Cantidad Mala",
		MetodoPago:    "efectivo",
		Lineas:        []dto.LineaVentaRequest{{InventarioID: v.ID.String(), Cantidad: 0}},
	})
	assert.ErrorIs(t, err, service.ErrCantidadInvalida)

	_, err = svc.FinalizarVenta(context.Background(), actor, dto.FinalizarVentaRequest{
		ClienteNombre: "Pago Malo",
		MetodoPago:    "cheque",
		Lineas:        []dto.LineaVentaRequest{{InventarioID: v.ID.String(), Cantidad: 1}},
	})
	assert.ErrorIs(t, err, service.ErrMetodoPagoInvalido)
}

func TestFinalizarVenta_ConDescuento(t *testing.T) {
	svc, _, invRepo, _ := buildVentaSvc()
	v := seedVariante(invRepo, "DSC-M", "M", "Azul", "100.00", 10)

	resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolAdmin), dto.FinalizarVentaRequest{
		ClienteNombre: "Con Descuento",
		MetodoPago:    "efectivo",
		Descuento:     decimal.RequireFromString("30.00"),
		Lineas:        []dto.LineaVentaRequest{{InventarioID: v.ID.String(), Cantidad: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "300", resp.Venta.Subtotal.String())
	assert.Equal(t, "270", resp.Venta.Total.String())
}

func TestAgregarArticulo_VentaNoEncontrada(t *testing.T) {
	svc, _, invRepo, _ := buildVentaSvc()
	v := seedVariante(invRepo, "NOV-M", "M", "Rojo", "50.00", 10)

	err := svc.AgregarArticulo(context.Background(), vendedor(model.RolAdmin), uuid.New(), dto.LineaVentaRequest{
		InventarioID: v.ID.String(),
		Cantidad:     1,
	})
	assert.ErrorIs(t, err, service.ErrVentaNoEncontrada)
}

func TestAgregarArticulo_InventarioNoEncontrado(t *testing.T) {
	svc, _, _, _ := buildVentaSvc()
	actor := vendedor(model.RolAdmin)

	venta, err := svc.RealizarVenta(context.Background(), actor, dto.FinalizarVentaRequest{
		ClienteNombre: "Cliente",
		MetodoPago:    "efectivo",
	})
	require.NoError(t, err)

	err = svc.AgregarArticulo(context.Background(), actor, venta.ID, dto.LineaVentaRequest{
		InventarioID: uuid.NewString(),
		Cantidad:     1,
	})
	assert.ErrorIs(t, err, service.ErrInventarioNoEncontrado)
}

func TestObtenerDetalle_Idempotente(t *testing.T) {
	svc, _, invRepo, _ := buildVentaSvc()
	v := seedVariante(invRepo, "IDP-M", "M", "Rojo", "75.00", 10)

	resp, err := svc.FinalizarVenta(context.Background(), vendedor(model.RolAdmin), dto.FinalizarVentaRequest{
		ClienteNombre: "Lector",
		MetodoPago:    "transferencia",
		Lineas:        []dto.LineaVentaRequest{{InventarioID: v.ID.String(), Cantidad: 2}},
	})
	require.NoError(t, err)

	id := uuid.MustParse(resp.Venta.ID)
	primero, err := svc.ObtenerDetalle(context.Background(), id)
	require.NoError(t, err)
	segundo, err := svc.ObtenerDetalle(context.Background(), id)
	require.NoError(t, err)

	// Reading twice changes nothing: same totals, lines and stock.
	assert.Equal(t, primero.Total.String(), segundo.Total.String())
	assert.Equal(t, len(primero.Detalles), len(segundo.Detalles))
	assert.Equal(t, 8, invRepo.variantes[v.ID].StockActual)

	// Receipt enrichment comes through the detail fetch.
	assert.Equal(t, "IDP-M", primero.Detalles[0].CodigoInterno)
	assert.Equal(t, "Urbana", primero.Detalles[0].Marca)
}

func TestRealizarVenta_NumeroSecuencial(t *testing.T) {
	svc, _, _, _ := buildVentaSvc()
	actor := vendedor(model.RolAdmin)

	req := dto.FinalizarVentaRequest{ClienteNombre: "Cliente", MetodoPago: "efectivo"}
	v1, err := svc.RealizarVenta(context.Background(), actor, req)
	require.NoError(t, err)
	v2, err := svc.RealizarVenta(context.Background(), actor, req)
	require.NoError(t, err)

	assert.Equal(t, "V-000001", v1.NumeroVenta)
	assert.Equal(t, "V-000002", v2.NumeroVenta)
	assert.Equal(t, "pendiente", v1.Estado)
}
