package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"modapos/internal/dto"
	"modapos/internal/metrics"
	"modapos/internal/model"
	"modapos/internal/repository"
	"modapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaService orchestrates the sale transaction workflow: header creation,
// per-line stock-validated inserts, and the final detail fetch that feeds the
// receipt. Each operation runs in its own database transaction; the workflow
// as a whole deliberately is not one transaction — a line that fails leaves
// every previously persisted line in place.
type VentaService interface {
	// RealizarVenta creates the sale header in estado "pendiente".
	RealizarVenta(ctx context.Context, actor model.Actor, req dto.FinalizarVentaRequest) (*model.Venta, error)
	// AgregarArticulo validates stock, decrements it and inserts one line,
	// all inside a single transaction.
	AgregarArticulo(ctx context.Context, actor model.Actor, ventaID uuid.UUID, linea dto.LineaVentaRequest) error
	// FinalizarVenta is the composite operation the UI calls: header + N
	// sequential lines + detail fetch, returning a tagged outcome.
	FinalizarVenta(ctx context.Context, actor model.Actor, req dto.FinalizarVentaRequest) (*dto.FinalizarVentaResponse, error)
	ObtenerDetalle(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo            repository.VentaRepository
	inventarioRepo  repository.InventarioRepository
	comprobanteRepo repository.ComprobanteRepository
	dispatcher      *worker.Dispatcher
	timeout         time.Duration
}

func NewVentaService(
	repo repository.VentaRepository,
	inventarioRepo repository.InventarioRepository,
	comprobanteRepo repository.ComprobanteRepository,
	dispatcher *worker.Dispatcher,
	timeout time.Duration,
) VentaService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ventaService{
		repo:            repo,
		inventarioRepo:  inventarioRepo,
		comprobanteRepo: comprobanteRepo,
		dispatcher:      dispatcher,
		timeout:         timeout,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

var metodosPago = map[string]bool{
	model.PagoEfectivo:      true,
	model.PagoTarjeta:       true,
	model.PagoTransferencia: true,
	model.PagoMixto:         true,
}

// ── RealizarVenta ────────────────────────────────────────────────────────────

func (s *ventaService) RealizarVenta(ctx context.Context, actor model.Actor, req dto.FinalizarVentaRequest) (*model.Venta, error) {
	if req.ClienteNombre == "" {
		return nil, errors.New("el nombre del cliente es obligatorio")
	}
	if !metodosPago[req.MetodoPago] {
		return nil, ErrMetodoPagoInvalido
	}

	documento := model.DocumentoSinDato
	if req.ClienteDocumento != nil && *req.ClienteDocumento != "" {
		documento = *req.ClienteDocumento
	}

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextNumeroVenta(ctx, tx)
		if err != nil {
			return err
		}
		venta = model.Venta{
			NumeroVenta:      fmt.Sprintf("V-%06d", num),
			UsuarioID:        actor.ID,
			ClienteNombre:    req.ClienteNombre,
			ClienteDocumento: documento,
			Descuento:        req.Descuento,
			MetodoPago:       req.MetodoPago,
			Observaciones:    req.Observaciones,
			Estado:           model.VentaPendiente,
		}
		return s.repo.Create(ctx, tx, &venta)
	})
	if txErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrVentaNoCreada, txErr)
	}
	if venta.ID == uuid.Nil && s.repo.DB() != nil {
		return nil, ErrVentaNoCreada
	}
	return &venta, nil
}

// ── AgregarArticulo ──────────────────────────────────────────────────────────
// One transaction per line, mirroring the per-call atomicity of the stock
// decrement procedure: re-validate stock, decrement, insert the line with a
// snapshotted unit price, recompute the header totals.

func (s *ventaService) AgregarArticulo(ctx context.Context, actor model.Actor, ventaID uuid.UUID, linea dto.LineaVentaRequest) error {
	if linea.Cantidad <= 0 {
		return ErrCantidadInvalida
	}
	inventarioID, err := uuid.Parse(linea.InventarioID)
	if err != nil {
		return fmt.Errorf("inventario_id invalido: %w", err)
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta, err := s.repo.FindByIDTx(tx, ventaID)
		if err != nil {
			return ErrVentaNoEncontrada
		}
		if venta.Estado != model.VentaPendiente && venta.Estado != model.VentaCompletada {
			return ErrVentaCerrada
		}

		inv, err := s.inventarioRepo.FindByIDTx(tx, inventarioID)
		if err != nil {
			return ErrInventarioNoEncontrado
		}
		if inv.Producto == nil {
			return ErrProductoNoEncontrado
		}

		// Role-based pricing: the server resolves the price; the client's
		// expectation is only reconciled, never trusted.
		precio := inv.Producto.PrecioParaRol(actor.Rol)
		if linea.PrecioEsperado != nil && !linea.PrecioEsperado.Equal(precio) {
			log.Warn().
				Str("venta_id", ventaID.String()).
				Str("inventario_id", inv.ID.String()).
				Str("precio_cliente", linea.PrecioEsperado.String()).
				Str("precio_servidor", precio.String()).
				Msg("precio esperado no coincide; se usa el precio del servidor")
		}

		stockAntes := inv.StockActual
		affected, err := s.inventarioRepo.DescontarStockTx(tx, inv.ID, linea.Cantidad)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s %s/%s (disponible %d, pedido %d)",
				ErrStockInsuficiente, inv.CodigoInterno, inv.Talla, inv.Color, stockAntes, linea.Cantidad)
		}

		detalle := &model.VentaDetalle{
			VentaID:        ventaID,
			InventarioID:   inv.ID,
			Cantidad:       linea.Cantidad,
			PrecioUnitario: precio,
			Subtotal:       precio.Mul(decimal.NewFromInt(int64(linea.Cantidad))),
		}
		if err := s.repo.CreateDetalleTx(tx, detalle); err != nil {
			return err
		}

		if err := s.repo.RecalcularTotalesTx(tx, ventaID); err != nil {
			return err
		}

		ventaRef := ventaID
		mov := &model.MovimientoStock{
			InventarioID:  inv.ID,
			Tipo:          "venta",
			Cantidad:      -linea.Cantidad,
			StockAnterior: stockAntes,
			StockNuevo:    stockAntes - linea.Cantidad,
			Motivo:        fmt.Sprintf("Venta %s", venta.NumeroVenta),
			ReferenciaID:  &ventaRef,
		}
		return s.inventarioRepo.CreateMovimientoTx(tx, mov)
	})
}

// ── FinalizarVenta ───────────────────────────────────────────────────────────

func (s *ventaService) FinalizarVenta(ctx context.Context, actor model.Actor, req dto.FinalizarVentaRequest) (*dto.FinalizarVentaResponse, error) {
	inicio := time.Now()

	// Reject before touching the database.
	if len(req.Lineas) == 0 {
		return nil, ErrCarritoVacio
	}
	for _, l := range req.Lineas {
		if l.Cantidad <= 0 {
			return nil, ErrCantidadInvalida
		}
	}

	// Bound the whole workflow so a stuck connection never hangs a terminal.
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 1. Header — a failure here aborts everything; no line is attempted.
	venta, err := s.RealizarVenta(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	// 2. Lines, sequentially in cart order. A failed line is recorded and
	// surfaced but does not stop the remaining lines; already persisted
	// lines are not compensated.
	var fallidas []dto.LineaFallidaResponse
	for _, linea := range req.Lineas {
		if err := s.AgregarArticulo(ctx, actor, venta.ID, linea); err != nil {
			log.Warn().
				Str("venta_id", venta.ID.String()).
				Str("inventario_id", linea.InventarioID).
				Int("cantidad", linea.Cantidad).
				Err(err).
				Msg("linea de venta rechazada")
			metrics.LineasFallidas.Inc()
			fallidas = append(fallidas, dto.LineaFallidaResponse{
				InventarioID: linea.InventarioID,
				Cantidad:     linea.Cantidad,
				Motivo:       err.Error(),
			})
		}
	}

	persistidas := len(req.Lineas) - len(fallidas)
	if persistidas > 0 {
		if err := s.repo.UpdateEstado(ctx, venta.ID, model.VentaCompletada); err != nil {
			return nil, err
		}
	}

	// 3. Detail fetch — the database is the only source of truth for totals.
	detalle, err := s.ObtenerDetalle(ctx, venta.ID)
	if err != nil {
		return nil, err
	}

	resultado := dto.ResultadoCompleta
	switch {
	case persistidas == 0:
		resultado = dto.ResultadoFallida
	case len(fallidas) > 0:
		resultado = dto.ResultadoParcial
	}

	metrics.VentasFinalizadas.WithLabelValues(resultado).Inc()
	metrics.FinalizarDuracion.Observe(time.Since(inicio).Seconds())

	// 4. Voucher job — best effort, fire & forget. The row is persisted even
	// when no dispatcher is wired: the retry cron recovers it later.
	if resultado != dto.ResultadoFallida {
		comp := &model.Comprobante{VentaID: venta.ID, Estado: "pendiente", EmailCliente: req.ClienteEmail}
		if s.comprobanteRepo != nil {
			if err := s.comprobanteRepo.Create(ctx, comp); err != nil {
				log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("no se pudo registrar el comprobante")
			}
		}
		if s.dispatcher != nil {
			payload := worker.ComprobantePayload{VentaID: venta.ID.String()}
			if req.ClienteEmail != nil {
				payload.ClienteEmail = *req.ClienteEmail
			}
			if err := s.dispatcher.EnqueueComprobante(ctx, payload); err != nil {
				log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("no se pudo encolar el comprobante")
			}
		}
	}

	return &dto.FinalizarVentaResponse{
		Resultado:      resultado,
		Venta:          detalle,
		LineasFallidas: fallidas,
	}, nil
}

// ── Lecturas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerDetalle(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrVentaNoEncontrada
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:               v.ID.String(),
		NumeroVenta:      v.NumeroVenta,
		ClienteNombre:    v.ClienteNombre,
		ClienteDocumento: v.ClienteDocumento,
		Subtotal:         v.Subtotal,
		Descuento:        v.Descuento,
		Total:            v.Total,
		MetodoPago:       v.MetodoPago,
		Observaciones:    v.Observaciones,
		Estado:           v.Estado,
		Detalles:         make([]dto.DetalleLineaResponse, 0, len(v.Detalles)),
		CreatedAt:        v.CreatedAt.Format(time.RFC3339),
	}
	if v.Usuario != nil {
		resp.Vendedor = v.Usuario.Nombre
	}
	for _, d := range v.Detalles {
		linea := dto.DetalleLineaResponse{
			InventarioID:   d.InventarioID.String(),
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		}
		if d.Inventario != nil {
			linea.CodigoInterno = d.Inventario.CodigoInterno
			linea.Talla = d.Inventario.Talla
			linea.Color = d.Inventario.Color
			if d.Inventario.Producto != nil {
				linea.Producto = d.Inventario.Producto.Nombre
				if d.Inventario.Producto.Marca != nil {
					linea.Marca = d.Inventario.Producto.Marca.Nombre
				}
			}
		}
		resp.Detalles = append(resp.Detalles, linea)
	}
	return resp
}
