package service

import (
	"context"
	"time"

	"modapos/internal/dto"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioService manages size/color variants: CRUD, manual stock
// adjustments (always audited through MovimientoStock) and low-stock alerts.
// Stock decrements that belong to a sale never go through this service —
// they live inside the sale line transaction.
type InventarioService interface {
	Crear(ctx context.Context, req dto.CrearInventarioRequest) (*dto.InventarioResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.InventarioResponse, error)
	ListarPorProducto(ctx context.Context, productoID uuid.UUID, soloEnStock bool) ([]dto.InventarioResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarInventarioRequest) (*dto.InventarioResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	AjustarStock(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.AjustarStockRequest) (*dto.InventarioResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	ListarMovimientos(ctx context.Context, inventarioID uuid.UUID, limit int) ([]dto.MovimientoStockResponse, error)
}

type inventarioService struct {
	repo         repository.InventarioRepository
	productoRepo repository.ProductoRepository
}

func NewInventarioService(repo repository.InventarioRepository, productoRepo repository.ProductoRepository) InventarioService {
	return &inventarioService{repo: repo, productoRepo: productoRepo}
}

func (s *inventarioService) Crear(ctx context.Context, req dto.CrearInventarioRequest) (*dto.InventarioResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, err
	}
	if _, err := s.productoRepo.FindByID(ctx, productoID); err != nil {
		return nil, ErrProductoNoEncontrado
	}

	inv := &model.Inventario{
		ProductoID:    productoID,
		CodigoInterno: req.CodigoInterno,
		Talla:         req.Talla,
		Color:         req.Color,
		StockActual:   req.StockActual,
		StockMinimo:   req.StockMinimo,
		Ubicacion:     req.Ubicacion,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return s.Obtener(ctx, inv.ID)
}

func (s *inventarioService) Obtener(ctx context.Context, id uuid.UUID) (*dto.InventarioResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrInventarioNoEncontrado
	}
	resp := inventarioToResponse(inv)
	return &resp, nil
}

func (s *inventarioService) ListarPorProducto(ctx context.Context, productoID uuid.UUID, soloEnStock bool) ([]dto.InventarioResponse, error) {
	variantes, err := s.repo.FindByProductoID(ctx, productoID, soloEnStock)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventarioResponse, 0, len(variantes))
	for i := range variantes {
		out = append(out, inventarioToResponse(&variantes[i]))
	}
	return out, nil
}

func (s *inventarioService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarInventarioRequest) (*dto.InventarioResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrInventarioNoEncontrado
	}
	if req.Talla != nil {
		inv.Talla = *req.Talla
	}
	if req.Color != nil {
		inv.Color = *req.Color
	}
	if req.StockMinimo != nil {
		inv.StockMinimo = *req.StockMinimo
	}
	if req.Ubicacion != nil {
		inv.Ubicacion = req.Ubicacion
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return s.Obtener(ctx, id)
}

func (s *inventarioService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

// AjustarStock applies a signed manual correction and records the movement
// in the same transaction. Negative adjustments may not take stock below zero.
func (s *inventarioService) AjustarStock(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.AjustarStockRequest) (*dto.InventarioResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrInventarioNoEncontrado
	}
	if inv.StockActual+req.Delta < 0 {
		return nil, ErrStockInsuficiente
	}
	stockAnterior := inv.StockActual

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if req.Delta < 0 {
			affected, err := s.repo.DescontarStockTx(tx, id, -req.Delta)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockInsuficiente
			}
		} else if err := s.repo.ReponerStockTx(tx, id, req.Delta); err != nil {
			return err
		}
		mov := &model.MovimientoStock{
			InventarioID:  id,
			Tipo:          "ajuste_manual",
			Cantidad:      req.Delta,
			StockAnterior: stockAnterior,
			StockNuevo:    stockAnterior + req.Delta,
			Motivo:        req.Motivo + " (" + actor.Username + ")",
		}
		return s.repo.CreateMovimientoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Obtener(ctx, id)
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	variantes, err := s.repo.ListBajoStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlertaStockResponse, 0, len(variantes))
	for _, v := range variantes {
		alerta := dto.AlertaStockResponse{
			InventarioID:  v.ID.String(),
			CodigoInterno: v.CodigoInterno,
			Talla:         v.Talla,
			Color:         v.Color,
			StockActual:   v.StockActual,
			StockMinimo:   v.StockMinimo,
		}
		if v.Producto != nil {
			alerta.Producto = v.Producto.Nombre
		}
		out = append(out, alerta)
	}
	return out, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, inventarioID uuid.UUID, limit int) ([]dto.MovimientoStockResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	movimientos, err := s.repo.ListMovimientos(ctx, inventarioID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoStockResponse, 0, len(movimientos))
	for _, m := range movimientos {
		out = append(out, dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			InventarioID:  m.InventarioID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func inventarioToResponse(inv *model.Inventario) dto.InventarioResponse {
	resp := dto.InventarioResponse{
		ID:            inv.ID.String(),
		ProductoID:    inv.ProductoID.String(),
		CodigoInterno: inv.CodigoInterno,
		Talla:         inv.Talla,
		Color:         inv.Color,
		StockActual:   inv.StockActual,
		StockMinimo:   inv.StockMinimo,
		Ubicacion:     inv.Ubicacion,
		Activo:        inv.Activo,
	}
	if inv.Producto != nil {
		resp.Producto = inv.Producto.Nombre
	}
	return resp
}
