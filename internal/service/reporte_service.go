package service

import (
	"context"
	"errors"

	"modapos/internal/dto"
	"modapos/internal/repository"
)

// ReporteService shapes the read-only aggregate queries for the UI.
type ReporteService interface {
	VentasPorDia(ctx context.Context, filter dto.ReporteFilter) ([]dto.VentasPorDiaResponse, error)
	TopProductos(ctx context.Context, filter dto.ReporteFilter, limit int) ([]dto.TopProductoResponse, error)
	ResumenDashboard(ctx context.Context) (*dto.ResumenDashboardResponse, error)
}

type reporteService struct {
	repo repository.ReporteRepository
}

func NewReporteService(repo repository.ReporteRepository) ReporteService {
	return &reporteService{repo: repo}
}

func (s *reporteService) VentasPorDia(ctx context.Context, filter dto.ReporteFilter) ([]dto.VentasPorDiaResponse, error) {
	if filter.Desde > filter.Hasta {
		return nil, errors.New("rango de fechas invalido")
	}
	rows, err := s.repo.VentasPorDia(ctx, filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VentasPorDiaResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.VentasPorDiaResponse{
			Fecha:          r.Fecha,
			CantidadVentas: r.CantidadVentas,
			MontoTotal:     r.MontoTotal,
		})
	}
	return out, nil
}

func (s *reporteService) TopProductos(ctx context.Context, filter dto.ReporteFilter, limit int) ([]dto.TopProductoResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.repo.TopProductos(ctx, filter.Desde, filter.Hasta, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopProductoResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductoResponse{
			ProductoID:       r.ProductoID,
			Producto:         r.Producto,
			Marca:            r.Marca,
			UnidadesVendidas: r.UnidadesVendidas,
			MontoTotal:       r.MontoTotal,
		})
	}
	return out, nil
}

func (s *reporteService) ResumenDashboard(ctx context.Context) (*dto.ResumenDashboardResponse, error) {
	row, err := s.repo.ResumenDashboard(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ResumenDashboardResponse{
		VentasHoy:        row.VentasHoy,
		MontoHoy:         row.MontoHoy,
		ProductosActivos: row.ProductosActivos,
		AlertasStock:     row.AlertasStock,
	}, nil
}
