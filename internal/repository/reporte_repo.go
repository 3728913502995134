package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aggregate rows scanned straight from SQL. Monetary columns land in
// decimal.Decimal (its sql.Scanner accepts the driver's NUMERIC strings),
// so report values stay arithmetic-safe — never float, never string.

type VentasPorDiaRow struct {
	Fecha          string
	CantidadVentas int64
	MontoTotal     decimal.Decimal
}

type TopProductoRow struct {
	ProductoID       string
	Producto         string
	Marca            string
	UnidadesVendidas int64
	MontoTotal       decimal.Decimal
}

type ResumenDashboardRow struct {
	VentasHoy        int64
	MontoHoy         decimal.Decimal
	ProductosActivos int64
	AlertasStock     int64
}

// ReporteRepository runs the read-only aggregation queries behind reporting.
// Only ventas en estado "completada" are counted.
type ReporteRepository interface {
	VentasPorDia(ctx context.Context, desde, hasta string) ([]VentasPorDiaRow, error)
	TopProductos(ctx context.Context, desde, hasta string, limit int) ([]TopProductoRow, error)
	ResumenDashboard(ctx context.Context) (*ResumenDashboardRow, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) VentasPorDia(ctx context.Context, desde, hasta string) ([]VentasPorDiaRow, error) {
	var rows []VentasPorDiaRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(created_at)::text AS fecha,
		       COUNT(*)               AS cantidad_ventas,
		       COALESCE(SUM(total), 0) AS monto_total
		FROM ventas
		WHERE estado = 'completada'
		  AND DATE(created_at) BETWEEN ? AND ?
		GROUP BY DATE(created_at)
		ORDER BY fecha ASC`, desde, hasta).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) TopProductos(ctx context.Context, desde, hasta string, limit int) ([]TopProductoRow, error) {
	var rows []TopProductoRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id::text            AS producto_id,
		       p.nombre              AS producto,
		       m.nombre              AS marca,
		       SUM(vd.cantidad)      AS unidades_vendidas,
		       COALESCE(SUM(vd.subtotal), 0) AS monto_total
		FROM venta_detalles vd
		JOIN ventas v      ON v.id = vd.venta_id AND v.estado = 'completada'
		JOIN inventario i  ON i.id = vd.inventario_id
		JOIN productos p   ON p.id = i.producto_id
		JOIN marcas m      ON m.id = p.marca_id
		WHERE DATE(v.created_at) BETWEEN ? AND ?
		GROUP BY p.id, p.nombre, m.nombre
		ORDER BY unidades_vendidas DESC
		LIMIT ?`, desde, hasta, limit).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) ResumenDashboard(ctx context.Context) (*ResumenDashboardRow, error) {
	var row ResumenDashboardRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
		  (SELECT COUNT(*) FROM ventas
		    WHERE estado = 'completada' AND DATE(created_at) = CURRENT_DATE)       AS ventas_hoy,
		  (SELECT COALESCE(SUM(total), 0) FROM ventas
		    WHERE estado = 'completada' AND DATE(created_at) = CURRENT_DATE)       AS monto_hoy,
		  (SELECT COUNT(*) FROM productos WHERE activo = true)                     AS productos_activos,
		  (SELECT COUNT(*) FROM inventario
		    WHERE activo = true AND stock_actual <= stock_minimo)                  AS alertas_stock`).
		Scan(&row).Error
	return &row, err
}
