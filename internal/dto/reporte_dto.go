package dto

import "github.com/shopspring/decimal"

// ReporteFilter bounds the date range of the sales report (inclusive).
type ReporteFilter struct {
	Desde string `form:"desde" validate:"required,datetime=2006-01-02"`
	Hasta string `form:"hasta" validate:"required,datetime=2006-01-02"`
}

// VentasPorDiaResponse is one aggregated row of the sales report.
// Only ventas en estado "completada" count.
type VentasPorDiaResponse struct {
	Fecha         string          `json:"fecha"`
	CantidadVentas int64          `json:"cantidad_ventas"`
	MontoTotal    decimal.Decimal `json:"monto_total"`
}

// TopProductoResponse ranks products by units sold within the range.
type TopProductoResponse struct {
	ProductoID      string          `json:"producto_id"`
	Producto        string          `json:"producto"`
	Marca           string          `json:"marca"`
	UnidadesVendidas int64          `json:"unidades_vendidas"`
	MontoTotal      decimal.Decimal `json:"monto_total"`
}

// ResumenDashboardResponse feeds the home screen widgets.
type ResumenDashboardResponse struct {
	VentasHoy        int64           `json:"ventas_hoy"`
	MontoHoy         decimal.Decimal `json:"monto_hoy"`
	ProductosActivos int64           `json:"productos_activos"`
	AlertasStock     int64           `json:"alertas_stock"`
}
