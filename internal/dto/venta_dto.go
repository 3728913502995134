package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado string `form:"estado,default=completada"` // completada | pendiente | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LineaVentaRequest is one cart line. PrecioEsperado is the price the UI
// resolved when building the cart; the server recomputes the price from the
// actor's role and logs any mismatch — the server value is the one persisted.
type LineaVentaRequest struct {
	InventarioID   string           `json:"inventario_id"   validate:"required,uuid"`
	Cantidad       int              `json:"cantidad"        validate:"required,min=1"`
	PrecioEsperado *decimal.Decimal `json:"precio_esperado" validate:"omitempty,gt=0"`
}

// FinalizarVentaRequest carries the header fields plus the whole cart.
type FinalizarVentaRequest struct {
	ClienteNombre    string              `json:"cliente_nombre"    validate:"required,min=2"`
	ClienteDocumento *string             `json:"cliente_documento"`
	MetodoPago       string              `json:"metodo_pago"       validate:"required,oneof=efectivo tarjeta transferencia mixto"`
	Observaciones    *string             `json:"observaciones"`
	Descuento        decimal.Decimal     `json:"descuento"         validate:"min=0"`
	ClienteEmail     *string             `json:"cliente_email"     validate:"omitempty,email"`
	Lineas           []LineaVentaRequest `json:"lineas"            validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// DetalleLineaResponse is one persisted line enriched with the descriptive
// fields the receipt needs.
type DetalleLineaResponse struct {
	InventarioID   string          `json:"inventario_id"`
	CodigoInterno  string          `json:"codigo_interno"`
	Producto       string          `json:"producto"`
	Marca          string          `json:"marca"`
	Talla          string          `json:"talla"`
	Color          string          `json:"color"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID               string                 `json:"id"`
	NumeroVenta      string                 `json:"numero_venta"`
	Vendedor         string                 `json:"vendedor,omitempty"`
	ClienteNombre    string                 `json:"cliente_nombre"`
	ClienteDocumento string                 `json:"cliente_documento"`
	Subtotal         decimal.Decimal        `json:"subtotal"`
	Descuento        decimal.Decimal        `json:"descuento"`
	Total            decimal.Decimal        `json:"total"`
	MetodoPago       string                 `json:"metodo_pago"`
	Observaciones    *string                `json:"observaciones,omitempty"`
	Estado           string                 `json:"estado"`
	Detalles         []DetalleLineaResponse `json:"detalles"`
	CreatedAt        string                 `json:"created_at"`
}

// Resultados del workflow de finalización.
const (
	ResultadoCompleta = "completa"
	ResultadoParcial  = "parcial"
	ResultadoFallida  = "fallida"
)

// LineaFallidaResponse reports one cart line that could not be persisted.
type LineaFallidaResponse struct {
	InventarioID string `json:"inventario_id"`
	Cantidad     int    `json:"cantidad"`
	Motivo       string `json:"motivo"`
}

// FinalizarVentaResponse is the tagged outcome of the sale workflow:
// "completa" (every line persisted), "parcial" (some lines failed, sale is
// real with fewer items) or "fallida" (header exists, zero lines).
type FinalizarVentaResponse struct {
	Resultado      string                 `json:"resultado"`
	Venta          *VentaResponse         `json:"venta"`
	LineasFallidas []LineaFallidaResponse `json:"lineas_fallidas,omitempty"`
}
