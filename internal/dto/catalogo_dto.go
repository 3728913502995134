package dto

import "github.com/shopspring/decimal"

// ─── Productos ───────────────────────────────────────────────────────────────

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Codigo      string `form:"codigo"`
	Nombre      string `form:"nombre"`
	MarcaID     string `form:"marca_id"`
	CategoriaID string `form:"categoria_id"`
	Activo      string `form:"activo"` // "false" | "all" | anything else = activos
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CrearProductoRequest struct {
	Codigo          string          `json:"codigo"            validate:"required"`
	Nombre          string          `json:"nombre"            validate:"required"`
	Descripcion     *string         `json:"descripcion"`
	MarcaID         string          `json:"marca_id"          validate:"required,uuid"`
	CategoriaID     string          `json:"categoria_id"      validate:"required,uuid"`
	PrecioVentaBase decimal.Decimal `json:"precio_venta_base" validate:"required,gt=0"`
}

type ActualizarProductoRequest struct {
	Nombre          *string          `json:"nombre"`
	Descripcion     *string          `json:"descripcion"`
	MarcaID         *string          `json:"marca_id"     validate:"omitempty,uuid"`
	CategoriaID     *string          `json:"categoria_id" validate:"omitempty,uuid"`
	PrecioVentaBase *decimal.Decimal `json:"precio_venta_base" validate:"omitempty,gt=0"`
}

type ProductoResponse struct {
	ID              string          `json:"id"`
	Codigo          string          `json:"codigo"`
	Nombre          string          `json:"nombre"`
	Descripcion     *string         `json:"descripcion,omitempty"`
	Marca           string          `json:"marca"`
	Categoria       string          `json:"categoria"`
	PrecioVentaBase decimal.Decimal `json:"precio_venta_base"`
	PrecioPromotora decimal.Decimal `json:"precio_promotora"`
	Activo          bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConsultaProductoResponse is the cart-building lookup: the product by its
// public code plus every variant with stock. Served through the Redis cache.
type ConsultaProductoResponse struct {
	Producto  ProductoResponse             `json:"producto"`
	Variantes []VarianteDisponibleResponse `json:"variantes"`
}

type VarianteDisponibleResponse struct {
	ID            string  `json:"id"`
	CodigoInterno string  `json:"codigo_interno"`
	Talla         string  `json:"talla"`
	Color         string  `json:"color"`
	StockActual   int     `json:"stock_actual"`
	Ubicacion     *string `json:"ubicacion,omitempty"`
}

// ─── Marcas / Categorías ────────────────────────────────────────────────────

type CrearMarcaRequest struct {
	Nombre string `json:"nombre" validate:"required"`
}

type MarcaResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}

type CrearCategoriaRequest struct {
	Nombre string `json:"nombre" validate:"required"`
}

type CategoriaResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}
