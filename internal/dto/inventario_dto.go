package dto

type CrearInventarioRequest struct {
	ProductoID    string  `json:"producto_id"    validate:"required,uuid"`
	CodigoInterno string  `json:"codigo_interno" validate:"required"`
	Talla         string  `json:"talla"          validate:"required"`
	Color         string  `json:"color"          validate:"required"`
	StockActual   int     `json:"stock_actual"   validate:"min=0"`
	StockMinimo   int     `json:"stock_minimo"   validate:"min=0"`
	Ubicacion     *string `json:"ubicacion"`
}

type ActualizarInventarioRequest struct {
	Talla       *string `json:"talla"`
	Color       *string `json:"color"`
	StockMinimo *int    `json:"stock_minimo" validate:"omitempty,min=0"`
	Ubicacion   *string `json:"ubicacion"`
}

// AjustarStockRequest is a manual correction; it records a MovimientoStock.
type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Motivo string `json:"motivo" validate:"required,min=5"`
}

type InventarioResponse struct {
	ID            string  `json:"id"`
	ProductoID    string  `json:"producto_id"`
	Producto      string  `json:"producto,omitempty"`
	CodigoInterno string  `json:"codigo_interno"`
	Talla         string  `json:"talla"`
	Color         string  `json:"color"`
	StockActual   int     `json:"stock_actual"`
	StockMinimo   int     `json:"stock_minimo"`
	Ubicacion     *string `json:"ubicacion,omitempty"`
	Activo        bool    `json:"activo"`
}

// AlertaStockResponse lists a variant at or below its minimum threshold.
type AlertaStockResponse struct {
	InventarioID  string `json:"inventario_id"`
	Producto      string `json:"producto"`
	CodigoInterno string `json:"codigo_interno"`
	Talla         string `json:"talla"`
	Color         string `json:"color"`
	StockActual   int    `json:"stock_actual"`
	StockMinimo   int    `json:"stock_minimo"`
}

type MovimientoStockResponse struct {
	ID            string `json:"id"`
	InventarioID  string `json:"inventario_id"`
	Tipo          string `json:"tipo"`
	Cantidad      int    `json:"cantidad"`
	StockAnterior int    `json:"stock_anterior"`
	StockNuevo    int    `json:"stock_nuevo"`
	Motivo        string `json:"motivo,omitempty"`
	CreatedAt     string `json:"created_at"`
}
