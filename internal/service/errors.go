package service

import "errors"

// Business errors surfaced to the HTTP boundary. Handlers map them onto the
// apierror envelope; anything not in this list is treated as internal.
var (
	ErrVentaNoCreada          = errors.New("la venta no pudo ser creada")
	ErrVentaNoEncontrada      = errors.New("venta no encontrada")
	ErrVentaCerrada           = errors.New("la venta ya no admite articulos")
	ErrStockInsuficiente      = errors.New("stock insuficiente")
	ErrInventarioNoEncontrado = errors.New("variante de inventario no encontrada")
	ErrCantidadInvalida       = errors.New("la cantidad debe ser mayor a cero")
	ErrCarritoVacio           = errors.New("el carrito no tiene articulos")
	ErrMetodoPagoInvalido     = errors.New("metodo de pago invalido")
	ErrProductoNoEncontrado   = errors.New("producto no encontrado")
	ErrUsuarioNoEncontrado    = errors.New("usuario no encontrado")
)
