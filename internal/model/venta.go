package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una venta. The header is created "pendiente" and flips to
// "completada" once at least one line item settles. Only "completada"
// sales count for reporting. Sales are never deleted.
const (
	VentaPendiente  = "pendiente"
	VentaCompletada = "completada"
)

// Métodos de pago aceptados.
const (
	PagoEfectivo      = "efectivo"
	PagoTarjeta       = "tarjeta"
	PagoTransferencia = "transferencia"
	PagoMixto         = "mixto"
)

// DocumentoSinDato is the sentinel stored when the customer presents no document.
const DocumentoSinDato = "S/D"

// Venta is the sale header for one checkout.
type Venta struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroVenta       string    `gorm:"uniqueIndex;not null"`
	UsuarioID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ClienteNombre     string    `gorm:"not null"`
	ClienteDocumento  string    `gorm:"not null;default:'S/D'"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Descuento         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MetodoPago        string          `gorm:"type:varchar(20);not null"`
	Observaciones     *string
	Estado            string `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time

	Usuario  *Usuario       `gorm:"foreignKey:UsuarioID"`
	Detalles []VentaDetalle `gorm:"foreignKey:VentaID"`
}

// VentaDetalle is one immutable line item: a variant, a quantity and the unit
// price snapshotted at the moment of the sale.
type VentaDetalle struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventarioID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt      time.Time

	Inventario *Inventario `gorm:"foreignKey:InventarioID"`
}
