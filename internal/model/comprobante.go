package model

import (
	"time"

	"github.com/google/uuid"
)

// Comprobante tracks the generation of the printable voucher for a sale.
// Estado: "pendiente" | "generado" | "error"
// Generation runs asynchronously in the worker pool; failed jobs are retried
// with backoff and eventually parked in the dead letter queue.
type Comprobante struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Estado      string    `gorm:"type:varchar(20);not null;default:'pendiente'"`
	PDFPath     *string
	EmailCliente *string
	EmailEnviado bool `gorm:"not null;default:false"`
	RetryCount  int  `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Venta *Venta `gorm:"foreignKey:VentaID"`
}
