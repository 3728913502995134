package model

import (
	"time"

	"github.com/google/uuid"
)

// Inventario is one sellable variant of a product: a (product, size, color)
// triple with its own stock count. Stock is only ever decremented by the
// sale line transaction; the application never adjusts it outside one.
type Inventario struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CodigoInterno  string    `gorm:"uniqueIndex;not null"` // SKU, e.g. "RED-M"
	Talla          string    `gorm:"type:varchar(10);not null"`
	Color          string    `gorm:"type:varchar(30);not null"`
	StockActual    int       `gorm:"not null;default:0"`
	StockMinimo    int       `gorm:"not null;default:3"`
	Ubicacion      *string
	Activo         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (inventarios → inventario).
func (Inventario) TableName() string { return "inventario" }
