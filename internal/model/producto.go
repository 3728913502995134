package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// margenPromotora is the markup applied on top of the base price when a
// promotora sells: it funds her commission.
var margenPromotora = decimal.NewFromFloat(1.20)

// Producto is a catalog entry. Stock is NOT tracked here — each size/color
// combination has its own Inventario row.
type Producto struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo          string    `gorm:"uniqueIndex;not null"`
	Nombre          string    `gorm:"index;not null"`
	Descripcion     *string
	MarcaID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoriaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PrecioVentaBase decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Activo          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Marca     *Marca     `gorm:"foreignKey:MarcaID"`
	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}

// PrecioPromotora is derived at read time (base × 1.20, 2 decimal places).
// It is never stored.
func (p *Producto) PrecioPromotora() decimal.Decimal {
	return p.PrecioVentaBase.Mul(margenPromotora).Round(2)
}

// PrecioParaRol resolves the unit price for the acting user's role.
// The server side is authoritative for this resolution.
func (p *Producto) PrecioParaRol(rol string) decimal.Decimal {
	if rol == RolPromotora {
		return p.PrecioPromotora()
	}
	return p.PrecioVentaBase
}
