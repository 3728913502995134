package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles del sistema. El rol determina el precio unitario aplicado al vender:
// una promotora vende al precio promotora (base + 20%), el resto al precio base.
const (
	RolAdmin     = "admin"
	RolPromotora = "promotora"
	RolDeveloper = "developer"
)

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifies the authenticated user on whose behalf an operation runs.
// It is always passed explicitly — services never read ambient session state.
type Actor struct {
	ID       uuid.UUID
	Username string
	Rol      string
}
