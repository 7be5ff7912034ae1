package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin  = "admin"
	RoleCajero = "cajero"
)

// User usuario del sistema (autenticación por email + password bcrypt).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // "admin" | "cajero"
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
