package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAgent      Role = "agente"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Profile es la fila de la tabla profiles. El ID lo emite el proveedor de autenticación.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	NationalID string    `json:"nationalId"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	Commune    string    `json:"commune"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}
