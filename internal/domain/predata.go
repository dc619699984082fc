package domain

import (
	"time"
)

// Predata es un registro de pre-inscripción importado desde planilla.
type Predata struct {
	ID         int64     `json:"id"`
	NationalID string    `json:"nationalId"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	Commune    string    `json:"commune"`
	ImportedAt time.Time `json:"importedAt"`
}
