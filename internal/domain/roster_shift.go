package domain

import (
	"time"

	"github.com/google/uuid"
)

// RosterShift es una celda (fila, día) de una planilla de turnos importada.
// Los campos de persona se guardan tal como venían en la planilla.
type RosterShift struct {
	ID            int64      `json:"id"`
	BatchID       uuid.UUID  `json:"batchId"`
	RowNumber     int        `json:"rowNumber"`
	Day           time.Time  `json:"day"`
	Code          string     `json:"code"`
	Identifier    string     `json:"identifier"`
	FullName      string     `json:"fullName"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	ProfileID     *uuid.UUID `json:"profileId"`
	MatchStrategy string     `json:"matchStrategy"`
	MatchScore    float64    `json:"matchScore"`
	StartsAt      *time.Time `json:"startsAt"`
	EndsAt        *time.Time `json:"endsAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}
