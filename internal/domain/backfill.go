package domain

import (
	"time"

	"github.com/google/uuid"
)

// BackfillSuggestion es un identificador encontrado en una planilla que todavía
// no se escribe en el perfil porque requiere confirmación.
type BackfillSuggestion struct {
	ProfileID           uuid.UUID `json:"profileId"`
	FullName            string    `json:"fullName"`
	CurrentIdentifier   string    `json:"currentIdentifier"`
	SuggestedIdentifier string    `json:"suggestedIdentifier"`
	SourceName          string    `json:"sourceName"`
	Strategy            string    `json:"strategy"`
	Score               float64   `json:"score"`
	Weak                bool      `json:"weak"`
	BatchID             uuid.UUID `json:"batchId"`
	CreatedAt           time.Time `json:"createdAt"`
}
